// Package progress computes per-subject completion figures from the subject
// tree. It reads; it never mutates.
package progress

import (
	"math"

	"github.com/studybuddy-ai/studybuddy/internal/content"
)

// SubjectProgress is one subject's completion summary.
type SubjectProgress struct {
	SubjectID string `json:"subjectId"`
	Name      string `json:"name"`
	Completed int    `json:"completed"`
	Total     int    `json:"total"`
	Percent   int    `json:"percent"`
}

// ForSubject computes the completion summary for one subject. A subject with
// no topics is 0 percent complete, not an error.
func ForSubject(subj content.Subject) SubjectProgress {
	completed := 0
	for _, t := range subj.Topics {
		if t.Completed {
			completed++
		}
	}
	return SubjectProgress{
		SubjectID: subj.ID,
		Name:      subj.Name,
		Completed: completed,
		Total:     len(subj.Topics),
		Percent:   percent(completed, len(subj.Topics)),
	}
}

// ForAll computes summaries for every subject, preserving display order.
func ForAll(subjects []content.Subject) []SubjectProgress {
	out := make([]SubjectProgress, len(subjects))
	for i, subj := range subjects {
		out[i] = ForSubject(subj)
	}
	return out
}

func percent(completed, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(completed) / float64(total)))
}
