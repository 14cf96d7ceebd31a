// Package syllabus seeds the content store from YAML files, one subject per
// file. It is the scriptable counterpart to creating subjects by hand.
package syllabus

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/studybuddy-ai/studybuddy/internal/content"
)

// File is the on-disk shape of one syllabus file.
type File struct {
	Subject string      `yaml:"subject"`
	Color   string      `yaml:"color"`
	Topics  []FileTopic `yaml:"topics"`
}

// FileTopic is one topic entry in a syllabus file.
type FileTopic struct {
	Title    string `yaml:"title"`
	Category string `yaml:"category"`
}

// Importer walks a directory of syllabus YAML files and creates a subject
// for each valid one. Invalid files are skipped with a warning; one bad file
// never aborts the import.
type Importer struct {
	store *content.Store
}

// NewImporter creates a syllabus importer over the given store.
func NewImporter(store *content.Store) *Importer {
	return &Importer{store: store}
}

// ImportDir imports every .yaml/.yml file under dir and returns how many
// subjects were created.
func (im *Importer) ImportDir(ctx context.Context, dir string) (int, error) {
	created := 0
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}
		if !strings.HasSuffix(path, ".yaml") && !strings.HasSuffix(path, ".yml") {
			return nil
		}
		if im.importFile(ctx, path) {
			created++
		}
		return nil
	})
	if err != nil {
		return created, fmt.Errorf("walking syllabus dir %s: %w", dir, err)
	}

	slog.Info("syllabus import finished", "dir", dir, "subjects", created)
	return created, nil
}

// importFile reads one syllabus file and creates its subject. Reports
// whether a subject was created.
func (im *Importer) importFile(ctx context.Context, path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		slog.Warn("skipping unreadable syllabus file", "path", path, "error", err)
		return false
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		slog.Warn("skipping invalid syllabus YAML", "path", path, "error", err)
		return false
	}
	if f.Subject == "" {
		slog.Warn("skipping syllabus file without a subject name", "path", path)
		return false
	}

	drafts := make([]content.TopicDraft, 0, len(f.Topics))
	for _, t := range f.Topics {
		drafts = append(drafts, content.TopicDraft{
			Title:    t.Title,
			Category: content.Category(t.Category),
		})
	}

	subj, err := im.store.CreateSubject(ctx, f.Subject, drafts)
	if err != nil {
		slog.Warn("skipping syllabus file the store rejected", "path", path, "error", err)
		return false
	}
	if f.Color != "" {
		// Color is cosmetic; a failure to set it is not a failed import.
		if _, err := im.store.SetSubjectColor(ctx, subj.ID, f.Color); err != nil {
			slog.Warn("could not set subject color", "subject_id", subj.ID, "error", err)
		}
	}
	return true
}
