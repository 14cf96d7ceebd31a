package content

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// FilePersister stores the subject tree as a single JSON document on disk.
type FilePersister struct {
	path string
}

// NewFilePersister creates a persister writing to the given path. The parent
// directory must exist.
func NewFilePersister(path string) *FilePersister {
	return &FilePersister{path: path}
}

func (p *FilePersister) Load(_ context.Context) (Tree, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Tree{}, nil
		}
		return Tree{}, fmt.Errorf("read %s: %w", p.path, err)
	}

	var tree Tree
	if err := json.Unmarshal(data, &tree); err != nil {
		return Tree{}, fmt.Errorf("parse %s: %w", p.path, err)
	}
	return tree, nil
}

// Save writes the tree to a temp file and renames it into place, so a crash
// mid-write never leaves a truncated document behind.
func (p *FilePersister) Save(_ context.Context, tree Tree) error {
	data, err := json.MarshalIndent(tree, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal tree: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(p.path), ".subjects-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), p.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
