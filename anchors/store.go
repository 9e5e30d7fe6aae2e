// CLAUDE:SUMMARY Schema-validated, atomic JSON load/save of the anchor store file.
package anchors

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Load reads and validates an anchor store. Relative paths are resolved
// against the working directory. Failure kinds are distinguished with
// sentinel errors: ErrNotFound, ErrInvalidJSON, ErrSchema.
func Load(path string) (*Store, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("anchors: resolve %q: %w", path, err)
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, abs)
		}
		return nil, fmt.Errorf("anchors: read %s: %w", abs, err)
	}

	var store Store
	if err := json.Unmarshal(data, &store); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidJSON, abs, err)
	}

	if err := Validate(&store); err != nil {
		return nil, fmt.Errorf("%s: %w", abs, err)
	}
	return &store, nil
}

// Save validates the store and writes it atomically: temp file in the
// target directory, then rename. Validation failure here is a caller bug
// (persisting a store the code built wrong), so it errors before touching
// the filesystem. Output is 2-space-indented JSON for diff-friendliness.
func Save(path string, store *Store) error {
	if err := Validate(store); err != nil {
		return err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("anchors: resolve %q: %w", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return fmt.Errorf("anchors: mkdir %s: %w", filepath.Dir(abs), err)
	}

	data, err := json.MarshalIndent(store, "", "  ")
	if err != nil {
		return fmt.Errorf("anchors: marshal store: %w", err)
	}
	data = append(data, '\n')

	tmp := abs + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("anchors: write %s: %w", tmp, err)
	}

	if err := os.Rename(tmp, abs); err != nil {
		// On some platforms rename over an existing file fails with an
		// exists or permission error class. Remove the target and retry
		// exactly once.
		if errors.Is(err, fs.ErrExist) || errors.Is(err, fs.ErrPermission) {
			if rmErr := os.Remove(abs); rmErr != nil {
				return fmt.Errorf("anchors: replace %s: %w", abs, err)
			}
			if err := os.Rename(tmp, abs); err != nil {
				return fmt.Errorf("anchors: rename %s: %w", tmp, err)
			}
			return nil
		}
		return fmt.Errorf("anchors: rename %s: %w", tmp, err)
	}
	return nil
}

// Validate checks a store against the anchor schema.
func Validate(store *Store) error {
	if store == nil {
		return fmt.Errorf("%w: nil store", ErrSchema)
	}
	if store.Version == "" {
		return fmt.Errorf("%w: missing version", ErrSchema)
	}
	seen := make(map[string]bool, len(store.Anchors))
	for i := range store.Anchors {
		a := &store.Anchors[i]
		if err := validateAnchor(a); err != nil {
			return err
		}
		if seen[a.ID] {
			return fmt.Errorf("%w: duplicate anchor id %q", ErrSchema, a.ID)
		}
		seen[a.ID] = true
	}
	return nil
}

func validateAnchor(a *Anchor) error {
	if a.ID == "" {
		return fmt.Errorf("%w: anchor with empty id", ErrSchema)
	}
	if a.Source.File == "" {
		return fmt.Errorf("%w: anchor %q: missing source.file", ErrSchema, a.ID)
	}
	if a.Source.Line < 1 {
		return fmt.Errorf("%w: anchor %q: source.line %d < 1", ErrSchema, a.ID, a.Source.Line)
	}
	if a.SnippetContext != nil && a.Snippet == "" {
		return fmt.Errorf("%w: anchor %q: snippetContext without snippet", ErrSchema, a.ID)
	}
	if a.Hint != nil {
		for _, p := range a.Hint.Prefer {
			if !p.Valid() {
				return fmt.Errorf("%w: anchor %q: unknown strategy %q", ErrSchema, a.ID, p)
			}
		}
	}
	if a.LastKnown != nil {
		if a.LastKnown.Selector == "" {
			return fmt.Errorf("%w: anchor %q: lastKnown without selector", ErrSchema, a.ID)
		}
		if a.LastKnown.StabilityScore < 0 || a.LastKnown.StabilityScore > 100 {
			return fmt.Errorf("%w: anchor %q: lastKnown.stabilityScore %d out of range", ErrSchema, a.ID, a.LastKnown.StabilityScore)
		}
	}
	return nil
}
