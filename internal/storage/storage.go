// Package storage persists recordings to disk for the cmd/ binaries.
// The core Recorder/Replayer never touch a filesystem (spec §1 lists
// "persistence format of recordings on disk" as out of scope for the
// core) — this is ambient plumbing the demo CLIs need, grounded on the
// teacher's internal/snapshot/storage.go dirPath/SaveToDisk/LoadForURL
// pattern, generalized from Snapshot to action.Recording.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/LEECHUNGYOON/u4a-record-replay/internal/action"
)

func dirPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("storage: cannot find home directory: %w", err)
	}
	return filepath.Join(home, ".u4a-record-replay", "recordings"), nil
}

// Save writes rec to "<id>.json" under the recordings directory.
func Save(rec *action.Recording) (string, error) {
	dir, err := dirPath()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("storage: %w", err)
	}
	path := filepath.Join(dir, rec.ID+".json")
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return "", fmt.Errorf("storage: marshal recording: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("storage: write recording: %w", err)
	}
	return path, nil
}

// Load reads a single recording by path.
func Load(path string) (*action.Recording, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("storage: read recording: %w", err)
	}
	var rec action.Recording
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("storage: unmarshal recording: %w", err)
	}
	return &rec, nil
}

// LoadForURL returns every stored recording whose URL matches url.
func LoadForURL(url string) ([]*action.Recording, error) {
	dir, err := dirPath()
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []*action.Recording{}, nil
		}
		return nil, fmt.Errorf("storage: %w", err)
	}

	var results []*action.Recording
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		rec, err := Load(filepath.Join(dir, e.Name()))
		if err != nil {
			continue
		}
		if rec.URL == url {
			results = append(results, rec)
		}
	}
	return results, nil
}

// LoadAll returns every stored recording.
func LoadAll() ([]*action.Recording, error) {
	dir, err := dirPath()
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []*action.Recording{}, nil
		}
		return nil, fmt.Errorf("storage: %w", err)
	}

	var results []*action.Recording
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		rec, err := Load(filepath.Join(dir, e.Name()))
		if err != nil {
			continue
		}
		results = append(results, rec)
	}
	return results, nil
}
