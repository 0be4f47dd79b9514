package fs

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/wanderlist/pkg/core"
)

// table is the on-disk layout of notes.yaml.
type table struct {
	NextID int64       `yaml:"next_id"`
	Notes  []core.Note `yaml:"notes"`
}

// preferences is the on-disk layout of preferences.yaml.
type preferences map[string]string

func (t *table) index(id int64) int {
	for i, n := range t.Notes {
		if n.ID == id {
			return i
		}
	}
	return -1
}

// allocate returns the next free ID. NextID is repaired if a hand-edited
// file left it at or below an existing ID.
func (t *table) allocate() int64 {
	for _, n := range t.Notes {
		if n.ID >= t.NextID {
			t.NextID = n.ID + 1
		}
	}
	if t.NextID < 1 {
		t.NextID = 1
	}
	id := t.NextID
	t.NextID++
	return id
}

// readTable loads notes.yaml. A missing file is an empty table.
func readTable(path string) (*table, [sha256.Size]byte, error) {
	var digest [sha256.Size]byte

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &table{NextID: 1}, digest, nil
	}
	if err != nil {
		return nil, digest, err
	}

	t := &table{}
	if err := yaml.Unmarshal(data, t); err != nil {
		return nil, digest, fmt.Errorf("invalid notes table %s: %w", path, err)
	}
	return t, sha256.Sum256(data), nil
}

func encodeTable(t *table) ([]byte, error) {
	if t.Notes == nil {
		t.Notes = []core.Note{}
	}
	return yaml.Marshal(t)
}

func readPreferences(path string) (preferences, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return preferences{}, nil
	}
	if err != nil {
		return nil, err
	}

	p := preferences{}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("invalid preferences %s: %w", path, err)
	}
	return p, nil
}
