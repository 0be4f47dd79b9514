package core

import (
	"sort"
	"strings"
)

// Note is the central entity of the domain: a single travel entry.
// ID is assigned by the repository on insert and never changes afterwards.
// A zero ID means the note has not been persisted yet.
type Note struct {
	ID        int64  `json:"id" yaml:"id"`
	Tujuan    string `json:"tujuan" yaml:"tujuan"`       // destination, the sort key
	Kendaraan string `json:"kendaraan" yaml:"kendaraan"` // transport mode
	Catatan   string `json:"catatan" yaml:"catatan"`     // free text
}

// Draft holds the caller-supplied fields of a Note.
// It is what Insert and Update accept; the ID always comes from storage.
type Draft struct {
	Tujuan    string `json:"tujuan" yaml:"tujuan"`
	Kendaraan string `json:"kendaraan" yaml:"kendaraan"`
	Catatan   string `json:"catatan" yaml:"catatan"`
}

// Draft returns the editable part of the note.
func (n Note) Draft() Draft {
	return Draft{Tujuan: n.Tujuan, Kendaraan: n.Kendaraan, Catatan: n.Catatan}
}

// Validate rejects drafts with an empty field.
// Whitespace-only values count as empty.
func (d Draft) Validate() error {
	switch {
	case strings.TrimSpace(d.Tujuan) == "":
		return &ValidationError{Field: "tujuan"}
	case strings.TrimSpace(d.Kendaraan) == "":
		return &ValidationError{Field: "kendaraan"}
	case strings.TrimSpace(d.Catatan) == "":
		return &ValidationError{Field: "catatan"}
	}
	return nil
}

// Vehicles lists the transport modes offered by the edit form.
// Storage does not enforce them.
var Vehicles = []string{"Pesawat", "Kereta", "Kapal", "Mobil", "Motor"}

// IsKnownVehicle reports whether v is one of Vehicles (case-insensitive).
func IsKnownVehicle(v string) bool {
	for _, known := range Vehicles {
		if strings.EqualFold(known, strings.TrimSpace(v)) {
			return true
		}
	}
	return false
}

// SortNotes orders notes by Tujuan ascending, ties by ID (insertion order).
func SortNotes(notes []Note) {
	sort.SliceStable(notes, func(i, j int) bool {
		if notes[i].Tujuan != notes[j].Tujuan {
			return notes[i].Tujuan < notes[j].Tujuan
		}
		return notes[i].ID < notes[j].ID
	})
}
