package sqlite

import (
	"time"

	"github.com/aretw0/wanderlist/pkg/core"
)

// noteRecord is the row layout of the notes table.
type noteRecord struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	Tujuan    string `gorm:"not null;index"`
	Kendaraan string `gorm:"not null"`
	Catatan   string `gorm:"not null"`
}

func (noteRecord) TableName() string {
	return "notes"
}

func (r noteRecord) toNote() core.Note {
	return core.Note{ID: r.ID, Tujuan: r.Tujuan, Kendaraan: r.Kendaraan, Catatan: r.Catatan}
}

// preferenceRecord stores small persistent key/value settings.
type preferenceRecord struct {
	Key       string `gorm:"primaryKey;size:128"`
	Value     string `gorm:"type:text"`
	UpdatedAt time.Time
}

func (preferenceRecord) TableName() string {
	return "preferences"
}
