// Package core defines the Wanderlist domain: notes, the storage contract and
// the service that validates writes and turns repository events into live,
// ordered snapshots.
package core

import "fmt"

// EventType represents the type of change in the notes table.
type EventType string

const (
	EventCreate EventType = "CREATE"
	EventModify EventType = "MODIFY"
	EventDelete EventType = "DELETE"
	// EventReload signals that the table changed outside of this process
	// and must be re-read as a whole. ID is zero.
	EventReload EventType = "RELOAD"
)

// Event represents a committed change in the notes table.
type Event struct {
	Type      EventType
	ID        int64
	Timestamp int64 // Unix timestamp
}

func (e Event) String() string {
	return fmt.Sprintf("%s #%d", e.Type, e.ID)
}
