package model

import (
	"time"

	"github.com/google/uuid"
)

// Direction is the travel direction reported by the upstream updownCode field.
type Direction string

const (
	Up   Direction = "1" // 상행, towards Giheung
	Down Direction = "2" // 하행, towards Jeondae·Everland
)

// Valid reports whether d is one of the two known direction codes.
func (d Direction) Valid() bool {
	return d == Up || d == Down
}

// String returns the English direction name.
func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	default:
		return "unknown(" + string(d) + ")"
	}
}

// Label returns the localized label shown to riders.
func (d Direction) Label() string {
	switch d {
	case Up:
		return "상행 UP"
	case Down:
		return "하행 DOWN"
	default:
		return "? " + string(d)
	}
}

// ParseDirection accepts "up"/"down" or the raw codes "1"/"2".
func ParseDirection(s string) (Direction, bool) {
	switch s {
	case "1", "up", "UP", "Up":
		return Up, true
	case "2", "down", "DOWN", "Down":
		return Down, true
	}
	return "", false
}

// Status is the train state reported by the upstream StatusCode field.
type Status string

const (
	Returning Status = "1" // 회송, out of service
	Stopped   Status = "2" // 정차, dwelling at the current station
	Departed  Status = "3" // 출발, running towards the next station
)

// Valid reports whether s is one of the three known status codes.
func (s Status) Valid() bool {
	return s == Returning || s == Stopped || s == Departed
}

// Label returns a bilingual status label.
func (s Status) Label() string {
	switch s {
	case Returning:
		return "회송 RETURNING"
	case Stopped:
		return "정차 STOPPED"
	case Departed:
		return "출발 DEPARTED"
	default:
		return "? " + string(s)
	}
}

// TrainRecord is one train position from the upstream feed.
type TrainRecord struct {
	TrainNo         string    `json:"train_no"`
	Direction       Direction `json:"direction"`
	StationCode     string    `json:"station_code"`     // Current (or last departed) station
	DestinationCode string    `json:"destination_code"` // May be empty
	ElapsedSeconds  int       `json:"elapsed_seconds"`  // Seconds since arriving at / leaving StationCode
	DriveRate       float64   `json:"drive_rate"`       // Progress towards the next station, 0-100
	Status          Status    `json:"status"`
}

// Snapshot is one complete capture of all train records.
// A Snapshot is never mutated after it has been published.
type Snapshot struct {
	ID        uuid.UUID     `json:"id"`
	Records   []TrainRecord `json:"records"`
	FetchedAt time.Time     `json:"fetched_at"`
}

// NewSnapshot builds a snapshot with a fresh ID.
func NewSnapshot(records []TrainRecord, fetchedAt time.Time) *Snapshot {
	return &Snapshot{
		ID:        uuid.New(),
		Records:   records,
		FetchedAt: fetchedAt,
	}
}

// Len returns the number of records; a nil snapshot has none.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Records)
}

// Age returns how long ago the snapshot was fetched.
func (s *Snapshot) Age(now time.Time) time.Duration {
	return now.Sub(s.FetchedAt)
}

// MessageTypeSnapshot tags a pushed snapshot frame.
const MessageTypeSnapshot = "snapshot"

// SnapshotMessage is the frame sent to live subscribers.
type SnapshotMessage struct {
	Type     string    `json:"type"`
	Snapshot *Snapshot `json:"snapshot"`
}
