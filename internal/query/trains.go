package query

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/rickgao/everline-data/internal/model"
	"github.com/rickgao/everline-data/internal/station"
)

// ErrNotAhead is returned when the target station is behind the train.
var ErrNotAhead = errors.New("station is not ahead of the train")

// TrainCount returns the number of trains in the snapshot, or false if there
// is no snapshot yet.
func TrainCount(snap *model.Snapshot) (int, bool) {
	if snap == nil {
		return 0, false
	}
	return len(snap.Records), true
}

// TrainsByDirection returns the records travelling in dir, in upstream order.
func TrainsByDirection(snap *model.Snapshot, dir model.Direction) []model.TrainRecord {
	if snap == nil {
		return nil
	}
	out := make([]model.TrainRecord, 0, len(snap.Records))
	for _, r := range snap.Records {
		if r.Direction == dir {
			out = append(out, r)
		}
	}
	return out
}

// TrainsAt returns the records whose current station is code.
func TrainsAt(snap *model.Snapshot, code string) []model.TrainRecord {
	if snap == nil {
		return nil
	}
	var out []model.TrainRecord
	for _, r := range snap.Records {
		if r.StationCode == code {
			out = append(out, r)
		}
	}
	return out
}

// Approaching returns departed trains whose next station is code.
func Approaching(snap *model.Snapshot, code string) []model.TrainRecord {
	if snap == nil {
		return nil
	}
	var out []model.TrainRecord
	for _, r := range snap.Records {
		if r.Status != model.Departed {
			continue
		}
		if next, ok := NextStation(r); ok && next == code {
			out = append(out, r)
		}
	}
	return out
}

// NextStation returns the station after the record's current one in its
// direction of travel. Trains at a terminus have none.
func NextStation(r model.TrainRecord) (string, bool) {
	i, err := station.OrdinalOf(r.Direction, r.StationCode)
	if err != nil {
		return "", false
	}
	next, err := station.CodeAt(r.Direction, i+1)
	if err != nil {
		return "", false
	}
	return next, true
}

// DriveRate returns the train's progress from its current station towards
// the next one as a percentage with two decimals, capped at 100.
// An upstream-supplied rate takes precedence.
func DriveRate(r model.TrainRecord) float64 {
	if r.DriveRate != 0 {
		return r.DriveRate
	}
	i, err := station.OrdinalOf(r.Direction, r.StationCode)
	if err != nil {
		return 0
	}
	d, err := station.SegmentDuration(r.Direction, i)
	if err != nil {
		return 0
	}
	return percent(r.ElapsedSeconds, d)
}

func percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	v := math.Round(float64(part)/float64(whole)*100*100) / 100
	return math.Min(v, 100)
}

// WithDriveRates returns a copy of the snapshot records with DriveRate filled.
func WithDriveRates(records []model.TrainRecord) []model.TrainRecord {
	out := make([]model.TrainRecord, len(records))
	for i, r := range records {
		r.DriveRate = DriveRate(r)
		out[i] = r
	}
	return out
}

// SecondsUntil estimates the running time left before the train reaches
// code, using the fixed segment durations and the elapsed seconds reported
// for a departed train.
func SecondsUntil(r model.TrainRecord, code string) (int, error) {
	from, err := station.OrdinalOf(r.Direction, r.StationCode)
	if err != nil {
		return 0, err
	}
	to, err := station.OrdinalOf(r.Direction, code)
	if err != nil {
		return 0, err
	}
	if to < from {
		return 0, fmt.Errorf("%w: %s is behind %s", ErrNotAhead, code, r.StationCode)
	}

	total, err := station.DurationBetween(r.Direction, from, to)
	if err != nil {
		return 0, err
	}
	if r.Status == model.Departed {
		total -= r.ElapsedSeconds
	}
	if total < 0 {
		total = 0
	}
	return total, nil
}

// Describe formats a record for display.
func Describe(r model.TrainRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", r.TrainNo, r.Direction.Label())

	if name, err := station.NameOf(r.StationCode); err == nil {
		fmt.Fprintf(&b, " @ %s %s (%s)", name.Local, name.Romanized, r.StationCode)
	} else {
		fmt.Fprintf(&b, " @ %s", r.StationCode)
	}

	if dest, err := station.NameOf(r.DestinationCode); err == nil {
		fmt.Fprintf(&b, " → %s %s", dest.Local, dest.Romanized)
	}

	fmt.Fprintf(&b, " %s %.2f%%", r.Status.Label(), DriveRate(r))
	return b.String()
}
