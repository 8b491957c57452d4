package server

import (
	"time"

	"github.com/rickgao/everline-data/internal/model"
	"github.com/rickgao/everline-data/internal/query"
	"github.com/rickgao/everline-data/internal/station"
	"github.com/rickgao/everline-data/internal/version"
)

// ErrorResponse is the JSON body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status     string       `json:"status"` // "ok" or "degraded"
	Instance   string       `json:"instance"`
	SnapshotID string       `json:"snapshot_id,omitempty"`
	LastFetch  *time.Time   `json:"last_fetch,omitempty"`
	AgeSeconds float64      `json:"age_seconds"`
	Trains     int          `json:"trains"`
	Version    version.Info `json:"version"`
}

// StationView is one station with its position in both directions.
type StationView struct {
	Code        string       `json:"code"`
	Name        station.Name `json:"name"`
	DownOrdinal int          `json:"down_ordinal"`
	UpOrdinal   int          `json:"up_ordinal"`
}

// StationsResponse is the body of GET /v1/stations.
type StationsResponse struct {
	Stations      []StationView `json:"stations"`
	DurationsDown []int         `json:"durations_down"`
	DurationsUp   []int         `json:"durations_up"`
}

// TrainView is a train record enriched with display fields.
type TrainView struct {
	model.TrainRecord
	DirectionLabel string        `json:"direction_label"`
	StatusLabel    string        `json:"status_label"`
	Station        *station.Name `json:"station_name,omitempty"`
	Destination    *station.Name `json:"destination_name,omitempty"`
	Description    string        `json:"description"`
}

// ApproachingTrain is a departed train heading for the requested station.
type ApproachingTrain struct {
	TrainView
	SecondsAway int `json:"seconds_away"`
}

// StationDetailResponse is the body of GET /v1/stations/{code}.
type StationDetailResponse struct {
	Station     StationView        `json:"station"`
	SnapshotID  string             `json:"snapshot_id,omitempty"`
	TrainsAt    []TrainView        `json:"trains_at"`
	Approaching []ApproachingTrain `json:"approaching"`
}

// TrainsResponse is the body of GET /v1/trains.
type TrainsResponse struct {
	SnapshotID string      `json:"snapshot_id"`
	FetchedAt  time.Time   `json:"fetched_at"`
	Direction  string      `json:"direction,omitempty"`
	Count      int         `json:"count"`
	Trains     []TrainView `json:"trains"`
}

// IntervalResponse is the body of GET /v1/interval.
type IntervalResponse struct {
	Time            string `json:"time"`
	Weekend         bool   `json:"weekend"`
	InService       bool   `json:"in_service"`
	IntervalSeconds int    `json:"interval_seconds"`
}

func newStationView(st station.Station) StationView {
	v := StationView{Code: st.Code, Name: st.Name, DownOrdinal: st.Ordinal}
	if up, err := station.OrdinalOf(model.Up, st.Code); err == nil {
		v.UpOrdinal = up
	}
	return v
}

func newTrainView(r model.TrainRecord) TrainView {
	v := TrainView{
		TrainRecord:    r,
		DirectionLabel: r.Direction.Label(),
		StatusLabel:    r.Status.Label(),
		Description:    query.Describe(r),
	}
	if name, err := station.NameOf(r.StationCode); err == nil {
		v.Station = &name
	}
	if name, err := station.NameOf(r.DestinationCode); err == nil {
		v.Destination = &name
	}
	return v
}

func newTrainViews(records []model.TrainRecord) []TrainView {
	views := make([]TrainView, 0, len(records))
	for _, r := range records {
		views = append(views, newTrainView(r))
	}
	return views
}
