package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/rickgao/everline-data/internal/gtfsrt"
	"github.com/rickgao/everline-data/internal/model"
	"github.com/rickgao/everline-data/internal/query"
	"github.com/rickgao/everline-data/internal/station"
	"github.com/rickgao/everline-data/internal/version"
)

const errNoSnapshot = "no snapshot available yet"

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, ErrorResponse{Error: msg})
}

// handleHealth reports degraded with 503 when there is no snapshot or the
// latest one is older than StaleAfter.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:   "ok",
		Instance: s.cfg.InstanceID,
		Version:  version.Get(),
	}

	snap := s.source.Latest()
	if snap == nil {
		resp.Status = "degraded"
	} else {
		age := snap.Age(s.now())
		fetched := snap.FetchedAt
		resp.SnapshotID = snap.ID.String()
		resp.LastFetch = &fetched
		resp.AgeSeconds = age.Seconds()
		resp.Trains = snap.Len()
		if s.cfg.StaleAfter > 0 && age > s.cfg.StaleAfter {
			resp.Status = "degraded"
		}
	}

	status := http.StatusOK
	if resp.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	s.writeJSON(w, status, resp)
}

func (s *Server) handleStations(w http.ResponseWriter, r *http.Request) {
	all := station.All()
	resp := StationsResponse{
		Stations:      make([]StationView, 0, len(all)),
		DurationsDown: station.Durations(model.Down),
		DurationsUp:   station.Durations(model.Up),
	}
	for _, st := range all {
		resp.Stations = append(resp.Stations, newStationView(st))
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// handleStation accepts a station code or a station name.
func (s *Server) handleStation(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "code")

	st, err := station.Lookup(key)
	if err != nil {
		st, err = station.Find(key)
	}
	if err != nil {
		s.writeError(w, http.StatusNotFound, err.Error())
		return
	}

	resp := StationDetailResponse{
		Station:     newStationView(st),
		TrainsAt:    []TrainView{},
		Approaching: []ApproachingTrain{},
	}

	snap := s.source.Latest()
	if snap != nil {
		resp.SnapshotID = snap.ID.String()
		resp.TrainsAt = newTrainViews(query.TrainsAt(snap, st.Code))
		for _, rec := range query.Approaching(snap, st.Code) {
			secs, err := query.SecondsUntil(rec, st.Code)
			if err != nil {
				continue
			}
			resp.Approaching = append(resp.Approaching, ApproachingTrain{
				TrainView:   newTrainView(rec),
				SecondsAway: secs,
			})
		}
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTrains(w http.ResponseWriter, r *http.Request) {
	var (
		dir      model.Direction
		filtered bool
		raw      = r.URL.Query().Get("direction")
	)
	if raw != "" {
		d, ok := model.ParseDirection(raw)
		if !ok {
			s.writeError(w, http.StatusBadRequest, "direction must be up or down")
			return
		}
		dir, filtered = d, true
	}

	snap := s.source.Latest()
	if snap == nil {
		s.writeError(w, http.StatusServiceUnavailable, errNoSnapshot)
		return
	}

	records := snap.Records
	if filtered {
		records = query.TrainsByDirection(snap, dir)
	}

	resp := TrainsResponse{
		SnapshotID: snap.ID.String(),
		FetchedAt:  snap.FetchedAt,
		Count:      len(records),
		Trains:     newTrainViews(records),
	}
	if filtered {
		resp.Direction = dir.String()
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// handleInterval defaults both parameters to the current Seoul time.
func (s *Server) handleInterval(w http.ResponseWriter, r *http.Request) {
	now := s.now()
	q := r.URL.Query()

	clock := q.Get("time")
	if clock == "" {
		clock = query.Clock(now)
	}

	weekend := query.IsWeekend(now)
	if raw := q.Get("weekend"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "weekend must be a boolean")
			return
		}
		weekend = v
	}

	secs, ok, err := query.EstimatedIntervalAt(clock, weekend)
	if err != nil {
		if errors.Is(err, query.ErrInvalidClock) {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, IntervalResponse{
		Time:            clock,
		Weekend:         weekend,
		InService:       ok,
		IntervalSeconds: secs,
	})
}

// handleVehiclePositions serves the GTFS-realtime feed; ?format=text
// returns prototext.
func (s *Server) handleVehiclePositions(w http.ResponseWriter, r *http.Request) {
	snap := s.source.Latest()
	if snap == nil {
		s.writeError(w, http.StatusServiceUnavailable, errNoSnapshot)
		return
	}

	feed := gtfsrt.FeedFromSnapshot(snap)

	var (
		body        []byte
		err         error
		contentType = "application/x-protobuf"
	)
	if r.URL.Query().Get("format") == "text" {
		body, err = gtfsrt.MarshalText(feed)
		contentType = "text/plain; charset=utf-8"
	} else {
		body, err = gtfsrt.Marshal(feed)
	}
	if err != nil {
		s.logger.Error("marshal gtfs-rt feed", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to encode feed")
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}
