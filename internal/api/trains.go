package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strconv"

	"github.com/rickgao/everline-data/internal/model"
)

// maxElapsedSeconds bounds the "time" field to one service day.
const maxElapsedSeconds = 24 * 60 * 60

// FetchTrains fetches and decodes the current train list.
func (c *Client) FetchTrains(ctx context.Context) ([]model.TrainRecord, error) {
	body, err := c.doGet(ctx)
	if err != nil {
		return nil, err
	}

	records, err := DecodeTrains(body, c.logger)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("fetched trains", "url", c.url, "trains", len(records))
	return records, nil
}

// DecodeTrains parses an endpoint body into train records, preserving
// upstream order. Records that fail validation are logged and skipped;
// only an undecodable body or a missing "data" array is an error.
func DecodeTrains(body []byte, logger *slog.Logger) ([]model.TrainRecord, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var resp struct {
		Data *[]APITrain `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &ParseError{Reason: "decode body", Err: err}
	}
	if resp.Data == nil {
		return nil, &ParseError{Reason: `missing "data" array`}
	}

	records := make([]model.TrainRecord, 0, len(*resp.Data))
	for i, t := range *resp.Data {
		rec, err := t.ToModel()
		if err != nil {
			logger.Warn("skipping train record", "index", i, "train_no", string(t.TrainNo), "error", err)
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// ToModel converts an APITrain to model.TrainRecord.
func (t *APITrain) ToModel() (model.TrainRecord, error) {
	dir := model.Direction(t.UpdownCode)
	if !dir.Valid() {
		return model.TrainRecord{}, fmt.Errorf("invalid updownCode %q", t.UpdownCode)
	}
	if t.StCode == "" {
		return model.TrainRecord{}, fmt.Errorf("missing StCode")
	}
	status := model.Status(t.StatusCode)
	if !status.Valid() {
		return model.TrainRecord{}, fmt.Errorf("invalid StatusCode %q", t.StatusCode)
	}
	elapsed, err := parseElapsed(t.Time)
	if err != nil {
		return model.TrainRecord{}, err
	}

	rec := model.TrainRecord{
		TrainNo:         string(t.TrainNo),
		Direction:       dir,
		StationCode:     t.StCode,
		DestinationCode: t.DestCode,
		ElapsedSeconds:  elapsed,
		Status:          status,
	}
	if t.DriveRate != nil {
		rec.DriveRate = *t.DriveRate
	}
	return rec, nil
}

// parseElapsed reads the "time" field. Empty means zero; fractions truncate.
func parseElapsed(s FlexString) (int, error) {
	if s == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(string(s), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", s, err)
	}
	if math.IsNaN(f) || f < 0 || f > maxElapsedSeconds {
		return 0, fmt.Errorf("time %q out of range [0, %d]", s, maxElapsedSeconds)
	}
	return int(f), nil
}
