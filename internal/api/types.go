package api

import (
	"bytes"
	"encoding/json"
	"strings"
)

// TrainsResponse is the body of the realtime endpoint.
type TrainsResponse struct {
	Data []APITrain `json:"data"`
}

// APITrain is one train entry as the endpoint encodes it.
// Field names must stay exactly as upstream spells them.
type APITrain struct {
	TrainNo    FlexString `json:"TrainNo"`
	UpdownCode FlexString `json:"updownCode"` // "1" up, "2" down
	StCode     string     `json:"StCode"`     // Current station, e.g. "Y114"
	DestCode   string     `json:"DestCode"`
	StatusCode FlexString `json:"StatusCode"` // "1" returning, "2" stopped, "3" departed
	Time       FlexString `json:"time"`       // Seconds spent since StCode, string or number
	DriveRate  *float64   `json:"driveRate,omitempty"`
}

// FlexString accepts a JSON string or number.
type FlexString string

func (s *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*s = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = FlexString(strings.TrimSpace(v))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*s = FlexString(n.String())
	return nil
}
