package station

import (
	"errors"
	"fmt"

	"github.com/rickgao/everline-data/internal/model"
)

// Count is the number of stations on the line.
const Count = 15

var (
	// ErrUnknownStationCode is returned for codes outside Y110..Y124.
	ErrUnknownStationCode = errors.New("unknown station code")

	// ErrOutOfRange is returned for ordinals outside 0..Count-1.
	ErrOutOfRange = errors.New("station ordinal out of range")
)

// Name is a station's display name.
type Name struct {
	Local     string `json:"local"`
	Romanized string `json:"romanized"`
}

// Station is one entry of the table. Ordinal is the position in down order.
type Station struct {
	Code    string `json:"code"`
	Name    Name   `json:"name"`
	Ordinal int    `json:"ordinal"`
}

// stations is in down order.
var stations = [Count]Station{
	{Code: "Y110", Name: Name{"기흥", "Giheung"}},
	{Code: "Y111", Name: Name{"강남대", "KANGNAM UNIV."}},
	{Code: "Y112", Name: Name{"지석", "JISEOK"}},
	{Code: "Y113", Name: Name{"어정", "EOJEONG"}},
	{Code: "Y114", Name: Name{"동백", "DONGBAEK"}},
	{Code: "Y115", Name: Name{"초당", "CHODANG"}},
	{Code: "Y116", Name: Name{"삼가", "SAMGA"}},
	{Code: "Y117", Name: Name{"시청·용인대", "Cityhall·Yongin Univ"}},
	{Code: "Y118", Name: Name{"명지대", "MYONGJI UNIV."}},
	{Code: "Y119", Name: Name{"김량장", "GIMYANGJANG"}},
	{Code: "Y120", Name: Name{"용인중앙시장", "Yongin Jungang Market"}},
	{Code: "Y121", Name: Name{"고진", "GOJIN"}},
	{Code: "Y122", Name: Name{"보평", "BOPYEONG"}},
	{Code: "Y123", Name: Name{"둔전", "DUNJEON"}},
	{Code: "Y124", Name: Name{"전대·에버랜드", "JEONDAE·EVERLAND"}},
}

// Running times between adjacent stations, indexed in each direction's own order.
var (
	durationDown = [Count - 1]int{89, 74, 78, 83, 121, 147, 79, 77, 64, 71, 102, 110, 77, 179}
	durationUp   = [Count - 1]int{96, 82, 77, 86, 122, 172, 79, 75, 62, 70, 76, 124, 85, 184}
)

var (
	byCode       map[string]int
	orderingDown [Count]string
	orderingUp   [Count]string
)

func init() {
	byCode = make(map[string]int, Count)
	for i := range stations {
		stations[i].Ordinal = i
		byCode[stations[i].Code] = i
		orderingDown[i] = stations[i].Code
		orderingUp[Count-1-i] = stations[i].Code
	}
	buildNameIndex()
}

// Lookup returns the station for a code.
func Lookup(code string) (Station, error) {
	i, ok := byCode[code]
	if !ok {
		return Station{}, fmt.Errorf("%w: %q", ErrUnknownStationCode, code)
	}
	return stations[i], nil
}

// NameOf returns the local and romanized names for a code.
func NameOf(code string) (Name, error) {
	s, err := Lookup(code)
	if err != nil {
		return Name{}, err
	}
	return s.Name, nil
}

// All returns every station in down order.
func All() []Station {
	out := make([]Station, Count)
	copy(out, stations[:])
	return out
}

// OrderingFor returns the station codes in travel order for a direction.
// Unknown directions get the down ordering.
func OrderingFor(dir model.Direction) []string {
	out := make([]string, Count)
	if dir == model.Up {
		copy(out, orderingUp[:])
	} else {
		copy(out, orderingDown[:])
	}
	return out
}

// OrdinalOf returns the position of code in the direction's ordering.
func OrdinalOf(dir model.Direction, code string) (int, error) {
	i, ok := byCode[code]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownStationCode, code)
	}
	if dir == model.Up {
		return Count - 1 - i, nil
	}
	return i, nil
}

// CodeAt returns the code at an ordinal of the direction's ordering.
func CodeAt(dir model.Direction, ordinal int) (string, error) {
	if ordinal < 0 || ordinal >= Count {
		return "", fmt.Errorf("%w: %d", ErrOutOfRange, ordinal)
	}
	if dir == model.Up {
		return orderingUp[ordinal], nil
	}
	return orderingDown[ordinal], nil
}

// Durations returns the 14 running times for a direction.
func Durations(dir model.Direction) []int {
	src := durationDown
	if dir == model.Up {
		src = durationUp
	}
	out := make([]int, len(src))
	copy(out, src[:])
	return out
}

// SegmentDuration returns the running time from ordinal to ordinal+1.
func SegmentDuration(dir model.Direction, ordinal int) (int, error) {
	if ordinal < 0 || ordinal >= Count-1 {
		return 0, fmt.Errorf("%w: segment %d", ErrOutOfRange, ordinal)
	}
	if dir == model.Up {
		return durationUp[ordinal], nil
	}
	return durationDown[ordinal], nil
}

// DurationBetween sums the running times between two ordinals of a
// direction's ordering. The order of from and to does not matter.
func DurationBetween(dir model.Direction, from, to int) (int, error) {
	if from < 0 || from >= Count {
		return 0, fmt.Errorf("%w: %d", ErrOutOfRange, from)
	}
	if to < 0 || to >= Count {
		return 0, fmt.Errorf("%w: %d", ErrOutOfRange, to)
	}
	if from > to {
		from, to = to, from
	}

	table := durationDown
	if dir == model.Up {
		table = durationUp
	}

	total := 0
	for _, d := range table[from:to] {
		total += d
	}
	return total, nil
}
