// Package gtfsrt exports train snapshots as a GTFS-realtime VehiclePositions feed.
package gtfsrt

import (
	"fmt"

	gtfs "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"google.golang.org/protobuf/encoding/prototext"
	"google.golang.org/protobuf/proto"

	"github.com/rickgao/everline-data/internal/model"
	"github.com/rickgao/everline-data/internal/query"
)

// RouteID is the route_id used for every vehicle.
const RouteID = "EVERLINE"

// FeedFromSnapshot builds a full-dataset feed with one vehicle per train.
// A nil snapshot yields a feed with a header and no entities.
func FeedFromSnapshot(snap *model.Snapshot) *gtfs.FeedMessage {
	feed := &gtfs.FeedMessage{
		Header: &gtfs.FeedHeader{
			GtfsRealtimeVersion: proto.String("2.0"),
			Incrementality:      gtfs.FeedHeader_FULL_DATASET.Enum(),
		},
	}
	if snap == nil {
		return feed
	}

	ts := uint64(snap.FetchedAt.Unix())
	feed.Header.Timestamp = proto.Uint64(ts)

	for i, r := range snap.Records {
		feed.Entity = append(feed.Entity, &gtfs.FeedEntity{
			Id:      proto.String(fmt.Sprintf("%s-%d", r.TrainNo, i)),
			Vehicle: vehiclePosition(r, ts),
		})
	}
	return feed
}

func vehiclePosition(r model.TrainRecord, ts uint64) *gtfs.VehiclePosition {
	vp := &gtfs.VehiclePosition{
		Trip: &gtfs.TripDescriptor{
			RouteId:     proto.String(RouteID),
			DirectionId: proto.Uint32(directionID(r.Direction)),
		},
		Vehicle: &gtfs.VehicleDescriptor{
			Id:    proto.String(r.TrainNo),
			Label: proto.String(r.TrainNo),
		},
		StopId:        proto.String(r.StationCode),
		CurrentStatus: gtfs.VehiclePosition_STOPPED_AT.Enum(),
		Timestamp:     proto.Uint64(ts),
	}

	if r.Status == model.Departed {
		if next, ok := query.NextStation(r); ok {
			vp.StopId = proto.String(next)
			vp.CurrentStatus = gtfs.VehiclePosition_IN_TRANSIT_TO.Enum()
		}
	}
	return vp
}

// directionID maps down to 0 (outbound from Giheung) and up to 1.
func directionID(d model.Direction) uint32 {
	if d == model.Up {
		return 1
	}
	return 0
}

// Marshal encodes the feed in protobuf wire format.
func Marshal(feed *gtfs.FeedMessage) ([]byte, error) {
	b, err := proto.Marshal(feed)
	if err != nil {
		return nil, fmt.Errorf("marshal feed: %w", err)
	}
	return b, nil
}

// MarshalText encodes the feed as prototext for debugging.
func MarshalText(feed *gtfs.FeedMessage) ([]byte, error) {
	b, err := prototext.MarshalOptions{Multiline: true}.Marshal(feed)
	if err != nil {
		return nil, fmt.Errorf("marshal feed text: %w", err)
	}
	return b, nil
}
