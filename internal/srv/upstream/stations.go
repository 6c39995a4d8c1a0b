package upstream

import (
	"context"
	"github.com/rubenparnell/departureBoard/internal/srv/cache"
	"time"
)

// UnknownStation is the name shown for a code missing from the directory
const UnknownStation = "Unknown"

// StationDirectory resolves station codes to display names
type StationDirectory struct {
	metro    *Metro
	stations *cache.Cache[string, map[string]string]
}

func NewStationDirectory(metro *Metro, now func() time.Time) *StationDirectory {
	return &StationDirectory{
		metro: metro,
		stations: cache.New[string, map[string]string](cache.Config{
			Name:       "stations",
			TTL:        cache.StationsTTL,
			RetryDelay: cache.DefaultRetryDelay,
			Now:        now,
		}),
	}
}

func (d *StationDirectory) Name(ctx context.Context, code string) string {
	stations, ok := d.stations.Get("", func() (map[string]string, error) {
		return d.metro.Stations(ctx)
	})
	if !ok {
		return UnknownStation
	}
	if name, found := stations[code]; found {
		return name
	}
	return UnknownStation
}
