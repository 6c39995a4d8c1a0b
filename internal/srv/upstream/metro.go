package upstream

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// DeparturesShown is how many departures are kept per platform
const DeparturesShown = 2

type Departure struct {
	Destination string `json:"destination"`
	DueIn       int    `json:"dueIn"`
}

// Metro is the real time information API of the metro network
type Metro struct {
	client  *Client
	baseUrl string
}

func NewMetro(client *Client, baseUrl string) *Metro {
	return &Metro{
		client:  client,
		baseUrl: strings.TrimRight(baseUrl, "/"),
	}
}

// Departures returns the next departures from a station platform
func (m *Metro) Departures(ctx context.Context, station string, platform string) ([]Departure, error) {
	var departures []Departure
	endpoint := m.baseUrl + "/times/" + url.PathEscape(station) + "/" + url.PathEscape(platform)
	if err := m.client.getJSON(ctx, endpoint, &departures); err != nil {
		return nil, fmt.Errorf("departures %s/%s: %w", station, platform, err)
	}
	if len(departures) > DeparturesShown {
		departures = departures[:DeparturesShown]
	}
	return departures, nil
}

// Stations returns the station code to name directory
func (m *Metro) Stations(ctx context.Context) (map[string]string, error) {
	stations := map[string]string{}
	if err := m.client.getJSON(ctx, m.baseUrl+"/stations", &stations); err != nil {
		return nil, fmt.Errorf("stations: %w", err)
	}
	return stations, nil
}
