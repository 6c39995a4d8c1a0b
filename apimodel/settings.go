package apimodel

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Settings is the user configuration shown on the board. It is persisted as
// settings.json and exchanged as-is over the local API.
type Settings struct {
	Station1      string  `json:"station1"`
	Platform1     string  `json:"platform1"`
	Station2      string  `json:"station2"`
	Platform2     string  `json:"platform2"`
	Latitude      float64 `json:"lat"`
	Longitude     float64 `json:"lon"`
	ForecastHours []int   `json:"forecast_hours"`
}

// Clone returns a copy that does not share the forecast hours slice
func (s Settings) Clone() Settings {
	s.ForecastHours = append([]int(nil), s.ForecastHours...)
	return s
}

// SettingsUpdate is a partial Settings: absent fields keep their current value.
type SettingsUpdate struct {
	Station1      *string   `json:"station1,omitempty"`
	Platform1     *Platform `json:"platform1,omitempty"`
	Station2      *string   `json:"station2,omitempty"`
	Platform2     *Platform `json:"platform2,omitempty"`
	Latitude      *float64  `json:"lat,omitempty"`
	Longitude     *float64  `json:"lon,omitempty"`
	ForecastHours *HourList `json:"forecast_hours,omitempty"`
}

// Apply merges the update into s. Forecast hour tokens are copied raw, the
// settings store is in charge of cleaning them.
func (u SettingsUpdate) Apply(s Settings) (Settings, []string) {
	s = s.Clone()
	if u.Station1 != nil {
		s.Station1 = *u.Station1
	}
	if u.Platform1 != nil {
		s.Platform1 = string(*u.Platform1)
	}
	if u.Station2 != nil {
		s.Station2 = *u.Station2
	}
	if u.Platform2 != nil {
		s.Platform2 = string(*u.Platform2)
	}
	if u.Latitude != nil {
		s.Latitude = *u.Latitude
	}
	if u.Longitude != nil {
		s.Longitude = *u.Longitude
	}
	var tokens []string
	if u.ForecastHours != nil {
		tokens = []string(*u.ForecastHours)
	} else {
		for _, h := range s.ForecastHours {
			tokens = append(tokens, strconv.Itoa(h))
		}
	}
	return s, tokens
}

// Platform accepts both "2" and 2
type Platform string

func (p *Platform) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*p = Platform(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return fmt.Errorf("platform: %w", err)
	}
	*p = Platform(num.String())
	return nil
}

// HourList keeps the raw forecast hour tokens, sent either as a comma
// separated string ("9,12,15,18") or as an array of numbers or strings.
type HourList []string

func (h *HourList) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*h = strings.Split(str, ",")
		return nil
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("forecast_hours: %w", err)
	}
	tokens := make(HourList, 0, len(raw))
	for _, item := range raw {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			tokens = append(tokens, s)
			continue
		}
		tokens = append(tokens, strings.TrimSpace(string(item)))
	}
	*h = tokens
	return nil
}

// ModeStatus is published on every mode change and returned by the mode API
type ModeStatus struct {
	Mode string `json:"mode"`
}
