// Package images holds the embedded weather icon catalogue.
package images

import (
	_ "embed"
	"encoding/json"
	"github.com/sirupsen/logrus"
	"strconv"
)

//go:embed weather_icons.json
var WeatherIconsFile []byte

type WeatherIcon struct {
	Description string `json:"description"`
	Image       string `json:"image"`
}

type WeatherIconPair struct {
	Day   WeatherIcon `json:"day"`
	Night WeatherIcon `json:"night"`
}

// WeatherIcons maps a WMO weather code to its day and night icons
var WeatherIcons map[int]WeatherIconPair

func init() {
	var raw map[string]WeatherIconPair
	if err := json.Unmarshal(WeatherIconsFile, &raw); err != nil {
		logrus.Panicf("Can't load weather icons: %v", err)
	}

	WeatherIcons = make(map[int]WeatherIconPair, len(raw))
	for code, pair := range raw {
		wmoCode, err := strconv.Atoi(code)
		if err != nil {
			logrus.Panicf("Invalid weather code %q: %v", code, err)
		}
		WeatherIcons[wmoCode] = pair
	}
}

// WeatherIconUrl returns the icon url for a weather code, or "" when the
// catalogue has no icon for it.
func WeatherIconUrl(code int, isDaytime bool) string {
	pair, ok := WeatherIcons[code]
	if !ok {
		return ""
	}
	if isDaytime {
		return pair.Day.Image
	}
	return pair.Night.Image
}
