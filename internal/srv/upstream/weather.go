package upstream

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"
)

type HourSample struct {
	Time                     time.Time
	Temperature              float64
	PrecipitationProbability float64
	WeatherCode              int
	UVIndex                  float64
	IsDaytime                bool
}

// Forecast is an hourly forecast, samples are in time order
type Forecast struct {
	Hours []HourSample
}

// Day returns the samples of the calendar day of now
func (f Forecast) Day(now time.Time) []HourSample {
	var samples []HourSample
	year, month, day := now.Date()
	for _, sample := range f.Hours {
		y, m, d := sample.Time.In(now.Location()).Date()
		if y == year && m == month && d == day {
			samples = append(samples, sample)
		}
	}
	return samples
}

// AtHours picks, for the day of now, the sample of every requested hour
func (f Forecast) AtHours(now time.Time, hours []int) map[int]HourSample {
	wanted := make(map[int]bool, len(hours))
	for _, hour := range hours {
		wanted[hour] = true
	}
	picked := map[int]HourSample{}
	for _, sample := range f.Day(now) {
		hour := sample.Time.In(now.Location()).Hour()
		if wanted[hour] {
			picked[hour] = sample
		}
	}
	return picked
}

type openMeteoResponse struct {
	Hourly struct {
		Time                     []string   `json:"time"`
		Temperature              []float64  `json:"temperature_2m"`
		PrecipitationProbability []*float64 `json:"precipitation_probability"`
		WeatherCode              []int      `json:"weathercode"`
		UVIndex                  []*float64 `json:"uv_index"`
		IsDay                    []int      `json:"is_day"`
	} `json:"hourly"`
}

// OpenMeteo is the open-meteo.com forecast API
type OpenMeteo struct {
	client   *Client
	baseUrl  string
	location *time.Location
}

func NewOpenMeteo(client *Client, baseUrl string, location *time.Location) *OpenMeteo {
	if location == nil {
		location = time.Local
	}
	return &OpenMeteo{
		client:   client,
		baseUrl:  baseUrl,
		location: location,
	}
}

// Forecast returns today's hourly forecast for a position
func (o *OpenMeteo) Forecast(ctx context.Context, latitude float64, longitude float64) (Forecast, error) {
	query := url.Values{}
	query.Set("latitude", strconv.FormatFloat(latitude, 'f', -1, 64))
	query.Set("longitude", strconv.FormatFloat(longitude, 'f', -1, 64))
	query.Set("hourly", "temperature_2m,precipitation_probability,weathercode,uv_index,is_day")
	query.Set("forecast_days", "1")
	query.Set("timezone", o.location.String())

	var response openMeteoResponse
	if err := o.client.getJSON(ctx, o.baseUrl+"?"+query.Encode(), &response); err != nil {
		return Forecast{}, fmt.Errorf("weather: %w", err)
	}
	return response.forecast(o.location)
}

func (r openMeteoResponse) forecast(location *time.Location) (Forecast, error) {
	hourly := r.Hourly
	count := len(hourly.Time)
	if len(hourly.Temperature) != count || len(hourly.PrecipitationProbability) != count ||
		len(hourly.WeatherCode) != count || len(hourly.UVIndex) != count || len(hourly.IsDay) != count {
		return Forecast{}, fmt.Errorf("weather: hourly arrays are not aligned")
	}

	forecast := Forecast{Hours: make([]HourSample, 0, count)}
	for i, raw := range hourly.Time {
		t, err := time.ParseInLocation("2006-01-02T15:04", raw, location)
		if err != nil {
			return Forecast{}, fmt.Errorf("weather: invalid time %q: %w", raw, err)
		}
		forecast.Hours = append(forecast.Hours, HourSample{
			Time:                     t,
			Temperature:              hourly.Temperature[i],
			PrecipitationProbability: valueOrZero(hourly.PrecipitationProbability[i]),
			WeatherCode:              hourly.WeatherCode[i],
			UVIndex:                  valueOrZero(hourly.UVIndex[i]),
			IsDaytime:                hourly.IsDay[i] != 0,
		})
	}
	return forecast, nil
}

func valueOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
