package srv

import (
	"context"
	"github.com/rubenparnell/departureBoard/apimodel"
	"github.com/rubenparnell/departureBoard/internal/srv/cache"
	"github.com/rubenparnell/departureBoard/internal/srv/mode"
	"github.com/rubenparnell/departureBoard/internal/srv/screen"
	"github.com/rubenparnell/departureBoard/internal/srv/upstream"
	"github.com/sirupsen/logrus"
	"image"
	"strings"
	"time"
)

type SettingsReader interface {
	Current() apimodel.Settings
}

type DeparturesSource interface {
	Departures(ctx context.Context, station string, platform string) ([]upstream.Departure, error)
}

type StationNamer interface {
	Name(ctx context.Context, code string) string
}

type ForecastSource interface {
	Forecast(ctx context.Context, latitude float64, longitude float64) (upstream.Forecast, error)
}

type IconSource interface {
	Icon(ctx context.Context, code int, isDaytime bool) (image.Image, error)
}

type FilmSource interface {
	Films(ctx context.Context) ([]upstream.Film, error)
}

type MessageSource interface {
	Messages(ctx context.Context) ([]upstream.Message, error)
}

type Sources struct {
	Metro    DeparturesSource
	Stations StationNamer
	Weather  ForecastSource
	Icons    IconSource
	Cinema   FilmSource
	Messages MessageSource
}

type coordinates struct {
	latitude  float64
	longitude float64
}

// Frames gathers the data of a mode and renders it. It keeps one cache per
// expensive upstream and the scroll position of the scrolling modes.
type Frames struct {
	panel    screen.Panel
	settings SettingsReader
	sources  Sources
	linkUrl  string
	location *time.Location
	now      func() time.Time

	weather  *cache.Cache[coordinates, upstream.Forecast]
	films    *cache.Cache[string, []upstream.Film]
	messages *cache.Cache[string, []upstream.Message]

	filmsScroll    screen.ScrollState
	messagesScroll screen.ScrollState
}

func NewFrames(panel screen.Panel, settings SettingsReader, sources Sources, linkUrl string, location *time.Location, now func() time.Time) *Frames {
	if location == nil {
		location = time.Local
	}
	if now == nil {
		now = time.Now
	}
	return &Frames{
		panel:    panel,
		settings: settings,
		sources:  sources,
		linkUrl:  linkUrl,
		location: location,
		now:      now,
		weather: cache.New[coordinates, upstream.Forecast](cache.Config{
			Name: "weather", TTL: cache.WeatherTTL, RetryDelay: cache.DefaultRetryDelay, Now: now,
		}),
		films: cache.New[string, []upstream.Film](cache.Config{
			Name: "films", RetryDelay: cache.DefaultRetryDelay, Now: now,
		}),
		messages: cache.New[string, []upstream.Message](cache.Config{
			Name: "messages", TTL: cache.MessagesTTL, RetryDelay: cache.DefaultRetryDelay, Now: now,
		}),
	}
}

// ForceMessages makes the next messages frame fetch the feed again
func (f *Frames) ForceMessages() {
	f.messages.Force()
}

// ForceAll makes every cache fetch again on its next read
func (f *Frames) ForceAll() {
	f.weather.Force()
	f.films.Force()
	f.messages.Force()
}

// Render produces the frame of m. The off mode has no frame.
func (f *Frames) Render(ctx context.Context, m mode.Mode) screen.Result {
	logrus.Debugf("Render %s frame", m)

	switch m {
	case mode.MESSAGES_MODE:
		return f.renderMessages(ctx)
	case mode.METRO_MODE:
		return f.renderMetro(ctx)
	case mode.WEATHER_MODE:
		return f.renderWeather(ctx)
	case mode.WEATHER_GRAPH_MODE:
		return f.renderWeatherGraph(ctx)
	case mode.FILMS_MODE:
		return f.renderFilms(ctx)
	case mode.LINK_MODE:
		return f.panel.Link(f.linkUrl)
	default:
		return screen.Result{Block: true}
	}
}

func (f *Frames) renderMessages(ctx context.Context) screen.Result {
	messages, _ := f.messages.Get("", func() ([]upstream.Message, error) {
		return f.sources.Messages.Messages(ctx)
	})
	result, hasMore := f.panel.Messages(messages, f.messagesScroll.Page)
	f.messagesScroll.MessageTick(hasMore)
	return result
}

func (f *Frames) renderMetro(ctx context.Context) screen.Result {
	settings := f.settings.Current()
	first := f.stationBoard(ctx, settings.Station1, settings.Platform1)
	second := f.stationBoard(ctx, settings.Station2, settings.Platform2)
	return f.panel.Metro(first, second)
}

func (f *Frames) stationBoard(ctx context.Context, station string, platform string) screen.StationBoard {
	departures, err := f.sources.Metro.Departures(ctx, station, platform)
	if err != nil {
		logrus.Warnf("Unable to fetch departures: %v", err)
		departures = nil
	}
	return screen.StationBoard{
		StationName: f.sources.Stations.Name(ctx, station),
		Platform:    platform,
		Departures:  departures,
	}
}

func (f *Frames) forecast(ctx context.Context) (upstream.Forecast, bool) {
	settings := f.settings.Current()
	return f.weather.Get(coordinates{settings.Latitude, settings.Longitude}, func() (upstream.Forecast, error) {
		return f.sources.Weather.Forecast(ctx, settings.Latitude, settings.Longitude)
	})
}

func (f *Frames) renderWeather(ctx context.Context) screen.Result {
	hours := f.settings.Current().ForecastHours
	forecast, ok := f.forecast(ctx)
	if !ok {
		return f.panel.Weather(hours, nil, nil)
	}

	samples := forecast.AtHours(f.now().In(f.location), hours)
	icons := map[int]image.Image{}
	for hour, sample := range samples {
		icon, err := f.sources.Icons.Icon(ctx, sample.WeatherCode, sample.IsDaytime)
		if err != nil {
			logrus.Warnf("Unable to load weather icon: %v", err)
			continue
		}
		if icon != nil {
			icons[hour] = icon
		}
	}
	return f.panel.Weather(hours, samples, icons)
}

func (f *Frames) renderWeatherGraph(ctx context.Context) screen.Result {
	now := f.now().In(f.location)
	forecast, ok := f.forecast(ctx)
	if !ok {
		return f.panel.WeatherGraph(nil, now)
	}
	return f.panel.WeatherGraph(forecast.Day(now), now)
}

func (f *Frames) renderFilms(ctx context.Context) screen.Result {
	today := f.now().In(f.location).Format("2006-01-02")
	films, _ := f.films.Get(today, func() ([]upstream.Film, error) {
		return f.sources.Cinema.Films(ctx)
	})
	result := f.panel.Films(films, f.filmsScroll)
	f.filmsScroll.FilmTick()
	return result
}

// LinkUrl is the page where the board settings are changed
func LinkUrl(base string, boardId string) string {
	return strings.TrimRight(base, "/") + "/" + boardId
}
