package config

import (
	"encoding/json"
	"fmt"
	"github.com/rubenparnell/departureBoard/apimodel"
	"github.com/rubenparnell/departureBoard/internal/srv/event"
	"github.com/sirupsen/logrus"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"sync"
)

var DefaultForecastHours = []int{9, 12, 15, 18}

func DefaultSettings() apimodel.Settings {
	return apimodel.Settings{
		Station1:      "TYN",
		Platform1:     "1",
		Station2:      "TYN",
		Platform2:     "2",
		Latitude:      0,
		Longitude:     0,
		ForecastHours: append([]int(nil), DefaultForecastHours...),
	}
}

// SettingsStore owns settings.json and the in-memory snapshot read by every
// render cycle. Saves are whole-record replacements: last writer wins.
type SettingsStore struct {
	lock     sync.RWMutex
	filename string
	current  apimodel.Settings
	poster   event.Poster
}

// NewSettingsStore loads filename, writing the default settings first when
// the file does not exist yet.
func NewSettingsStore(filename string, poster event.Poster) (*SettingsStore, error) {
	store := &SettingsStore{
		filename: filename,
		poster:   poster,
	}

	if _, err := os.Stat(filename); os.IsNotExist(err) {
		logrus.Infof("Create default settings file")
		if err = store.write(DefaultSettings()); err != nil {
			return nil, err
		}
	}

	settings, err := store.Load()
	if err != nil {
		return nil, err
	}
	store.current = settings
	return store, nil
}

// SetPoster sets where change notifications are sent
func (s *SettingsStore) SetPoster(poster event.Poster) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.poster = poster
}

func (s *SettingsStore) Filename() string {
	return s.filename
}

// Load reads the persisted settings. Missing fields take their default value
// and a missing file yields the default settings.
func (s *SettingsStore) Load() (apimodel.Settings, error) {
	raw, err := os.ReadFile(s.filename)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return apimodel.Settings{}, fmt.Errorf("unable to read settings file: %w", err)
	}

	settings := DefaultSettings()
	settings.ForecastHours = nil
	if err = json.Unmarshal(raw, &settings); err != nil {
		return apimodel.Settings{}, fmt.Errorf("unable to interpret settings file: %w", err)
	}
	settings.ForecastHours = NormalizeForecastHours(settings.ForecastHours)
	return settings, nil
}

// Current returns the in-memory snapshot
func (s *SettingsStore) Current() apimodel.Settings {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.current.Clone()
}

// Save validates, persists and publishes new settings
func (s *SettingsStore) Save(settings apimodel.Settings) (apimodel.Settings, error) {
	settings = settings.Clone()
	settings.ForecastHours = NormalizeForecastHours(settings.ForecastHours)

	logrus.Infof("Saving settings: %s, %s, %s, %s, %v, %v, %v",
		settings.Station1, settings.Platform1, settings.Station2, settings.Platform2,
		settings.Latitude, settings.Longitude, settings.ForecastHours)

	s.lock.Lock()
	err := s.write(settings)
	if err == nil {
		s.current = settings
	}
	poster := s.poster
	s.lock.Unlock()

	if err != nil {
		return apimodel.Settings{}, err
	}
	if poster != nil {
		poster.Post(event.SettingsChanged())
	}
	return settings.Clone(), nil
}

// Update applies a partial update on top of the current settings and saves
// the result. Forecast hour tokens are cleaned the way a form input would be.
func (s *SettingsStore) Update(update apimodel.SettingsUpdate) (apimodel.Settings, error) {
	settings, tokens := update.Apply(s.Current())
	settings.ForecastHours = ParseForecastHours(tokens)
	return s.Save(settings)
}

// Reload re-reads the file after an external edit. It reports whether the
// settings changed, and only then notifies.
func (s *SettingsStore) Reload() (bool, error) {
	settings, err := s.Load()
	if err != nil {
		return false, err
	}

	s.lock.Lock()
	changed := !reflect.DeepEqual(settings, s.current)
	if changed {
		s.current = settings
	}
	poster := s.poster
	s.lock.Unlock()

	if changed {
		logrus.Infof("Settings file changed on disk")
		if poster != nil {
			poster.Post(event.SettingsChanged())
		}
	}
	return changed, nil
}

// write replaces the settings file through a rename so that readers never
// see a partial file.
func (s *SettingsStore) write(settings apimodel.Settings) error {
	raw, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("unable to serialize settings: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.filename), ".settings-*.json")
	if err != nil {
		return fmt.Errorf("unable to save settings: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err = tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("unable to save settings: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("unable to save settings: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("unable to save settings: %w", err)
	}
	if err = os.Chmod(tmp.Name(), 0660); err != nil {
		return fmt.Errorf("unable to save settings: %w", err)
	}
	if err = os.Rename(tmp.Name(), s.filename); err != nil {
		return fmt.Errorf("unable to save settings: %w", err)
	}
	return nil
}

// ParseForecastHours keeps the numeric tokens that are valid hours, in order.
// An empty result falls back to the default hours.
func ParseForecastHours(tokens []string) []int {
	var hours []int
	for _, token := range tokens {
		token = strings.TrimSpace(token)
		if token == "" || strings.IndexFunc(token, func(r rune) bool { return r < '0' || r > '9' }) >= 0 {
			continue
		}
		hour, err := strconv.Atoi(token)
		if err != nil || hour > 23 {
			continue
		}
		hours = append(hours, hour)
	}
	if len(hours) == 0 {
		return append([]int(nil), DefaultForecastHours...)
	}
	return hours
}

func NormalizeForecastHours(hours []int) []int {
	var kept []int
	for _, hour := range hours {
		if hour >= 0 && hour <= 23 {
			kept = append(kept, hour)
		}
	}
	if len(kept) == 0 {
		return append([]int(nil), DefaultForecastHours...)
	}
	return kept
}
