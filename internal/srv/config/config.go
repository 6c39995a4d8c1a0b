package config

import (
	"fmt"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
	"os"
	"path/filepath"
	"time"
)

const paramFilename = "param.yaml"
const stateFilename = "state.yaml"
const settingsFilename = "settings.json"

type ServerConfig struct {
	ConfigDir      string
	DebugMode      bool
	SimulationMode bool

	*ServerParam
	*ServerState

	Settings *SettingsStore

	location *time.Location
}

func NewServerConfig(configDir string, debugMode bool, simulationMode bool) *ServerConfig {
	serverConfig, err := LoadServerConfig(configDir, debugMode, simulationMode)
	if err != nil {
		logrus.Fatalf("Unable to load configuration: %v\n", err)
	}
	return serverConfig
}

// LoadServerConfig reads (or creates) every file of the config folder
func LoadServerConfig(configDir string, debugMode bool, simulationMode bool) (*ServerConfig, error) {
	serverConfig := &ServerConfig{
		ConfigDir:      configDir,
		DebugMode:      debugMode,
		SimulationMode: simulationMode,
	}

	// Check Configuration folder
	_, err := os.Stat(configDir)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("unable to access config folder %s: %w", configDir, err)
		}
		logrus.Printf("Creation of config folder: %s", configDir)
		if err = os.MkdirAll(configDir, 0770); err != nil {
			return nil, fmt.Errorf("unable to create config folder: %w", err)
		}
	}

	// Open param file
	serverConfig.ServerParam = &ServerParam{}
	rawConfig, err := os.ReadFile(serverConfig.GetCompleteParamFilename())
	if err == nil {
		err = yaml.Unmarshal(rawConfig, serverConfig.ServerParam)
		if err != nil {
			return nil, fmt.Errorf("unable to interpret param file: %w", err)
		}
	} else {
		logrus.Infof("Create default param file")
		err = yaml.Unmarshal(ParamDefaultFile, serverConfig.ServerParam)
		if err != nil {
			return nil, fmt.Errorf("unable to interpret default param file: %w", err)
		}
		if err = serverConfig.SaveParam(); err != nil {
			return nil, err
		}
	}

	if serverConfig.BoardId == "" {
		serverConfig.BoardId = uuid.NewString()
		logrus.Infof("Generated board id %s", serverConfig.BoardId)
		if err = serverConfig.SaveParam(); err != nil {
			return nil, err
		}
	}

	serverConfig.location = time.Local
	if serverConfig.Timezone != "" {
		location, err := time.LoadLocation(serverConfig.Timezone)
		if err != nil {
			logrus.Warnf("Unknown timezone %s, using local time: %v", serverConfig.Timezone, err)
		} else {
			serverConfig.location = location
		}
	}

	// Open state file
	serverConfig.ServerState = NewServerState(serverConfig.GetCompleteStateFilename())

	// Open settings file
	serverConfig.Settings, err = NewSettingsStore(serverConfig.GetCompleteSettingsFilename(), nil)
	if err != nil {
		return nil, err
	}

	return serverConfig, nil
}

func (sc *ServerConfig) GetCompleteParamFilename() string {
	return filepath.Join(sc.ConfigDir, paramFilename)
}

func (sc *ServerConfig) GetCompleteStateFilename() string {
	return filepath.Join(sc.ConfigDir, stateFilename)
}

func (sc *ServerConfig) GetCompleteSettingsFilename() string {
	return filepath.Join(sc.ConfigDir, settingsFilename)
}

// Location is the timezone used to decide what "today" is
func (sc *ServerConfig) Location() *time.Location {
	return sc.location
}

func (sc *ServerConfig) SaveParam() error {
	logrus.Debugf("Save param file: %s", sc.GetCompleteParamFilename())
	rawConfig, err := yaml.Marshal(*sc.ServerParam)
	if err != nil {
		return fmt.Errorf("unable to serialize param file: %w", err)
	}
	err = os.WriteFile(sc.GetCompleteParamFilename(), rawConfig, 0660)
	if err != nil {
		return fmt.Errorf("unable to save param file: %w", err)
	}
	return nil
}
