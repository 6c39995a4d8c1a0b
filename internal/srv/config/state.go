package config

import (
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
	"os"
	"sync"
	"time"
)

const stateSaveDelay = 10 * time.Second

// ServerState is what the board remembers between two runs
type ServerState struct {
	serverStateConfig     ServerStateConfig
	lock                  sync.RWMutex
	backupTimer           *time.Timer
	completeStateFilename string
}

func NewServerState(completeStateFilename string) *ServerState {
	serverState := &ServerState{
		completeStateFilename: completeStateFilename,
	}

	rawConfig, err := os.ReadFile(completeStateFilename)
	if err == nil {
		// Interpret state file
		err = yaml.Unmarshal(rawConfig, &serverState.serverStateConfig)
		if err != nil {
			logrus.Warnf("Unable to interpret state file, starting from scratch: %v", err)
			serverState.serverStateConfig = ServerStateConfig{}
		}
	} else {
		logrus.Infof("Create default state file")
		serverState.SetMode("messages")
	}

	return serverState
}

// Mode is the name of the last active mode
func (ss *ServerState) Mode() string {
	ss.lock.RLock()
	defer ss.lock.RUnlock()

	return ss.serverStateConfig.Mode
}

func (ss *ServerState) SetMode(mode string) {
	ss.lock.Lock()
	defer ss.lock.Unlock()

	if ss.serverStateConfig.Mode == mode && ss.backupTimer != nil {
		return
	}
	ss.serverStateConfig.Mode = mode
	ss.scheduleSave()
}

func (ss *ServerState) scheduleSave() {
	if ss.backupTimer == nil {
		ss.backupTimer = time.AfterFunc(stateSaveDelay, func() {
			ss.lock.Lock()
			defer ss.lock.Unlock()
			ss.save()
		})
	} else {
		ss.backupTimer.Reset(stateSaveDelay)
	}
}

func (ss *ServerState) save() {
	logrus.Infof("Save state file: %s", ss.completeStateFilename)
	rawConfig, err := yaml.Marshal(&ss.serverStateConfig)
	if err != nil {
		logrus.Errorf("Unable to serialize state file: %v", err)
		return
	}
	err = os.WriteFile(ss.completeStateFilename, rawConfig, 0660)
	if err != nil {
		logrus.Errorf("Unable to save state file: %v", err)
	}
}

func (ss *ServerState) FlushSave() {
	ss.lock.Lock()
	defer ss.lock.Unlock()
	if ss.backupTimer != nil {
		if ss.backupTimer.Stop() {
			ss.save()
		}
	}
}

type ServerStateConfig struct {
	Mode string `yaml:"mode"`
}
