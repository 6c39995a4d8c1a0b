package device

import (
	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
	"path/filepath"
	"sync"
	"time"
)

const settingsReloadDelay = 500 * time.Millisecond

// SettingsReloader is implemented by the settings store
type SettingsReloader interface {
	Filename() string
	Reload() (bool, error)
}

// SettingsWatcher reloads the settings file when it is edited outside of the
// board. The store signals the scheduler only when the content changed.
type SettingsWatcher struct {
	store SettingsReloader
	delay time.Duration

	watcher *fsnotify.Watcher

	timerLock   sync.Mutex
	reloadTimer *time.Timer

	askDone chan bool
	done    chan bool
}

func NewSettingsWatcher(store SettingsReloader) *SettingsWatcher {
	return &SettingsWatcher{
		store:   store,
		delay:   settingsReloadDelay,
		askDone: make(chan bool),
		done:    make(chan bool),
	}
}

func (d *SettingsWatcher) Start() error {
	logrus.Infof("Start settings watcher device")

	var err error
	d.watcher, err = fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	// The directory is watched: saving replaces the file
	if err = d.watcher.Add(filepath.Dir(d.store.Filename())); err != nil {
		d.watcher.Close()
		return err
	}

	filename := filepath.Clean(d.store.Filename())
	go func() {
		for loop := true; loop; {
			select {
			case ev, ok := <-d.watcher.Events:
				if !ok {
					loop = false
					break
				}
				if filepath.Clean(ev.Name) == filename && ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
					d.scheduleReload()
				}
			case err, ok := <-d.watcher.Errors:
				if !ok {
					loop = false
					break
				}
				logrus.Warnf("Settings watcher error: %v", err)
			case <-d.askDone:
				loop = false
			}
		}
		d.done <- true
	}()
	return nil
}

func (d *SettingsWatcher) scheduleReload() {
	d.timerLock.Lock()
	defer d.timerLock.Unlock()

	if d.reloadTimer != nil {
		d.reloadTimer.Stop()
	}
	d.reloadTimer = time.AfterFunc(d.delay, func() {
		changed, err := d.store.Reload()
		if err != nil {
			logrus.Warnf("Unable to reload settings: %v", err)
			return
		}
		if changed {
			logrus.Infof("Settings file changed")
		}
	})
}

func (d *SettingsWatcher) StopSendingEvent() {
	logrus.Infof("Stop settings watcher device")

	d.timerLock.Lock()
	if d.reloadTimer != nil {
		d.reloadTimer.Stop()
	}
	d.timerLock.Unlock()

	if d.watcher == nil {
		return
	}
	d.watcher.Close()
	select {
	case d.askDone <- true:
	case <-d.done:
		return
	}
	<-d.done
}
