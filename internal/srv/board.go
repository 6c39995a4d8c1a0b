package srv

import (
	"context"
	"github.com/rubenparnell/departureBoard/internal/srv/config"
	"github.com/rubenparnell/departureBoard/internal/srv/device"
	"github.com/rubenparnell/departureBoard/internal/srv/event"
	"github.com/rubenparnell/departureBoard/internal/srv/mode"
	"github.com/rubenparnell/departureBoard/internal/srv/screen"
	"github.com/rubenparnell/departureBoard/internal/srv/upstream"
	"github.com/rubenparnell/departureBoard/internal/version"
	"github.com/sirupsen/logrus"
	"strings"
	"time"
)

const (
	introDelay        = 2 * time.Second
	networkRetryDelay = 10 * time.Second
)

// Board wires the devices, the data sources and the scheduler together
type Board struct {
	*config.ServerConfig

	bus    *event.Bus
	modes  *mode.Controller
	panel  screen.Panel
	frames *Frames

	displayDevice *device.Display
	ledDevice     *device.Led
	buttonsDevice *device.Buttons
	remoteDevice  *device.Remote
	apiDevice     *device.Api
	watcherDevice *device.SettingsWatcher
	networkDevice *device.Network

	scheduler *Scheduler
	running   bool
}

func NewBoard(configDir string, debugMode bool, simulationMode bool) *Board {
	logrus.Debugf("Creation of departure board %s ...", version.AppVersion.String())

	board := &Board{
		ServerConfig: config.NewServerConfig(configDir, debugMode, simulationMode),
		bus:          event.NewBus(),
	}
	board.Settings.SetPoster(board.bus)

	initialMode, err := mode.Parse(board.ServerState.Mode())
	if err != nil {
		logrus.Warnf("Unknown saved mode, starting with %s: %v", mode.MESSAGES_MODE, err)
		initialMode = mode.MESSAGES_MODE
	}
	board.modes = mode.NewController(initialMode, board.bus)

	board.panel = screen.Panel{Width: board.Display.Width, Height: board.Display.Height}
	board.frames = NewFrames(board.panel, board.Settings, board.newSources(), LinkUrl(board.Upstream.LinkUrl, board.BoardId), board.Location(), nil)

	board.displayDevice = device.NewDisplay(board.Display, board.SimulationMode)
	board.ledDevice = device.NewLed(board.Gpio.LedPin, board.SimulationMode)
	board.buttonsDevice = device.NewButtons(board.Gpio.ButtonPin, board.Gpio.Debounce(), board.SimulationMode, board.bus)
	board.remoteDevice = newRemote(board.Mqtt, board.BoardId, board.bus)
	if board.Api.Enabled {
		board.apiDevice = device.NewApi(board.Api, board.ConfigDir, board.Settings, board.modes, board.bus)
	}
	board.watcherDevice = device.NewSettingsWatcher(board.Settings)
	board.networkDevice = device.NewNetwork(board.Network.ProbeAddress)

	board.scheduler = NewScheduler(board.bus, board.modes, board.Settings, board.frames, board.displayDevice, board.ledDevice, board)

	logrus.Debugln("Board created")

	return board
}

func (b *Board) newSources() Sources {
	client := upstream.NewClient(b.Upstream.RequestTimeout())
	metro := upstream.NewMetro(client, b.Upstream.MetroUrl)
	return Sources{
		Metro:    metro,
		Stations: upstream.NewStationDirectory(metro, nil),
		Weather:  upstream.NewOpenMeteo(client, b.Upstream.WeatherUrl, b.Location()),
		Icons:    upstream.NewIcons(client),
		Cinema:   upstream.NewCinema(client, b.Upstream.FilmsUrl),
		Messages: upstream.NewMessageFeed(client, b.Upstream.MessagesUrl, b.BoardId),
	}
}

// newRemote returns the command channel, or nil when no broker is set: an
// empty broker is the opt-out for boards driven by the local API only.
func newRemote(param config.MqttParam, boardId string, poster event.Poster) *device.Remote {
	if strings.TrimSpace(param.Broker) == "" {
		return nil
	}
	return device.NewRemote(param, boardId, poster)
}

// ModeChanged remembers the mode for the next start and reports it
func (b *Board) ModeChanged(m mode.Mode) {
	b.ServerState.SetMode(m.String())
	if b.remoteDevice != nil {
		b.remoteDevice.PublishMode(m.String())
	}
}

// Start shows the intro, waits for the network and starts every device. It
// returns early with ctx's error when ctx ends while the board is offline.
func (b *Board) Start(ctx context.Context) error {
	logrus.Printf("Starting departure board %s (board id %s) ...", version.AppVersion.String(), b.BoardId)

	// Start display device
	b.displayDevice.Start()

	// Display startup screen
	b.show(b.panel.Splash("Departure Board"))
	time.Sleep(introDelay)

	if err := b.waitForNetwork(ctx); err != nil {
		return err
	}

	// Start remote device, the board does not run without its command channel
	if b.remoteDevice != nil {
		if err := b.remoteDevice.Start(); err != nil {
			logrus.Fatalf("Unable to start remote device: %v", err)
		}
	} else {
		logrus.Warnf("No MQTT broker configured, remote commands disabled")
	}

	// Start scheduler
	b.scheduler.Start()

	// Start buttons device
	b.buttonsDevice.Start()

	// Start api device
	if b.apiDevice != nil {
		b.apiDevice.Start()
	}

	// Start settings watcher
	if err := b.watcherDevice.Start(); err != nil {
		logrus.Warnf("Unable to watch settings file: %v", err)
		b.watcherDevice = nil
	}

	b.running = true
	return nil
}

func (b *Board) waitForNetwork(ctx context.Context) error {
	for !b.networkDevice.Online(ctx) {
		logrus.Warnf("No network detected, showing setup screen for %s", b.Network.SetupUrl)
		b.show(b.panel.SetupQR(b.Network.SetupUrl))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(networkRetryDelay):
		}
	}
	logrus.Infof("Network connected")
	return nil
}

func (b *Board) show(result screen.Result) {
	b.displayDevice.SetBrightness(result.Brightness)
	b.displayDevice.ShowImage(result.Frame)
}

func (b *Board) Stop() {
	logrus.Printf("Stopping departure board ...")

	if b.running {
		// Stop api
		if b.apiDevice != nil {
			b.apiDevice.StopSendingEvent()
		}

		// Stop buttons device
		b.buttonsDevice.StopSendingEvent()

		// Stop settings watcher
		if b.watcherDevice != nil {
			b.watcherDevice.StopSendingEvent()
		}

		// Stop remote device
		if b.remoteDevice != nil {
			b.remoteDevice.StopSendingEvent()
		}

		// Stop scheduler
		b.scheduler.Stop()
		b.running = false
	}

	// Display end image
	b.show(b.panel.Splash("See you!"))
	b.ledDevice.Off()

	// Stop display device
	b.displayDevice.Stop()

	// Flush state backup
	b.ServerState.FlushSave()

	logrus.Printf("Board stopped")
}
