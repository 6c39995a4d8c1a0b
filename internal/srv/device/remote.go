package device

import (
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rubenparnell/departureBoard/apimodel"
	"github.com/rubenparnell/departureBoard/internal/srv/config"
	"github.com/rubenparnell/departureBoard/internal/srv/event"
	"github.com/rubenparnell/departureBoard/internal/srv/mode"
	"github.com/sirupsen/logrus"
	"strings"
	"sync"
	"time"
)

const defaultConnectTimeout = 10 * time.Second

// ErrUnknownTopic is returned for messages the board does not handle
var ErrUnknownTopic = errors.New("unknown topic")

// statusPublisher is the part of mqtt.Client used to report the mode
type statusPublisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// Remote is the MQTT command channel of the board: it turns commands into
// events and publishes the active mode.
type Remote struct {
	param   config.MqttParam
	boardId string
	poster  event.Poster

	client mqtt.Client

	lock     sync.Mutex
	lastMode string
}

func NewRemote(param config.MqttParam, boardId string, poster event.Poster) *Remote {
	return &Remote{
		param:   param,
		boardId: boardId,
		poster:  poster,
	}
}

func (r *Remote) commandTopic() string {
	return "boards/" + r.boardId + "/#"
}

func (r *Remote) statusTopic() string {
	return "board/" + r.boardId + "/status"
}

// Start connects to the broker and subscribes to the board commands. It
// fails when the broker can't be reached within the connect timeout.
func (r *Remote) Start() error {
	logrus.Infof("Start remote device")

	scheme := "tcp"
	if r.param.Tls {
		scheme = "ssl"
	}
	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("%s://%s:%d", scheme, r.param.Broker, r.param.Port))
	opts.SetClientID(r.boardId)
	opts.SetUsername(r.param.Username)
	opts.SetPassword(r.param.Password)
	if r.param.Tls {
		opts.SetTLSConfig(&tls.Config{MinVersion: tls.VersionTLS12})
	}
	opts.SetAutoReconnect(true)
	opts.SetOnConnectHandler(r.onConnect)
	opts.SetConnectionLostHandler(func(client mqtt.Client, err error) {
		logrus.Warnf("Lost connection to MQTT broker: %v", err)
	})

	timeout := time.Duration(r.param.ConnectTimeout) * time.Second
	if timeout <= 0 {
		timeout = defaultConnectTimeout
	}

	r.client = mqtt.NewClient(opts)
	token := r.client.Connect()
	if !token.WaitTimeout(timeout) {
		return fmt.Errorf("MQTT connection timeout after %s", timeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("MQTT connection error: %w", err)
	}
	return nil
}

func (r *Remote) onConnect(client mqtt.Client) {
	logrus.Infof("Connected to MQTT broker %s", r.param.Broker)
	token := client.Subscribe(r.commandTopic(), 0, r.onMessage)
	if token.Wait() && token.Error() != nil {
		logrus.Warnf("Unable to subscribe to %s: %v", r.commandTopic(), token.Error())
	}

	// modes changed while disconnected were never sent
	r.publishStatus(client)
}

func (r *Remote) StopSendingEvent() {
	logrus.Infof("Stop remote device")
	if r.client != nil {
		r.client.Disconnect(250)
	}
}

func (r *Remote) onMessage(_ mqtt.Client, msg mqtt.Message) {
	logrus.Debugf("MQTT message received on topic %s", msg.Topic())
	ev, err := DecodeCommand(r.boardId, msg.Topic(), msg.Payload())
	if err != nil {
		if errors.Is(err, ErrUnknownTopic) {
			logrus.Debugf("Ignore MQTT message on %s", msg.Topic())
		} else {
			logrus.Warnf("Invalid MQTT message on %s: %v", msg.Topic(), err)
		}
		return
	}
	r.poster.Post(ev)
}

// PublishMode reports the active mode on the status topic. The mode is
// remembered and sent again on every connection to the broker.
func (r *Remote) PublishMode(name string) {
	r.lock.Lock()
	r.lastMode = name
	r.lock.Unlock()

	if r.client == nil || !r.client.IsConnectionOpen() {
		logrus.Debugf("Defer mode status %s, MQTT not connected", name)
		return
	}
	r.publishStatus(r.client)
}

func (r *Remote) publishStatus(publisher statusPublisher) {
	r.lock.Lock()
	name := r.lastMode
	r.lock.Unlock()

	if name == "" {
		return
	}
	payload, err := json.Marshal(apimodel.ModeStatus{Mode: name})
	if err != nil {
		logrus.Warnf("Unable to encode mode status: %v", err)
		return
	}
	publisher.Publish(r.statusTopic(), 0, false, payload)
}

// DecodeCommand turns a message received on boards/{id}/... into an event
func DecodeCommand(boardId string, topic string, payload []byte) (event.Event, error) {
	prefix := "boards/" + boardId + "/"
	command, found := strings.CutPrefix(topic, prefix)
	if !found {
		return event.Event{}, ErrUnknownTopic
	}

	switch command {
	case "settings":
		var update apimodel.SettingsUpdate
		if err := json.Unmarshal(payload, &update); err != nil {
			return event.Event{}, fmt.Errorf("invalid settings: %w", err)
		}
		return event.SettingsPushed(update), nil
	case "message":
		return event.NewMessage(), nil
	case "refresh":
		return event.ForceRefresh(), nil
	case "mode":
		name := strings.TrimSpace(string(payload))
		if strings.HasPrefix(name, "{") {
			var status apimodel.ModeStatus
			if err := json.Unmarshal(payload, &status); err != nil {
				return event.Event{}, fmt.Errorf("invalid mode: %w", err)
			}
			name = status.Mode
		}
		m, err := mode.Parse(name)
		if err != nil {
			return event.Event{}, err
		}
		return event.ModeRequested(m.String()), nil
	default:
		return event.Event{}, ErrUnknownTopic
	}
}
