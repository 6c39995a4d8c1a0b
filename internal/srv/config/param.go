package config

import (
	_ "embed"
	"time"
)

//go:embed param_default.yaml
var ParamDefaultFile []byte

type ServerParam struct {
	BoardId  string        `yaml:"board_id"`
	Timezone string        `yaml:"timezone"`
	Display  DisplayParam  `yaml:"display"`
	Gpio     GpioParam     `yaml:"gpio"`
	Mqtt     MqttParam     `yaml:"mqtt"`
	Api      ApiParam      `yaml:"api"`
	Upstream UpstreamParam `yaml:"upstream"`
	Network  NetworkParam  `yaml:"network"`
}

type DisplayParam struct {
	// Driver is one of "ssd1306", "terminal" or "none"
	Driver     string `yaml:"driver"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	I2cBus     string `yaml:"i2c_bus"`
	Brightness int    `yaml:"brightness"`
}

type GpioParam struct {
	ButtonPin      string `yaml:"button_pin"`
	LedPin         string `yaml:"led_pin"`
	DebounceMillis int64  `yaml:"debounce_ms"`
}

func (g GpioParam) Debounce() time.Duration {
	return time.Duration(g.DebounceMillis) * time.Millisecond
}

type MqttParam struct {
	Broker         string `yaml:"broker"`
	Port           int64  `yaml:"port"`
	Tls            bool   `yaml:"tls"`
	Username       string `yaml:"username"`
	Password       string `yaml:"password"`
	ConnectTimeout int64  `yaml:"connect_timeout"`
}

type ApiParam struct {
	Enabled bool   `yaml:"enabled"`
	Port    int64  `yaml:"port"`
	Ssl     bool   `yaml:"ssl"`
	ApiKey  string `yaml:"api_key"`
}

type UpstreamParam struct {
	MetroUrl    string `yaml:"metro_url"`
	WeatherUrl  string `yaml:"weather_url"`
	MessagesUrl string `yaml:"messages_url"`
	FilmsUrl    string `yaml:"films_url"`
	LinkUrl     string `yaml:"link_url"`
	Timeout     int64  `yaml:"timeout"`
}

func (u UpstreamParam) RequestTimeout() time.Duration {
	if u.Timeout <= 0 {
		return 5 * time.Second
	}
	return time.Duration(u.Timeout) * time.Second
}

type NetworkParam struct {
	ProbeAddress string `yaml:"probe_address"`
	SetupUrl     string `yaml:"setup_url"`
}
