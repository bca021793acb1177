// Package env sets up the device identity and the event transports.
package env

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/denisbrodbeck/machineid"

	"github.com/robotalks/btnlink/pkg/comm"
	"github.com/robotalks/btnlink/pkg/comm/mqtt"
	"github.com/robotalks/btnlink/pkg/comm/stream"
	"github.com/robotalks/btnlink/pkg/comm/websocket"
	fx "github.com/robotalks/btnlink/pkg/framework"
)

// DeviceType is the type name devices announce.
const DeviceType = "btnlink"

// MachineID retrieves the unique ID identifying the machine, protected
// by the application name so the raw ID is not exposed on the broker.
func MachineID() string {
	id, err := machineid.ProtectedID(DeviceType)
	if err != nil {
		panic(err)
	}
	return id
}

// Config provides common options for the event transports.
type Config struct {
	Info comm.DeviceInfo

	// MQTTBrokerURL specifies the MQTT broker to use, empty to disable.
	// e.g. mqtt://host:port/topic-prefix
	MQTTBrokerURL string
	// WebsocketAddr is the listen address for websocket clients, empty to disable.
	WebsocketAddr string
	// TCPAddr is the listen address for length-prefixed TCP clients, empty to disable.
	TCPAddr string
}

var defaultConfig = Config{
	Info: comm.DeviceInfo{
		Ref:  comm.DeviceRef{Type: DeviceType},
		Meta: comm.DeviceMeta{Description: "Button and numeric token link"},
	},
}

func init() {
	if val := os.Getenv("BTNLINK_MQTT_URL"); val != "" {
		defaultConfig.MQTTBrokerURL = val
	}
	if val := os.Getenv("BTNLINK_WS_ADDR"); val != "" {
		defaultConfig.WebsocketAddr = val
	}
	if val := os.Getenv("BTNLINK_TCP_ADDR"); val != "" {
		defaultConfig.TCPAddr = val
	}
	if val := os.Getenv("BTNLINK_ID"); val != "" {
		defaultConfig.Info.Ref.ID = val
	}
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Info.Ref.ID, "id", defaultConfig.Info.Ref.ID, "Device ID, defaults to machine ID.")
	flag.StringVar(&defaultConfig.MQTTBrokerURL, "mqtt", defaultConfig.MQTTBrokerURL, "MQTT broker URL.")
	flag.StringVar(&defaultConfig.WebsocketAddr, "ws", defaultConfig.WebsocketAddr, "Websocket listen address.")
	flag.StringVar(&defaultConfig.TCPAddr, "tcp", defaultConfig.TCPAddr, "TCP packet stream listen address.")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// Env is the set of transports events are published to.
type Env struct {
	Config    *Config
	Writer    *comm.MultiWriter
	Announcer *mqtt.Announcer
	Hub       *websocket.Hub
	Server    *stream.Server
	// Readers deliver remote commands.
	Readers []comm.PacketReader
}

// NewEnv creates Env from config.
func (c *Config) NewEnv() (*Env, error) {
	if c.Info.Ref.ID == "" {
		c.Info.Ref.ID = MachineID()
	}
	if !c.Info.Ref.IsValid() {
		return nil, fmt.Errorf("device type and id must be specified")
	}
	e := &Env{Config: c, Writer: &comm.MultiWriter{}}
	if c.MQTTBrokerURL != "" {
		a, err := mqtt.NewAnnouncer(c.MQTTBrokerURL, c.Info)
		if err != nil {
			return nil, fmt.Errorf("create MQTT announcer error: %v", err)
		}
		rw := a.ReadWriter()
		e.Announcer = a
		e.Writer.Add(rw)
		e.Readers = append(e.Readers, rw)
	}
	if c.WebsocketAddr != "" {
		e.Hub = websocket.NewHub(c.WebsocketAddr)
		e.Writer.Add(e.Hub)
		e.Readers = append(e.Readers, e.Hub)
	}
	if c.TCPAddr != "" {
		e.Server = stream.NewServer(c.TCPAddr)
		e.Writer.Add(e.Server)
		e.Readers = append(e.Readers, e.Server)
	}
	return e, nil
}

// MustNewEnv creates Env and fails on error.
func (c *Config) MustNewEnv() *Env {
	e, err := c.NewEnv()
	if err != nil {
		log.Fatalln(err)
	}
	return e
}

// Enabled indicates at least one transport is configured.
func (e *Env) Enabled() bool {
	return len(e.Writer.Writers) > 0
}

// AddToLoop implements LoopAdder.
func (e *Env) AddToLoop(l *fx.Loop) {
	if e.Announcer != nil {
		l.AddRunnable(e.Announcer)
	}
	e.Writer.AddToLoop(l)
}
