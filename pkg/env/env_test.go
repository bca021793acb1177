package env

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewEnv(t *testing.T) {
	conf := NewConfig()
	conf.Info.Ref.ID = "dev1"
	e, err := conf.NewEnv()
	require.NoError(t, err)
	require.False(t, e.Enabled())

	conf.WebsocketAddr = "127.0.0.1:0"
	conf.MQTTBrokerURL = "mqtt://localhost:1883/robo/"
	conf.TCPAddr = "127.0.0.1:0"
	e, err = conf.NewEnv()
	require.NoError(t, err)
	require.True(t, e.Enabled())
	require.NotNil(t, e.Hub)
	require.NotNil(t, e.Announcer)
	require.NotNil(t, e.Server)
	require.Len(t, e.Readers, 3)
	require.Len(t, e.Writer.Writers, 3)
	require.Equal(t, "btnlink/dev1", e.Announcer.Info.Ref.Name())
}

func TestNewEnvInvalid(t *testing.T) {
	conf := NewConfig()
	conf.Info.Ref.Type = ""
	conf.Info.Ref.ID = "dev1"
	_, err := conf.NewEnv()
	require.Error(t, err)
}

func TestNewEnvBadURL(t *testing.T) {
	conf := NewConfig()
	conf.Info.Ref.ID = "dev1"
	conf.MQTTBrokerURL = "mqtt://[::1"
	_, err := conf.NewEnv()
	require.Error(t, err)
}
