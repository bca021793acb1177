// Package remote adds shell commands to drive a simulated board over MQTT.
package remote

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sync"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/btnlink/pkg/cli/sh"
	"github.com/robotalks/btnlink/pkg/comm"
	"github.com/robotalks/btnlink/pkg/comm/mqtt"
	"github.com/robotalks/btnlink/pkg/env"
	"github.com/robotalks/btnlink/pkg/msgs"
)

var brokerURL = "mqtt://localhost:1883/robo/"

func init() {
	if val := os.Getenv("BTNLINK_MQTT_URL"); val != "" {
		brokerURL = val
	}
	flag.StringVar(&brokerURL, "mqtt", brokerURL, "MQTT broker URL for remote commands.")
}

// Remote is a connection to a simulated device.
type Remote struct {
	Ref    comm.DeviceRef
	Queue  *mqtt.Queue
	RW     *mqtt.ReadWriter
	cancel func()
}

var (
	current *Remote
	lock    sync.Mutex
)

// Connect connects to a device over MQTT and prints its events.
func Connect(id string, print func(string)) (*Remote, error) {
	q, err := mqtt.NewQueueFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	token := q.Connect()
	token.Wait()
	if err := token.Error(); err != nil {
		return nil, err
	}
	r := &Remote{Ref: comm.DeviceRef{Type: env.DeviceType, ID: id}, Queue: q}
	r.RW = mqtt.NewPacketReadWriter(q).ForRemote(r.Ref)
	var ctx context.Context
	ctx, r.cancel = context.WithCancel(context.Background())
	go r.RW.Run(ctx)
	go func() {
		for {
			pkt, err := r.RW.ReadPacket()
			if err != nil {
				return
			}
			_, msg, err := msgs.DecodeMessage(pkt)
			if err != nil {
				print(fmt.Sprintf("bad event: %v", err))
				continue
			}
			print(fmt.Sprintf("%s: %T %s", r.Ref.Name(), msg, msg.String()))
		}
	}()
	return r, nil
}

// Close disconnects.
func (r *Remote) Close() {
	r.cancel()
	r.Queue.Close()
}

// SetButton sends a ButtonSet command.
func (r *Remote) SetButton(pressed bool) error {
	pkt, err := msgs.Encode(&msgs.ButtonSet{Pressed: pressed})
	if err != nil {
		return err
	}
	return r.RW.WritePacket(pkt)
}

func setButton(pressed bool) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		lock.Lock()
		r := current
		lock.Unlock()
		if r == nil {
			c.Err(fmt.Errorf("remote not connected"))
			return
		}
		if err := r.SetButton(pressed); err != nil {
			c.Err(err)
		}
	}
}

var (
	// ConnectCmd connects a remote device.
	ConnectCmd = ishell.Cmd{
		Name:    "remote",
		Aliases: []string{"r"},
		Help:    "ID",
		Func: func(c *ishell.Context) {
			if len(c.Args) < 1 {
				c.Err(fmt.Errorf("ID required"))
				return
			}
			shell := sh.ShellFrom(c).Shell
			r, err := Connect(c.Args[0], func(line string) { shell.Println(line) })
			if err != nil {
				c.Err(err)
				return
			}
			lock.Lock()
			if current != nil {
				current.Close()
			}
			current = r
			lock.Unlock()
		},
	}

	// PressCmd presses the remote button.
	PressCmd = ishell.Cmd{
		Name:    "press",
		Aliases: []string{"p"},
		Help:    "",
		Func:    setButton(true),
	}

	// ReleaseCmd releases the remote button.
	ReleaseCmd = ishell.Cmd{
		Name:    "release",
		Aliases: []string{"u"},
		Help:    "",
		Func:    setButton(false),
	}
)

func init() {
	sh.AddCmds(
		&ConnectCmd,
		&PressCmd,
		&ReleaseCmd,
	)
}
