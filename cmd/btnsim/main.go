package main

//go-build: CGO_ENABLED=0

import (
	"flag"
	"log"

	"github.com/golang/glog"

	"github.com/robotalks/btnlink/pkg/comm"
	"github.com/robotalks/btnlink/pkg/env"
	fx "github.com/robotalks/btnlink/pkg/framework"
	"github.com/robotalks/btnlink/pkg/hal"
	"github.com/robotalks/btnlink/pkg/hal/joystick"
	"github.com/robotalks/btnlink/pkg/serial"
	"github.com/robotalks/btnlink/pkg/sketch"
)

func init() {
	env.SetupFlags()
	serial.SetupFlags()
	sketch.SetupFlags()
	joystick.SetupFlags()
}

func main() {
	flag.Parse()

	conf := sketch.NewConfig()
	port, err := serial.NewConfig().Open()
	if err != nil {
		log.Fatalln(err)
	}
	defer port.Close()

	button := hal.NewVirtualPin("button")
	led := hal.NewVirtualPin("led").OnChange(func(name string, level bool) {
		glog.Infof("%s: %v", name, level)
	})

	reader := serial.NewReader(port, 0)
	s := sketch.New(conf, reader, serial.NewLineWriter(port), button, led)

	e := env.NewConfig()
	e.Info.Meta.Variant = conf.Variant.String()
	ev := e.MustNewEnv()

	loop := fx.NewLoop()
	loop.Interval = conf.PollInterval
	loop.Add(s)
	if js := joystick.NewConfig(); js.Enabled() {
		loop.AddRunnable(js.NewButton(button))
	}
	if ev.Enabled() {
		bridge := comm.NewBridge(ev.Writer, ev.Readers...).WithButton(button)
		s.Observe(bridge)
		loop.Add(ev, bridge)
	}
	glog.Infof("sketch %s running on %s", conf.Variant, ev.Config.Info.Ref.Name())
	loop.RunOrFail()
}
