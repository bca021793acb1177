// +build tinygo

// Command firmware is the board build of the sketch:
//
//	tinygo flash -target arduino ./cmd/firmware
package main

import (
	"machine"
	"time"

	"github.com/robotalks/btnlink/pkg/button"
	"github.com/robotalks/btnlink/pkg/hal"
	"github.com/robotalks/btnlink/pkg/token"
)

// variant is selected at link time: -ldflags "-X main.variant=mirror"
var variant = "edge"

type uartSink struct {
	uart *machine.UART
}

func (s uartSink) WriteLine(line string) error {
	s.uart.Write([]byte(line))
	s.uart.WriteByte('\n')
	return nil
}

func main() {
	uart := machine.DefaultUART
	uart.Configure(machine.UARTConfig{BaudRate: 115200})
	sink := uartSink{uart: uart}

	v, _ := token.ParseVariant(variant)
	asm := token.New(v)
	in := hal.NewInput(machine.Pin(hal.ButtonPin))
	out := hal.NewOutput(machine.Pin(hal.LEDPin))
	var monitor button.Monitor = button.NewMirror(in, out)
	if v == token.VariantEdge {
		monitor = button.NewEdgeMonitor(in, out)
	}

	for {
		if uart.Buffered() > 0 {
			if b, err := uart.ReadByte(); err == nil {
				if r := asm.Feed(b); r.Emitted {
					sink.WriteLine(r.Token)
				}
			}
		}
		if ev := monitor.Poll(time.Now()); ev.Message != "" {
			sink.WriteLine(ev.Message)
		}
	}
}
