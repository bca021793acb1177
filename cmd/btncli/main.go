package main

import (
	"github.com/robotalks/btnlink/pkg/cli/sh"
	"github.com/robotalks/btnlink/pkg/serial"

	_ "github.com/robotalks/btnlink/pkg/cli/cmds/remote"
)

//go-build: CGO_ENABLED=0

func init() {
	serial.SetupFlags()
}

func main() {
	sh.Main()
}
