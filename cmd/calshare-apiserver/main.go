// Package main is the entry point for the calshare API server.
package main

import (
	_ "go.uber.org/automaxprocs/maxprocs"

	"github.com/kart-io/calshare/internal/calshare"
)

func main() {
	calshare.NewApp("calshare-apiserver").Run()
}
