package main

import (
	"github.com/dexbook/dexbook/internal/config"
	"github.com/dexbook/dexbook/internal/entrypoint"
)

// Version information - set at build time via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	cfg := config.NewConfig()
	entrypoint.Run(cfg, Version)
}
