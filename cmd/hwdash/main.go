package main

import (
	"github.com/rileyhilliard/hwdash/internal/cli"
)

// Set at release time:
//
//	go build -ldflags "-X main.version=0.3.0 -X main.commit=$(git rev-parse --short HEAD) -X main.date=$(date -u +%FT%TZ)" ./cmd/hwdash
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cli.SetVersionInfo(version, commit, date)
	cli.Execute()
}
