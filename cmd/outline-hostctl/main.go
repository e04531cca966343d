// Package main is the entry point for the outline-hostctl CLI.
//
// outline-hostctl follows the self-installation of proxy servers on
// DigitalOcean, GCP and Hetzner Cloud, reports their management endpoint
// and certificate fingerprint, and deletes them with their ancillary
// resources.
//
// Commands: watch, describe, delete, version.
//
// For detailed usage information, run:
//
//	outline-hostctl --help
package main

import (
	"fmt"
	"os"

	"github.com/zuohuadong/outline-server/cmd/outline-hostctl/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
