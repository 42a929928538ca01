package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/skydrive/internal/flagx"
)

// parseFlags populates selected client Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   server endpoint base URL (e.g., "http://127.0.0.1:8080")
//	-i int      sync interval, seconds
//	-m string   local mirror directory
//	-f string   path of the local SQLite database
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-i", "-m", "-f"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.ServerEndpointAddr, "a", config.ServerEndpointAddr, "server endpoint base URL")

	syncInterval := fs.Int("i", int(config.SyncInterval.Seconds()), "sync interval (in seconds)")

	fs.StringVar(&config.MirrorDir, "m", config.MirrorDir, "local mirror directory")
	fs.StringVar(&config.LocalDBPath, "f", config.LocalDBPath, "local database path")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.SyncInterval = time.Duration(*syncInterval) * time.Second
}
