package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/skydrive/internal/flagx"
	"github.com/dmitrijs2005/skydrive/internal/timex"
)

// JsonConfig is an intermediate DTO used only for reading JSON configuration
// files. It uses timex.Duration for interval fields, which allows parsing
// both string values such as "30s" and integer nanoseconds. After
// unmarshalling, its fields are copied into the runtime Config struct.
type JsonConfig struct {
	ServerEndpointAddr string         `json:"server_endpoint_addr"`
	SyncInterval       timex.Duration `json:"sync_interval"`
	MirrorDir          string         `json:"mirror_dir"`
	LocalDBPath        string         `json:"local_db_path"`
}

// parseJson loads configuration values from the JSON file named by the
// -c/-config flags into the provided Config. If neither flag is set, no file
// is loaded. An unreadable file or invalid JSON panics: a half-applied
// config is worse than refusing to start.
func parseJson(config *Config) {

	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	config.ServerEndpointAddr = c.ServerEndpointAddr
	config.SyncInterval = time.Duration(c.SyncInterval.Duration)
	config.MirrorDir = c.MirrorDir
	config.LocalDBPath = c.LocalDBPath
}
