/*
Package config loads the server configuration.

PURPOSE:
  Reads an optional TOML file and applies defaults, so deployments carry a
  checked-in config file while development runs on defaults alone.
  Command-line flags in cmd/server override individual fields after Load.

FILE FORMAT (config.toml):
  [server]
  port = 8080
  cors_origins = ["http://localhost:5173"]

  [storage]
  db_path = "./data/royalty.db"

  [branding]
  logo_path = "./assets/logo.png"
*/
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config is the full server configuration.
type Config struct {
	Server   Server   `toml:"server"`
	Storage  Storage  `toml:"storage"`
	Branding Branding `toml:"branding"`
}

type Server struct {
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
}

type Storage struct {
	// DBPath is the SQLite database path; ":memory:" for an in-memory
	// database.
	DBPath string `toml:"db_path"`
}

type Branding struct {
	// LogoPath points at the PNG embedded in statement headers. Empty
	// renders statements without a logo.
	LogoPath string `toml:"logo_path"`
}

// Default returns the development configuration.
func Default() Config {
	return Config{
		Server: Server{
			Port:        8080,
			CORSOrigins: []string{"*"},
		},
		Storage: Storage{
			DBPath: "royalty.db",
		},
	}
}

// Load reads the TOML file at path over the defaults. An empty path returns
// the defaults; a missing file at an explicit path is an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
