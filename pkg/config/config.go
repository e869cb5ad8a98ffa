// Package config loads blockprint settings from TOML.
//
// Settings are resolved with priority defaults < file < flags. The file is
// the one named by --config, else ./blockprint.toml, else
// $XDG_CONFIG_HOME/blockprint/config.toml. A missing file is not an error.
//
//	[render]
//	width = 800
//	height = 600
//	palette = "paper"
//
//	[server]
//	addr = ":8080"
//	store = "redis"
//	key_prefix = "staging:"
//
//	[redis]
//	addr = "localhost:6379"
package config

import (
	"time"

	"github.com/blockprint/blockprint/pkg/build"
)

// Config holds every configurable setting.
type Config struct {
	Render  RenderConfig  `toml:"render"`
	Server  ServerConfig  `toml:"server"`
	Redis   RedisConfig   `toml:"redis"`
	Mongo   MongoConfig   `toml:"mongo"`
	Backend BackendConfig `toml:"backend"`
}

// RenderConfig holds defaults for rendering commands.
type RenderConfig struct {
	Width   float64  `toml:"width"`
	Height  float64  `toml:"height"`
	Density float64  `toml:"density"`
	Palette string   `toml:"palette"`
	Formats []string `toml:"formats"`
	Grid    bool     `toml:"grid"`
	Label   bool     `toml:"label"`
}

// Store backends.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
	StoreMongo  = "mongo"
)

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr            string        `toml:"addr"`
	Store           string        `toml:"store"`
	StoreDir        string        `toml:"store_dir"`
	KeyPrefix       string        `toml:"key_prefix"`
	TTL             time.Duration `toml:"ttl"`
	CORSOrigins     []string      `toml:"cors_origins"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout"`
}

// RedisConfig holds the Redis store connection.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// MongoConfig holds the MongoDB store connection.
type MongoConfig struct {
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// BackendConfig holds the blueprint generation and build backend.
type BackendConfig struct {
	URL     string        `toml:"url"`
	Timeout time.Duration `toml:"timeout"`
	Style   string        `toml:"style"`
	Origin  build.Origin  `toml:"origin"`
}

// Default returns a Config with the built-in defaults.
func Default() *Config {
	return &Config{
		Render: RenderConfig{
			Width:   800,
			Height:  600,
			Density: 1,
			Palette: "night",
			Formats: []string{"svg"},
			Grid:    true,
			Label:   true,
		},
		Server: ServerConfig{
			Addr:            ":8080",
			Store:           StoreMemory,
			TTL:             7 * 24 * time.Hour,
			CORSOrigins:     []string{"http://localhost:5173"},
			ShutdownTimeout: 10 * time.Second,
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		Mongo: MongoConfig{
			URI:        "mongodb://localhost:27017",
			Database:   "blockprint",
			Collection: "blueprints",
		},
		Backend: BackendConfig{
			URL:     "http://localhost:8000",
			Timeout: 2 * time.Minute,
			Style:   "ghibli",
			Origin:  build.DefaultOrigin,
		},
	}
}
