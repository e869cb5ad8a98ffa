package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/blockprint/blockprint/pkg/cache"
	bperrors "github.com/blockprint/blockprint/pkg/errors"
)

// FileName is the project-local config file name.
const FileName = "blockprint.toml"

// Load reads the config file at path, or the first one found by
// [FindFile] when path is empty, on top of the defaults. It returns the
// path actually read, or "" when running on defaults alone.
func Load(path string) (*Config, string, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = FindFile()
	}
	if path == "" {
		return cfg, "", nil
	}

	undecoded, err := loadFromFile(cfg, path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return cfg, "", nil
		}
		return nil, "", fmt.Errorf("loading config from %s: %w", path, err)
	}
	if len(undecoded) > 0 {
		return nil, "", bperrors.New(bperrors.ErrCodeInvalidInput,
			"%s: unknown keys: %s", path, strings.Join(undecoded, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", fmt.Errorf("%s: %w", path, err)
	}
	return cfg, path, nil
}

// FindFile returns the first existing config file in the standard
// locations, or "".
func FindFile() string {
	candidates := []string{
		FileName,
		filepath.Join(Dir(), "config.toml"),
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// Dir returns the user config directory for blockprint.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "blockprint")
	}
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "blockprint")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "blockprint")
}

func loadFromFile(cfg *Config, path string) ([]string, error) {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, err
	}
	var undecoded []string
	for _, k := range md.Undecoded() {
		undecoded = append(undecoded, k.String())
	}
	return undecoded, nil
}

// Validate checks values that the decoder cannot.
func (c *Config) Validate() error {
	if c.Render.Width < 0 || c.Render.Height < 0 || c.Render.Density < 0 {
		return bperrors.New(bperrors.ErrCodeInvalidViewport,
			"render size must not be negative (%gx%g@%g)", c.Render.Width, c.Render.Height, c.Render.Density)
	}
	stores := []string{StoreMemory, StoreFile, StoreRedis, StoreMongo}
	if !slices.Contains(stores, c.Server.Store) {
		return bperrors.New(bperrors.ErrCodeInvalidInput,
			"server.store must be one of %s, got %q", strings.Join(stores, ", "), c.Server.Store)
	}
	if c.Backend.URL != "" {
		if err := bperrors.ValidateURL(c.Backend.URL); err != nil {
			return fmt.Errorf("backend.url: %w", err)
		}
	}
	return nil
}

// Encode renders cfg as TOML.
func (c *Config) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SaveTo writes the config to path, creating parent directories.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := c.Encode()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// OpenStore opens the cache backend selected by server.store.
func (c *Config) OpenStore(ctx context.Context) (cache.Cache, error) {
	switch c.Server.Store {
	case StoreMemory, "":
		return cache.NewMemoryCache(), nil
	case StoreFile:
		fc, err := cache.NewFileCache(c.Server.StoreDir)
		if err != nil {
			return nil, err
		}
		return fc, nil
	case StoreRedis:
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     c.Redis.Addr,
			Password: c.Redis.Password,
			DB:       c.Redis.DB,
		})
		if err != nil {
			return nil, err
		}
		return rc, nil
	case StoreMongo:
		mc, err := cache.NewMongoCache(ctx, cache.MongoConfig{
			URI:        c.Mongo.URI,
			Database:   c.Mongo.Database,
			Collection: c.Mongo.Collection,
		})
		if err != nil {
			return nil, err
		}
		return mc, nil
	default:
		return nil, bperrors.New(bperrors.ErrCodeUnsupported, "unknown store %q", c.Server.Store)
	}
}
