// Package cli implements the blockprint command-line interface.
package cli

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/blockprint/blockprint/pkg/buildinfo"
	"github.com/blockprint/blockprint/pkg/config"
	"github.com/blockprint/blockprint/pkg/integrations/backend"
	"github.com/blockprint/blockprint/pkg/pipeline"
)

const appName = "blockprint"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	cfg        *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		cfg:    config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// Config returns the settings in effect. Before a command runs these are
// the defaults.
func (c *CLI) Config() *config.Config { return c.cfg }

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Blockprint previews and builds Minecraft blueprints",
		Long: `Blockprint renders front-elevation previews of Minecraft building blueprints,
generates blueprints from reference images and streams builds to a world.`,
		Version:           buildinfo.Version,
		SilenceUsage:      true,
		PersistentPreRunE: c.loadConfig,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default ./"+config.FileName+")")

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.previewCommand())
	root.AddCommand(c.validateCommand())
	root.AddCommand(c.generateCommand())
	root.AddCommand(c.buildCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

func (c *CLI) loadConfig(cmd *cobra.Command, args []string) error {
	cfg, path, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	if path != "" {
		c.Logger.Debug("loaded config", "path", path)
	}
	c.cfg = cfg
	return nil
}

// renderDefaults returns pipeline options seeded from the [render] config
// section.
func (c *CLI) renderDefaults() pipeline.Options {
	r := c.cfg.Render
	return pipeline.Options{
		Width:     r.Width,
		Height:    r.Height,
		Density:   r.Density,
		Formats:   append([]string(nil), r.Formats...),
		Palette:   r.Palette,
		HideGrid:  !r.Grid,
		HideLabel: !r.Label,
		Logger:    c.Logger,
	}
}

// newBackend creates a backend client for url, or for the configured
// backend when url is empty.
func (c *CLI) newBackend(url string) (*backend.Client, error) {
	if url == "" {
		url = c.cfg.Backend.URL
	}
	return backend.NewClient(url,
		backend.WithTimeout(c.cfg.Backend.Timeout),
		backend.WithLogger(c.Logger))
}
