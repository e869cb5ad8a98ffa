package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blockprint/blockprint/pkg/cache"
)

// cacheCommand creates the command managing the file-backed blueprint store
// used by "serve --store file".
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the on-disk blueprint store",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// storeDir returns the configured store directory, or the default one.
func (c *CLI) storeDir() (string, error) {
	if dir := c.cfg.Server.StoreDir; dir != "" {
		return dir, nil
	}
	return cache.DefaultDir()
}

func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every stored blueprint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := c.storeDir()
			if err != nil {
				return fmt.Errorf("get store dir: %w", err)
			}
			fc, err := cache.NewFileCache(dir)
			if err != nil {
				return err
			}
			n, err := fc.Clear()
			if err != nil {
				return err
			}
			c.Logger.Debug("cleared store", "dir", dir, "entries", n)

			if n == 0 {
				printInfo("Store is empty")
			} else {
				printSuccess("Removed %d entries", n)
			}
			printDetail("Directory: %s", fc.Dir())
			return nil
		},
	}
}

func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the store directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := c.storeDir()
			if err != nil {
				return fmt.Errorf("get store dir: %w", err)
			}
			fmt.Fprintln(stdout, dir)
			return nil
		},
	}
}
