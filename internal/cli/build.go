package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/blockprint/blockprint/pkg/build"
)

// buildCommand creates the command that streams a blueprint to the build
// backend and follows its progress.
func (c *CLI) buildCommand() *cobra.Command {
	var (
		backendURL string
		x, y, z    int
	)

	cmd := &cobra.Command{
		Use:   "build <file>",
		Short: "Build a blueprint in a Minecraft world",
		Long: `Build sends a blueprint to the backend, which places it in the connected
Minecraft world. Progress is shown until the build completes or fails.
Interrupting the command cancels the build.`,
		Example: `  blockprint build cottage.json
  blockprint build cottage.json --x 250 --y 64 --z -30`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bp, _, err := loadBlueprint(cmd.InOrStdin(), args[0], false)
			if err != nil {
				return err
			}
			client, err := c.newBackend(backendURL)
			if err != nil {
				return err
			}

			req := build.NewRequest(bp)
			req.Origin = c.cfg.Backend.Origin
			if cmd.Flags().Changed("x") {
				req.Origin.X = x
			}
			if cmd.Flags().Changed("y") {
				req.Origin.Y = y
			}
			if cmd.Flags().Changed("z") {
				req.Origin.Z = z
			}

			printInfo("Building %s at (%d, %d, %d), ~%d blocks",
				displayName(args[0]), req.Origin.X, req.Origin.Y, req.Origin.Z, bp.BlockCount())
			return c.runBuild(cmd.Context(), os.Stderr, req, client.Track)
		},
	}

	cmd.Flags().StringVar(&backendURL, "backend", "", "backend URL (default from config)")
	cmd.Flags().IntVar(&x, "x", build.DefaultOrigin.X, "world x of the front-left corner")
	cmd.Flags().IntVar(&y, "y", build.DefaultOrigin.Y, "world y of the ground level")
	cmd.Flags().IntVar(&z, "z", build.DefaultOrigin.Z, "world z of the front-left corner")
	return cmd
}

// trackFunc runs a build and folds its progress into a tracker.
type trackFunc func(ctx context.Context, req build.Request, t *build.Tracker) error

// runBuild follows a build on a spinner showing the current action, then
// prints the backend's log.
func (c *CLI) runBuild(ctx context.Context, w io.Writer, req build.Request, track trackFunc) error {
	spinner := newSpinnerTo(ctx, w, "Connecting...")
	tracker := build.NewTracker(
		build.WithLogger(c.Logger),
		build.WithOnChange(func(s build.Status) { spinner.SetMessage(statusLine(s)) }),
	)

	prog := newProgress(c.Logger)
	spinner.Start()
	err := track(ctx, req, tracker)
	spinner.Stop()

	final := tracker.Snapshot()
	for _, line := range final.Logs {
		printDetail("%s", line)
	}

	switch {
	case errors.Is(err, context.Canceled):
		printWarning("Build cancelled")
		return err
	case err != nil:
		return err
	case final.Status == build.StateError:
		printError("Build failed: %s", final.Error)
		return errors.New(final.Error)
	case final.Status == build.StateCompleted:
		printSuccess("Built %d blocks (%s)", final.BlocksPlaced, prog.elapsed())
		return nil
	default:
		return fmt.Errorf("build stream ended while %s", final.Status)
	}
}

// statusLine formats a snapshot for the spinner.
func statusLine(s build.Status) string {
	if s.Status != build.StateBuilding {
		return s.CurrentAction
	}
	msg := progressBar(s.Progress, 20) + " " + s.CurrentAction
	if s.TotalBlocks > 0 {
		msg += fmt.Sprintf(" (%d/%d)", s.BlocksPlaced, s.TotalBlocks)
	}
	return msg
}
