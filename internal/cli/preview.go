package cli

import (
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/blockprint/blockprint/pkg/blueprint"
	"github.com/blockprint/blockprint/pkg/pipeline"
	"github.com/blockprint/blockprint/pkg/render/sink"
)

const (
	defaultPreviewCols = 80
	defaultPreviewRows = 24
)

// previewCommand creates the interactive terminal preview command.
func (c *CLI) previewCommand() *cobra.Command {
	var (
		palette   string
		noGrid    bool
		noLabel   bool
		normalize bool
		once      bool
		cols      int
		rows      int
	)

	cmd := &cobra.Command{
		Use:   "preview <file>",
		Short: "Preview a blueprint in the terminal",
		Long: `Preview draws a blueprint in the terminal and redraws it whenever the
window is resized. Press r to reload the file after editing it.

With --once a single frame of --columns x --rows cells is printed instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			load := func() (*blueprint.Blueprint, error) {
				bp, warnings, err := loadBlueprint(cmd.InOrStdin(), path, normalize)
				if err != nil {
					return nil, err
				}
				for _, w := range warnings {
					c.Logger.Debug(w, "input", path)
				}
				return bp, checkDrawable(bp)
			}

			render := c.cfg.Render
			if palette == "" {
				palette = render.Palette
			}
			cfg := previewConfig{
				title:   filepath.Base(path),
				palette: palette,
				grid:    render.Grid && !noGrid,
				label:   render.Label && !noLabel,
				cols:    cols,
				rows:    rows,
			}

			if once {
				return c.previewOnce(cmd, cfg, load)
			}

			m, err := newPreviewModel(cfg, load, c.Logger)
			if err != nil {
				return err
			}
			p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
			final, err := p.Run()
			if fm, ok := final.(previewModel); ok && fm.adapter != nil {
				fm.adapter.Detach()
			}
			return err
		},
	}

	cmd.Flags().StringVar(&palette, "palette", "", "color palette (default from config)")
	cmd.Flags().BoolVar(&noGrid, "no-grid", false, "hide the block grid")
	cmd.Flags().BoolVar(&noLabel, "no-label", false, "hide the block count label")
	cmd.Flags().BoolVar(&normalize, "normalize", false, "repair loose generator output before previewing")
	cmd.Flags().BoolVar(&once, "once", false, "print one frame and exit")
	cmd.Flags().IntVar(&cols, "columns", defaultPreviewCols, "terminal columns for --once and the first frame")
	cmd.Flags().IntVar(&rows, "rows", defaultPreviewRows, "terminal rows for --once and the first frame")
	return cmd
}

// previewOnce renders a single txt frame through the pipeline.
func (c *CLI) previewOnce(cmd *cobra.Command, cfg previewConfig, load func() (*blueprint.Blueprint, error)) error {
	bp, err := load()
	if err != nil {
		return err
	}
	w, h := sink.CellSize(cfg.cols, cfg.rows)
	opts := pipeline.Options{
		Width:     w,
		Height:    h,
		Formats:   []string{pipeline.FormatTXT},
		Palette:   cfg.palette,
		HideGrid:  !cfg.grid,
		HideLabel: !cfg.label,
		Columns:   cfg.cols,
		Rows:      cfg.rows,
		Logger:    c.Logger,
	}
	res, err := pipeline.NewRunner(c.Logger).Execute(cmd.Context(), bp, opts)
	if err != nil {
		return err
	}
	_, err = stdout.Write(res.Artifacts[pipeline.FormatTXT])
	return err
}
