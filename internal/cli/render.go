package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/blockprint/blockprint/pkg/blueprint"
	bperrors "github.com/blockprint/blockprint/pkg/errors"
	"github.com/blockprint/blockprint/pkg/pipeline"
)

// stdinArg names standard input as a blueprint source.
const stdinArg = "-"

// renderFlags holds flags shared by commands that draw a blueprint.
type renderFlags struct {
	formats   string
	vizType   string
	width     float64
	height    float64
	density   float64
	palette   string
	noGrid    bool
	noLabel   bool
	title     string
	columns   int
	rows      int
	detailed  bool
	normalize bool
}

func (f *renderFlags) register(cmd *cobra.Command, defaults pipeline.Options) {
	flags := cmd.Flags()
	flags.StringVarP(&f.formats, "format", "f", "", "output format(s): svg, png, pdf, json, txt (comma-separated)")
	flags.StringVarP(&f.vizType, "type", "t", pipeline.DefaultVizType, "visualization type: preview, structure")
	flags.Float64Var(&f.width, "width", defaults.Width, "viewport width in CSS pixels")
	flags.Float64Var(&f.height, "height", defaults.Height, "viewport height in CSS pixels")
	flags.Float64Var(&f.density, "density", defaults.Density, "device pixel ratio")
	flags.StringVar(&f.palette, "palette", "", "color palette (default from config)")
	flags.BoolVar(&f.noGrid, "no-grid", false, "hide the block grid")
	flags.BoolVar(&f.noLabel, "no-label", false, "hide the block count label")
	flags.StringVar(&f.title, "title", "", "document title for svg and pdf output")
	flags.IntVar(&f.columns, "columns", 0, "terminal columns for txt output")
	flags.IntVar(&f.rows, "rows", 0, "terminal rows for txt output")
	flags.BoolVar(&f.detailed, "detailed", false, "label structure diagrams with sizes")
	flags.BoolVar(&f.normalize, "normalize", false, "repair loose generator output before rendering")
}

// options layers the flags the user set over the config defaults.
func (f *renderFlags) options(cmd *cobra.Command, base pipeline.Options) (pipeline.Options, error) {
	opts := base
	changed := cmd.Flags().Changed

	if f.formats != "" {
		opts.Formats = pipeline.ParseFormats(f.formats)
	}
	opts.VizType = f.vizType
	if changed("width") {
		opts.Width = f.width
	}
	if changed("height") {
		opts.Height = f.height
	}
	if changed("density") {
		opts.Density = f.density
	}
	if f.palette != "" {
		opts.Palette = f.palette
	}
	if f.noGrid {
		opts.HideGrid = true
	}
	if f.noLabel {
		opts.HideLabel = true
	}
	opts.Title = f.title
	opts.Columns = f.columns
	opts.Rows = f.rows
	opts.Detailed = f.detailed

	if err := opts.ValidateAndSetDefaults(); err != nil {
		return opts, err
	}
	return opts, nil
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var flags renderFlags
	var output string

	cmd := &cobra.Command{
		Use:   "render [file...]",
		Short: "Render blueprints to SVG, PNG, PDF, JSON or terminal text",
		Long: `Render draws the front elevation of each blueprint file.

Files ending in .yaml or .yml are read as YAML, everything else as JSON.
Use "-" or no argument to read from standard input; with a single format
the result is then written to standard output unless --output is set.`,
		Example: `  blockprint render cottage.json
  blockprint render cottage.yaml -f svg,png --width 1200 --height 900
  blockprint render -f txt --columns 100 < cottage.json
  blockprint render cottage.json -t structure --detailed`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.options(cmd, c.renderDefaults())
			if err != nil {
				return err
			}
			if len(args) == 0 {
				args = []string{stdinArg}
			}
			if len(args) > 1 && output != "" && filepath.Ext(output) != "" {
				return bperrors.New(bperrors.ErrCodeInvalidInput, "--output must be a directory or base name when rendering several files")
			}
			for _, input := range args {
				if err := c.runRender(cmd.Context(), cmd.InOrStdin(), input, output, flags.normalize, opts); err != nil {
					return fmt.Errorf("%s: %w", displayName(input), err)
				}
			}
			return nil
		},
	}

	flags.register(cmd, c.renderDefaults())
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple formats)")
	return cmd
}

func (c *CLI) runRender(ctx context.Context, stdin io.Reader, input, output string, normalize bool, opts pipeline.Options) error {
	bp, warnings, err := loadBlueprint(stdin, input, normalize)
	if err != nil {
		return err
	}
	for _, w := range warnings {
		c.Logger.Warn(w, "input", displayName(input))
	}

	runner := pipeline.NewRunner(c.Logger)
	res, err := runner.Execute(ctx, bp, opts)
	if err != nil {
		return err
	}

	toStdout := input == stdinArg && output == "" && len(opts.Formats) == 1
	if toStdout {
		_, err := stdout.Write(res.Artifacts[opts.Formats[0]])
		return err
	}

	for _, format := range opts.Formats {
		path := outputPath(output, input, format, opts.VizType, len(opts.Formats))
		if err := writeOutput(path, res.Artifacts[format]); err != nil {
			return err
		}
		c.Logger.Info("wrote output", "path", path, "bytes", len(res.Artifacts[format]))
		printFile(path)
	}
	printStats(res.Stats.Segments, res.Stats.WidthBlocks, res.Stats.TotalBlocks)
	return nil
}

// loadBlueprint reads a blueprint from a file or, for "-", from stdin.
// With normalize set the document is repaired with [blueprint.Normalize]
// and the repairs are returned as warnings.
func loadBlueprint(stdin io.Reader, input string, normalize bool) (*blueprint.Blueprint, []string, error) {
	if !normalize {
		if input == stdinArg {
			data, err := io.ReadAll(stdin)
			if err != nil {
				return nil, nil, err
			}
			bp, err := blueprint.Parse(data)
			return bp, nil, err
		}
		bp, err := blueprint.ReadFile(input)
		return bp, nil, err
	}

	data, err := readInput(stdin, input)
	if err != nil {
		return nil, nil, err
	}
	var raw map[string]any
	if isYAML(input, data) {
		err = yaml.Unmarshal(data, &raw)
	} else {
		err = json.Unmarshal(data, &raw)
	}
	if err != nil {
		return nil, nil, bperrors.Wrap(bperrors.ErrCodeInvalidBlueprint, err, "decode blueprint")
	}
	return blueprint.Normalize(raw)
}

func readInput(stdin io.Reader, input string) ([]byte, error) {
	if input == stdinArg {
		return io.ReadAll(stdin)
	}
	data, err := os.ReadFile(input)
	if os.IsNotExist(err) {
		return nil, bperrors.Wrap(bperrors.ErrCodeFileNotFound, err, "blueprint file %s", input)
	}
	return data, err
}

func isYAML(input string, data []byte) bool {
	switch strings.ToLower(filepath.Ext(input)) {
	case ".yaml", ".yml":
		return true
	case ".json":
		return false
	}
	return !bytes.HasPrefix(bytes.TrimSpace(data), []byte("{"))
}

// outputPath derives where one format is written. A single format goes to
// output verbatim when set; otherwise the format extension is appended to
// the base path, which defaults to the input name without its extension.
// A derived path never replaces the input file.
func outputPath(output, input, format, vizType string, formats int) string {
	if output != "" && formats == 1 && filepath.Ext(output) != "" {
		return output
	}
	base := basePath(output, input)
	path := base + "." + format
	if input != stdinArg && filepath.Clean(path) == filepath.Clean(input) {
		path = base + "-" + vizType + "." + format
	}
	return path
}

// basePath strips a known extension from output, or derives a base from
// input when output is empty or a directory.
func basePath(output, input string) string {
	stem := "blueprint"
	if input != stdinArg {
		stem = strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	}
	if output == "" {
		if input == stdinArg {
			return stem
		}
		return filepath.Join(filepath.Dir(input), stem)
	}
	if info, err := os.Stat(output); err == nil && info.IsDir() {
		return filepath.Join(output, stem)
	}
	if ext := filepath.Ext(output); pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

func writeOutput(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}

func displayName(input string) string {
	if input == stdinArg {
		return "stdin"
	}
	return input
}
