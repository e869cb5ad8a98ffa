package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/blockprint/blockprint/pkg/blueprint"
	"github.com/blockprint/blockprint/pkg/integrations/backend"
)

// generateCommand creates the command that turns a reference image into a
// blueprint.
func (c *CLI) generateCommand() *cobra.Command {
	var (
		style      string
		backendURL string
		output     string
		rawOutput  string
	)

	cmd := &cobra.Command{
		Use:   "generate <image>",
		Short: "Generate a blueprint from a reference image",
		Long: `Generate uploads an image to the blueprint backend, which analyzes it and
answers a blueprint. The result is normalized and written as JSON.

Styles: ` + strings.Join(backend.Styles, ", ") + `.`,
		Example: `  blockprint generate castle.png --style medieval
  blockprint generate house.jpg -o house.json --raw house.raw.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if style == "" {
				style = c.cfg.Backend.Style
			}
			if err := backend.ValidateStyle(style); err != nil {
				return err
			}
			client, err := c.newBackend(backendURL)
			if err != nil {
				return err
			}

			image := args[0]
			f, err := os.Open(image)
			if err != nil {
				return err
			}
			defer f.Close()

			prog := newProgress(c.Logger)
			spinner := newSpinner(cmd.Context(), "Analyzing "+filepath.Base(image)+"...")
			spinner.Start()
			res, err := client.GenerateBlueprint(cmd.Context(), f, filepath.Base(image), style)
			if err != nil {
				spinner.StopWithError("Generation failed")
				return err
			}
			spinner.Stop()

			if output == "" {
				output = strings.TrimSuffix(image, filepath.Ext(image)) + ".json"
			}
			var buf bytes.Buffer
			if err := blueprint.WriteJSON(&buf, res.Blueprint); err != nil {
				return err
			}
			if err := writeOutput(output, buf.Bytes()); err != nil {
				return err
			}
			if rawOutput != "" && len(res.RawAIJSON) > 0 {
				if err := writeOutput(rawOutput, res.RawAIJSON); err != nil {
					return err
				}
			}
			prog.done("generated blueprint", "style", style, "path", output)

			printSuccess("Generated blueprint (%s)", prog.elapsed())
			printFile(output)
			printStats(len(res.Blueprint.Segments()), res.Blueprint.TotalWidth(), res.Blueprint.BlockCount())
			for _, w := range res.Warnings {
				printWarning("%s", w)
			}
			printNextStep("Preview it", "blockprint preview "+output)
			return nil
		},
	}

	cmd.Flags().StringVar(&style, "style", "", "art style: "+strings.Join(backend.Styles, ", ")+" (default from config)")
	cmd.Flags().StringVar(&backendURL, "backend", "", "backend URL (default from config)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "blueprint output path (default <image>.json)")
	cmd.Flags().StringVar(&rawOutput, "raw", "", "also write the generator's raw output to this path")
	return cmd
}
