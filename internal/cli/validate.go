package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blockprint/blockprint/pkg/blueprint"
	"github.com/blockprint/blockprint/pkg/render/preview"
)

// checkDrawable validates bp unless it is empty. An empty blueprint draws
// a cleared surface and nothing else.
func checkDrawable(bp *blueprint.Blueprint) error {
	if len(bp.Segments()) == 0 {
		return nil
	}
	return bp.Validate()
}

// validateCommand creates the validate command.
func (c *CLI) validateCommand() *cobra.Command {
	var normalize bool

	cmd := &cobra.Command{
		Use:   "validate [file...]",
		Short: "Check blueprints and print their dimensions",
		Long: `Validate decodes each blueprint, checks its structure and prints the
segment sizes and an estimate of the blocks needed to build it.

With --normalize the file is treated as loose generator output and the
repairs that would be made are listed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = []string{stdinArg}
			}
			failed := 0
			for _, input := range args {
				if err := c.runValidate(cmd, input, normalize); err != nil {
					printError("%s: %v", displayName(input), err)
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d blueprints invalid", failed, len(args))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&normalize, "normalize", false, "repair loose generator output and list the repairs")
	return cmd
}

func (c *CLI) runValidate(cmd *cobra.Command, input string, normalize bool) error {
	bp, warnings, err := loadBlueprint(cmd.InOrStdin(), input, normalize)
	if err != nil {
		return err
	}
	if err := bp.Validate(); err != nil {
		return err
	}

	segs := bp.Segments()
	printSuccess("%s", displayName(input))
	for i, s := range segs {
		roof := "cap"
		if s.Roof != nil {
			roof = fmt.Sprintf("%s %d", s.Roof.Shape, s.Roof.HeightBlocks)
			if s.Roof.Overhang > 0 {
				roof += fmt.Sprintf(" +%d", s.Roof.Overhang)
			}
		}
		printKeyValue(fmt.Sprintf("segment %d", i+1),
			fmt.Sprintf("%dx%dx%d  roof %s  height %d  openings %d",
				s.WidthBlocks, s.WallHeightBlocks, s.DepthBlocks, roof, s.TotalHeight(), len(s.Openings)))
	}
	printKeyValue("label", preview.Label(bp.TotalWidth()))
	printKeyValue("theme", bp.Style.Theme)
	printStats(len(segs), bp.TotalWidth(), bp.BlockCount())
	for _, w := range warnings {
		printWarning("%s", w)
	}
	c.Logger.Debug("validated blueprint", "input", displayName(input), "segments", len(segs), "warnings", len(warnings))
	return nil
}
