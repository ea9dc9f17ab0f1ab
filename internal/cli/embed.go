package cli

import (
	"github.com/spf13/cobra"

	"github.com/anime-shed/lineart-prep/internal/pipeline"
)

func embedCmd(root *rootOptions) *cobra.Command {
	var (
		backgrounds []string
		left        int
		top         int
		maxWidth    int
		maxHeight   int
		subdir      string
		outDir      string
		display     int
		debugDir    string
	)

	defaults := pipeline.DefaultEmbedOptions()

	c := &cobra.Command{
		Use:   "embed --background BG [--background BG...] [flags] IMAGE...",
		Short: "Cut line art out of background photos",
		Long: "Every IMAGE is composited onto every background. Dark strokes become " +
			"transparent cut-outs in the photo. Results are written as " +
			"<out-dir>/output/<subdir>/<background>_<image>.png.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := defaults.WithPlacement(left, top).WithMaxSize(maxWidth, maxHeight)
			opts.Subdir = subdir
			opts.DisplayLevel = display

			ctr, err := root.newContainer(cmd, stageDumps(display, debugDir)...)
			if err != nil {
				return err
			}
			defer ctr.Close()

			results := ctr.Service().EmbedGrid(cmd.Context(), args, backgrounds, outDir, opts)
			return printResults(cmd.OutOrStdout(), results)
		},
	}

	f := c.Flags()
	f.StringArrayVarP(&backgrounds, "background", "b", nil, "Background photo (repeatable)")
	f.IntVar(&left, "left", defaults.Left, "Left edge of the line art on the background")
	f.IntVar(&top, "top", defaults.Top, "Top edge of the line art on the background")
	f.IntVar(&maxWidth, "max-width", defaults.MaxWidth, "Reference width for landscape line art")
	f.IntVar(&maxHeight, "max-height", defaults.MaxHeight, "Reference height for portrait line art")
	f.StringVar(&subdir, "subdir", "", "Extra directory under output/")
	f.StringVar(&outDir, "out-dir", "", "Output root (default: the line art's directory)")
	f.IntVar(&display, "display", 0, "Stage display level; stages are written under --debug-dir")
	f.StringVar(&debugDir, "debug-dir", "stages", "Directory for stage images, one subdirectory per job")

	_ = c.MarkFlagRequired("background")
	return c
}
