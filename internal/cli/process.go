package cli

import (
	"github.com/spf13/cobra"

	"github.com/anime-shed/lineart-prep/internal/pipeline"
	"github.com/anime-shed/lineart-prep/internal/strategy"
)

func processCmd(root *rootOptions) *cobra.Command {
	var (
		mode       string
		seSize     int
		iterations int
		maxWidth   int
		maxHeight  int
		outDir     string
		display    int
		debugDir   string
	)

	defaults := pipeline.DefaultProcessOptions()

	c := &cobra.Command{
		Use:   "process [flags] IMAGE...",
		Short: "Turn line art into a printable stencil with transparent strokes",
		Long: "Each IMAGE (local path, http(s) URL or az://container/blob) is resized, " +
			"binarised with Otsu's threshold, re-weighted and written as " +
			"<out-dir>/output_<mode>/<name>.png. Without --out-dir the output lands " +
			"next to the input.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := strategy.ParseMode(mode)
			if err != nil {
				return err
			}
			opts := defaults.WithMode(m).WithMaxSize(maxWidth, maxHeight)
			opts.SESize = seSize
			opts.Iterations = iterations
			opts.DisplayLevel = display

			ctr, err := root.newContainer(cmd, stageDumps(display, debugDir)...)
			if err != nil {
				return err
			}
			defer ctr.Close()

			results := ctr.Service().ProcessBatch(cmd.Context(), args, outDir, opts)
			return printResults(cmd.OutOrStdout(), results)
		},
	}

	f := c.Flags()
	f.StringVar(&mode, "mode", string(defaults.Mode), "Line-weight mode: closing|thickening|thinning")
	f.IntVar(&seSize, "se-size", 0, "Structuring element size (0 uses the mode default)")
	f.IntVar(&iterations, "iterations", 0, "Iterations for thickening or thinning (0 uses the mode default, -1 thickens to convergence)")
	f.IntVar(&maxWidth, "max-width", defaults.MaxWidth, "Reference width for landscape input")
	f.IntVar(&maxHeight, "max-height", defaults.MaxHeight, "Reference height for portrait input")
	f.StringVar(&outDir, "out-dir", "", "Output root (default: the input's directory)")
	f.IntVar(&display, "display", 0, "Stage display level; stages are written under --debug-dir")
	f.StringVar(&debugDir, "debug-dir", "stages", "Directory for stage images, one subdirectory per job")
	return c
}
