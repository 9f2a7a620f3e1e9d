package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/zaigie/record2screenshot/internal/domain/entity"
	"github.com/zaigie/record2screenshot/internal/infra/ffmpeg"
	"github.com/zaigie/record2screenshot/internal/infra/imaging"
	"github.com/zaigie/record2screenshot/internal/usecase"
	"github.com/zaigie/record2screenshot/pkg/logger"
)

// Execute runs the one-shot command line converter: a local video in, a
// stitched screenshot out, no services involved.
func Execute() error {
	params := entity.DefaultConvertParams()
	var (
		output         string
		jpegQuality    int
		maxImageHeight int
	)

	root := &cobra.Command{
		Use:          "record2screenshot SRC",
		Short:        "Stitch a scrolling screen recording into one long screenshot",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			src := args[0]
			if output == "" {
				base := filepath.Base(src)
				output = strings.TrimSuffix(base, filepath.Ext(base)) + ".jpg"
			}

			level := "warn"
			if params.Verbose {
				level = "debug"
			}
			log, err := logger.New(level)
			if err != nil {
				return err
			}
			defer log.Sync()

			decoder := ffmpeg.NewDecoder(log)
			encoder := imaging.NewEncoder(maxImageHeight, jpegQuality, log)
			conv := usecase.NewConverter(decoder, encoder, log)

			result, err := conv.Convert(cmd.Context(), src, output, params)
			if err != nil {
				return err
			}

			for _, p := range result.OutputPaths {
				fmt.Fprintf(cmd.OutOrStdout(), "Output file: %s\n", p)
			}
			return nil
		},
	}

	f := root.Flags()
	f.Float64Var(&params.CropTop, "crop-top", params.CropTop, "top crop height ratio")
	f.Float64Var(&params.CropBottom, "crop-bottom", params.CropBottom, "bottom crop height ratio")
	f.Float64Var(&params.ExpectOffset, "expect-offset", params.ExpectOffset, "expected offset ratio")
	f.Float64Var(&params.MinOverlap, "min-overlap", params.MinOverlap, "minimum overlap ratio")
	f.Float64Var(&params.ApproxDiff, "approx-diff", params.ApproxDiff, "approximate difference threshold")
	f.StringVarP(&output, "output", "o", "", "output path")
	f.BoolVarP(&params.Transpose, "transpose", "t", false, "horizontal scrolling mode")
	f.IntVar(&params.SeamWidth, "seam-width", 0, "debug seam line width")
	f.BoolVarP(&params.Verbose, "verbose", "v", false, "verbose output")
	f.IntVar(&jpegQuality, "jpeg-quality", 90, "output JPEG quality")
	f.IntVar(&maxImageHeight, "max-image-height", 65000, "split output taller than this many pixels")

	return root.Execute()
}
