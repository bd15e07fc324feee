package cli

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/coafione/phage-genome-plotter/logger"
	"github.com/coafione/phage-genome-plotter/pkg/blob"
	"github.com/coafione/phage-genome-plotter/pkg/config"
	"github.com/coafione/phage-genome-plotter/pkg/db"
	"github.com/coafione/phage-genome-plotter/pkg/handler"
	"github.com/coafione/phage-genome-plotter/pkg/layout"
	"github.com/coafione/phage-genome-plotter/pkg/model"
	"github.com/coafione/phage-genome-plotter/pkg/render"
)

// RenderFigure lays out ds in order and draws it with opts.
func RenderFigure(ds *model.GenomeDataset, order []string, opts config.Options) (*bytes.Buffer, *render.Scene, error) {
	lay, err := layout.Compute(ds, order, opts.Layout)
	if err != nil {
		return nil, nil, err
	}
	scene, err := render.BuildScene(ds, lay, opts.Style)
	if err != nil {
		return nil, nil, err
	}
	var buf bytes.Buffer
	if err := render.Draw(&buf, scene, opts.Style); err != nil {
		return nil, nil, err
	}
	return &buf, scene, nil
}

// writeArtifact stores buf at a local path or an s3:// address.
func writeArtifact(ctx context.Context, uri string, buf *bytes.Buffer) error {
	store, key, err := blob.Open(ctx, uri)
	if err != nil {
		return err
	}
	return store.Put(ctx, key, buf, blob.ContentType(key))
}

func newPlotCmd(configPath func() string) *cobra.Command {
	opts := config.Default()
	var (
		input  string
		output string
		order  []string
	)

	plotCmd := &cobra.Command{
		Use:   "plot",
		Short: "Draw the comparative genome map from a dataset",
		Long: `plot stacks one track per genome in the requested order, draws CDS boxes
colored by strand and similarity ribbons between neighbouring tracks colored
by percent identity.`,
		Args:                       cobra.NoArgs,
		SuggestionsMinimumDistance: 3,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Overlay(&opts, cmd.Flags(), configPath()); err != nil {
				return err
			}
			format, err := render.NormalizeFormat(opts.Style.Format)
			if err != nil {
				return err
			}
			opts.Style.Format = format
			if output == "" {
				output = "phage_comparison." + format
			}

			ctx := cmd.Context()
			ds, err := db.LoadDataset(ctx, input)
			if err != nil {
				return fmt.Errorf("load dataset: %w", err)
			}
			logger.Info("Loaded dataset", zap.String("input", input), zap.Int("genomes", ds.Len()))

			buf, scene, err := RenderFigure(ds, handler.ParseOrder(strings.Join(order, ",")), opts)
			if err != nil {
				return err
			}
			if scene.Dangling > 0 {
				logger.Debug("Skipped links to genomes not in the dataset", zap.Int("links", scene.Dangling))
			}

			if err := writeArtifact(ctx, output, buf); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			logger.Info("Plot saved",
				zap.String("output", output),
				zap.Int("ribbons", len(scene.Ribbons)),
				zap.Int("cds", len(scene.Boxes)))
			return nil
		},
	}

	plotCmd.Flags().StringVarP(&input, "input", "i", "", "dataset written by build (.json, .db, postgres:// or s3://)")
	plotCmd.Flags().StringVarP(&output, "output", "o", "", "output file or s3:// key (default phage_comparison.<format>)")
	plotCmd.Flags().StringSliceVar(&order, "order", nil, "comma separated genome order (default dataset order)")
	opts.BindStyleFlags(plotCmd.Flags())
	opts.BindLayoutFlags(plotCmd.Flags())

	plotCmd.MarkFlagRequired("input")

	return plotCmd
}
