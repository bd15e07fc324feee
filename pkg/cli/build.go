package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/coafione/phage-genome-plotter/logger"
	"github.com/coafione/phage-genome-plotter/pkg/config"
	"github.com/coafione/phage-genome-plotter/pkg/db"
	"github.com/coafione/phage-genome-plotter/pkg/model"
)

// BuildInputs names the three input folders of a build.
type BuildInputs struct {
	AnnotationDir string
	AlignmentDir  string
	SequenceDir   string
}

// BuildDataset runs ingestion: the sequence folder decides which genomes are
// recognized, annotations give length and CDS, alignments give links.
func BuildDataset(in BuildInputs, f config.Filter) (*model.GenomeDataset, model.Report, error) {
	seqdb, err := db.NewSequenceDB(in.SequenceDir)
	if err != nil {
		return nil, model.Report{}, err
	}
	ids, err := seqdb.IDs()
	if err != nil {
		return nil, model.Report{}, err
	}
	logger.Info("Recognized genomes", zap.Int("count", len(ids)), zap.String("dir", in.SequenceDir))

	adb, err := db.NewAnnotationDB(in.AnnotationDir)
	if err != nil {
		return nil, model.Report{}, err
	}
	records, err := adb.Load(ids, seqdb)
	if err != nil {
		return nil, model.Report{}, err
	}

	aldb, err := db.NewAlignmentDB(in.AlignmentDir)
	if err != nil {
		return nil, model.Report{}, err
	}
	sources, err := aldb.Sources()
	if err != nil {
		return nil, model.Report{}, err
	}

	return model.Assemble(ids, records, sources, f)
}

func newBuildCmd(configPath func() string) *cobra.Command {
	opts := config.Default()
	var (
		in     BuildInputs
		output string
	)

	buildCmd := &cobra.Command{
		Use:   "build",
		Short: "Parse annotations and BLAST results into one dataset",
		Long: `build reads GenBank/GFF3 annotations, pairwise BLAST tabular results
(<g1>_vs_<g2>.txt) and the FASTA folder that decides which genomes are in
scope, and writes the merged dataset as JSON, SQLite or Postgres.`,
		Args:                       cobra.NoArgs,
		SuggestionsMinimumDistance: 3,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Overlay(&opts, cmd.Flags(), configPath()); err != nil {
				return err
			}

			ds, report, err := BuildDataset(in, opts.Filter)
			if err != nil {
				return fmt.Errorf("build: %w", err)
			}

			for _, rec := range ds.Records() {
				logger.Info("Parsed genome",
					zap.String("genome", rec.ID),
					zap.Int("length", rec.Length),
					zap.Int("cds", len(rec.CDS)),
					zap.Int("links", len(rec.Links)))
			}
			logger.Info("Dataset assembled",
				zap.Int("genomes", len(report.Included)),
				zap.Int("excluded", len(report.Excluded)),
				zap.Int("alignments_used", report.AlignmentsUsed),
				zap.Int("alignments_skipped", report.AlignmentsSkipped),
				zap.Int("links", report.Links))

			if err := db.SaveDataset(cmd.Context(), output, ds); err != nil {
				return err
			}
			logger.Info("Saved dataset", zap.String("output", output))
			return nil
		},
	}

	buildCmd.Flags().StringVar(&in.AnnotationDir, "gbk-dir", "", "directory with GenBank (.gbk) or GFF3 annotations")
	buildCmd.Flags().StringVar(&in.AlignmentDir, "blast-dir", "", "directory with BLAST outfmt 6 .txt files")
	buildCmd.Flags().StringVar(&in.SequenceDir, "fasta-dir", "", "directory with .fasta/.fa/.fna files (used for ID detection)")
	buildCmd.Flags().StringVarP(&output, "output", "o", "parsed_data.json", "dataset location: .json, .db/.sqlite, postgres:// or s3://")
	opts.BindFilterFlags(buildCmd.Flags())

	buildCmd.MarkFlagRequired("gbk-dir")
	buildCmd.MarkFlagRequired("blast-dir")
	buildCmd.MarkFlagRequired("fasta-dir")

	return buildCmd
}
