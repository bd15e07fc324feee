package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/coafione/phage-genome-plotter/logger"
	"github.com/coafione/phage-genome-plotter/pkg/blast"
	"github.com/coafione/phage-genome-plotter/pkg/config"
	"github.com/coafione/phage-genome-plotter/pkg/db"
)

func newBlastCmd(configPath func() string) *cobra.Command {
	opts := config.Default()
	var fastaDir string

	blastCmd := &cobra.Command{
		Use:   "blast",
		Short: "Run all-vs-all blastn over a folder of genomes",
		Long: `blast builds one nucleotide database per genome and searches every
genome against every other one, writing <query>_vs_<subject>.txt in
tabular format. Existing databases and result files are reused.`,
		Args:                       cobra.NoArgs,
		SuggestionsMinimumDistance: 3,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Overlay(&opts, cmd.Flags(), configPath()); err != nil {
				return err
			}

			seqdb, err := db.NewSequenceDB(fastaDir)
			if err != nil {
				return err
			}

			summary, err := blast.NewRunner(seqdb, opts.Blast).Run(cmd.Context())
			if err != nil {
				return err
			}
			logger.Info("All BLAST comparisons complete",
				zap.Int("genomes", len(summary.Genomes)),
				zap.Int("db_built", summary.DatabasesBuilt),
				zap.Int("db_reused", summary.DatabasesReused),
				zap.Int("searches_run", summary.SearchesRun),
				zap.Int("searches_reused", summary.SearchesReused),
				zap.String("output_dir", opts.Blast.OutputDir))
			return nil
		},
	}

	blastCmd.Flags().StringVar(&fastaDir, "fasta-dir", "", "directory with .fasta/.fa/.fna files")
	opts.BindBlastFlags(blastCmd.Flags())

	blastCmd.MarkFlagRequired("fasta-dir")

	return blastCmd
}
