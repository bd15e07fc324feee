package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/coafione/phage-genome-plotter/logger"
	"github.com/coafione/phage-genome-plotter/pkg/blast"
	"github.com/coafione/phage-genome-plotter/pkg/config"
	"github.com/coafione/phage-genome-plotter/pkg/db"
	"github.com/coafione/phage-genome-plotter/pkg/handler"
	"github.com/coafione/phage-genome-plotter/pkg/middle"
)

func newServeCmd(configPath func() string) *cobra.Command {
	opts := config.Default()
	var (
		input    string
		fastaDir string
	)

	serveCmd := &cobra.Command{
		Use:                        "serve",
		Short:                      "Serve the dataset overview and on-demand figures over HTTP",
		Args:                       cobra.NoArgs,
		SuggestionsMinimumDistance: 3,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Overlay(&opts, cmd.Flags(), configPath()); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			ds, err := db.LoadDataset(ctx, input)
			if err != nil {
				return err
			}

			pctx := &handler.PlotContext{
				Dataset: ds,
				Source:  input,
				Options: opts,
				Metrics: middle.NewMetrics(),
			}
			if fastaDir != "" {
				seqdb, err := db.NewSequenceDB(fastaDir)
				if err != nil {
					return err
				}
				pctx.SeqDB = seqdb
				pctx.Blast = blast.NewRunner(seqdb, opts.Blast)
				pctx.Jobs = handler.NewBlastJobManager()
			}

			srv := &http.Server{
				Addr:              opts.Server.Addr,
				Handler:           handler.NewHandler(pctx, logger.L()),
				ReadHeaderTimeout: 10 * time.Second,
			}

			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				srv.Shutdown(shutdownCtx)
			}()

			logger.Info("Open dataset on", zap.String("input", input), zap.Int("genomes", ds.Len()))
			logger.Info("Server starting", zap.String("addr", opts.Server.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Error starting server:", zap.String("error message", err.Error()))
				return err
			}
			logger.Info("Server stopped")
			return nil
		},
	}

	serveCmd.Flags().StringVarP(&input, "input", "i", "", "dataset written by build (.json, .db, postgres:// or s3://)")
	opts.BindStyleFlags(serveCmd.Flags())
	opts.BindLayoutFlags(serveCmd.Flags())
	opts.BindServerFlags(serveCmd.Flags())
	serveCmd.Flags().StringVar(&fastaDir, "fasta-dir", "", "FASTA folder for the sequence and BLAST endpoints")
	opts.BindBlastFlags(serveCmd.Flags())

	serveCmd.MarkFlagRequired("input")

	return serveCmd
}
