// Package blast runs the all-versus-all nucleotide comparisons that feed the
// link extractor.
package blast

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/coafione/phage-genome-plotter/internal/util"
	"github.com/coafione/phage-genome-plotter/logger"
	"github.com/coafione/phage-genome-plotter/pkg/config"
	"github.com/coafione/phage-genome-plotter/pkg/db"
	"github.com/coafione/phage-genome-plotter/pkg/model"
)

var ErrNoSequences = errors.New("no FASTA files found")

// Summary counts what a Run did and what it found already in place.
type Summary struct {
	Genomes          []string
	DatabasesBuilt   int
	DatabasesReused  int
	SearchesRun      int
	SearchesReused   int
	AlignmentOutputs []string
}

// Runner drives makeblastdb and blastn over one folder of genomes.
type Runner struct {
	Opts  config.Blast
	SeqDB *db.SequenceDB
}

func NewRunner(seqdb *db.SequenceDB, opts config.Blast) *Runner {
	return &Runner{Opts: opts, SeqDB: seqdb}
}

// Pair is one query/database combination.
type Pair struct {
	Query   string
	Subject string
}

// Pairs returns every unordered pair of ids with Query < Subject, in
// lexical order. ids must be sorted.
func Pairs(ids []string) []Pair {
	var pairs []Pair
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			pairs = append(pairs, Pair{Query: ids[i], Subject: ids[j]})
		}
	}
	return pairs
}

// DBPath is the database prefix for id.
func (r *Runner) DBPath(id string) string {
	return filepath.Join(r.Opts.DBDir, id)
}

// OutputPath is where the tabular result of p is written.
func (r *Runner) OutputPath(p Pair) string {
	return filepath.Join(r.Opts.OutputDir, model.PairName(p.Query, p.Subject))
}

// Run builds missing databases and runs missing searches. Existing
// databases (<prefix>.nin) and result files are left untouched, so an
// interrupted run can be resumed.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	var sum Summary

	ids, err := r.SeqDB.IDs()
	if err != nil {
		return sum, err
	}
	sum.Genomes = ids.Sorted()
	if len(sum.Genomes) == 0 {
		return sum, fmt.Errorf("%w in %s", ErrNoSequences, r.SeqDB.Dir)
	}

	for _, dir := range []string{r.Opts.OutputDir, r.Opts.DBDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return sum, err
		}
	}

	logger.Info("Genomes detected", zap.Strings("ids", sum.Genomes))

	for _, id := range sum.Genomes {
		if util.FileExists(r.DBPath(id) + ".nin") {
			sum.DatabasesReused++
			continue
		}
		fasta, err := r.SeqDB.Path(id)
		if err != nil {
			return sum, err
		}
		logger.Info("Creating BLAST database", zap.String("id", id))
		if err := r.run(ctx, r.Opts.Makeblastdb,
			"-in", fasta, "-dbtype", "nucl", "-out", r.DBPath(id)); err != nil {
			return sum, err
		}
		sum.DatabasesBuilt++
	}

	for _, p := range Pairs(sum.Genomes) {
		out := r.OutputPath(p)
		sum.AlignmentOutputs = append(sum.AlignmentOutputs, out)
		if util.FileExists(out) {
			sum.SearchesReused++
			continue
		}
		query, err := r.SeqDB.Path(p.Query)
		if err != nil {
			return sum, err
		}
		logger.Info("BLAST", zap.String("query", p.Query), zap.String("subject", p.Subject))
		if err := r.run(ctx, r.Opts.Blastn,
			"-query", query, "-db", r.DBPath(p.Subject),
			"-outfmt", "6", "-evalue", r.Opts.EValue, "-out", out); err != nil {
			os.Remove(out)
			return sum, err
		}
		sum.SearchesRun++
	}

	logger.Info("All pairwise BLAST jobs completed",
		zap.Int("databases_built", sum.DatabasesBuilt),
		zap.Int("searches_run", sum.SearchesRun),
		zap.Int("searches_reused", sum.SearchesReused))
	return sum, nil
}

func (r *Runner) run(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	logger.Debug("exec", zap.String("cmd", name), zap.Strings("args", args))
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return fmt.Errorf("failed to execute %s: %w: %s", name, err, msg)
		}
		return fmt.Errorf("failed to execute %s: %w", name, err)
	}
	return nil
}
