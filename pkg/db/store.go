package db

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/coafione/phage-genome-plotter/logger"
	"github.com/coafione/phage-genome-plotter/pkg/model"
)

const (
	sqliteDriver   = "sqlite"
	postgresDriver = "pgx"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS genomes (
		position INTEGER NOT NULL,
		id TEXT PRIMARY KEY,
		length BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS cds (
		genome_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		start_pos BIGINT NOT NULL,
		end_pos BIGINT NOT NULL,
		strand INTEGER NOT NULL,
		label TEXT NOT NULL,
		PRIMARY KEY (genome_id, position)
	)`,
	`CREATE TABLE IF NOT EXISTS links (
		genome_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		target TEXT NOT NULL,
		q_start BIGINT NOT NULL,
		q_end BIGINT NOT NULL,
		s_start BIGINT NOT NULL,
		s_end BIGINT NOT NULL,
		identity DOUBLE PRECISION NOT NULL,
		PRIMARY KEY (genome_id, position)
	)`,
}

// DatasetStore keeps a genome dataset in SQLite or Postgres.
type DatasetStore struct {
	db       *sql.DB
	postgres bool
}

// IsPostgresDSN reports whether dsn addresses a Postgres server.
func IsPostgresDSN(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

// OpenDatasetStore opens dsn, a postgres:// URL or a SQLite file path, and
// creates the tables when missing.
func OpenDatasetStore(ctx context.Context, dsn string) (*DatasetStore, error) {
	driver := sqliteDriver
	if IsPostgresDSN(dsn) {
		driver = postgresDriver
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}

	store := &DatasetStore{db: db, postgres: driver == postgresDriver}
	for _, ddl := range schema {
		if _, err := db.ExecContext(ctx, ddl); err != nil {
			db.Close()
			return nil, fmt.Errorf("create schema: %w", err)
		}
	}
	return store, nil
}

func (s *DatasetStore) Close() error { return s.db.Close() }

// rebind rewrites ? placeholders to $n for Postgres.
func rebind(postgres bool, query string) string {
	if !postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Save replaces the stored dataset with ds in one transaction.
func (s *DatasetStore) Save(ctx context.Context, ds *model.GenomeDataset) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"links", "cds", "genomes"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	insertGenome, err := tx.PrepareContext(ctx, rebind(s.postgres,
		`INSERT INTO genomes (position, id, length) VALUES (?, ?, ?)`))
	if err != nil {
		return err
	}
	defer insertGenome.Close()

	insertCDS, err := tx.PrepareContext(ctx, rebind(s.postgres,
		`INSERT INTO cds (genome_id, position, start_pos, end_pos, strand, label) VALUES (?, ?, ?, ?, ?, ?)`))
	if err != nil {
		return err
	}
	defer insertCDS.Close()

	insertLink, err := tx.PrepareContext(ctx, rebind(s.postgres,
		`INSERT INTO links (genome_id, position, target, q_start, q_end, s_start, s_end, identity) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`))
	if err != nil {
		return err
	}
	defer insertLink.Close()

	for i, rec := range ds.Records() {
		if _, err := insertGenome.ExecContext(ctx, i, rec.ID, rec.Length); err != nil {
			return fmt.Errorf("insert genome %s: %w", rec.ID, err)
		}
		for j, c := range rec.CDS {
			if _, err := insertCDS.ExecContext(ctx, rec.ID, j, c.Start, c.End, int(c.Strand), c.Label); err != nil {
				return fmt.Errorf("insert cds %s[%d]: %w", rec.ID, j, err)
			}
		}
		for j, l := range rec.Links {
			if _, err := insertLink.ExecContext(ctx, rec.ID, j, l.Target,
				l.QueryStart, l.QueryEnd, l.SubjectStart, l.SubjectEnd, l.Identity); err != nil {
				return fmt.Errorf("insert link %s[%d]: %w", rec.ID, j, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	logger.Debug("Saved dataset", zap.Int("genomes", ds.Len()), zap.Int("links", ds.LinkCount()))
	return nil
}

// Load reads the stored dataset back in its saved order.
func (s *DatasetStore) Load(ctx context.Context) (*model.GenomeDataset, error) {
	ds := model.NewDataset()

	rows, err := s.db.QueryContext(ctx, `SELECT id, length FROM genomes ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("select genomes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		rec := &model.GenomeRecord{CDS: []model.CDSFeature{}, Links: []model.SimilarityLink{}}
		if err := rows.Scan(&rec.ID, &rec.Length); err != nil {
			return nil, err
		}
		if err := ds.Add(rec); err != nil {
			return nil, err
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := s.loadCDS(ctx, ds); err != nil {
		return nil, err
	}
	if err := s.loadLinks(ctx, ds); err != nil {
		return nil, err
	}
	return ds, nil
}

func (s *DatasetStore) loadCDS(ctx context.Context, ds *model.GenomeDataset) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT genome_id, start_pos, end_pos, strand, label FROM cds ORDER BY genome_id, position`)
	if err != nil {
		return fmt.Errorf("select cds: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id     string
			c      model.CDSFeature
			strand int
		)
		if err := rows.Scan(&id, &c.Start, &c.End, &strand, &c.Label); err != nil {
			return err
		}
		st, ok := model.StrandOf(strand)
		if !ok {
			return &model.MalformedRecordError{ID: id, Feature: -1, Reason: fmt.Sprintf("stored strand %d", strand)}
		}
		c.Strand = st
		rec, ok := ds.Get(id)
		if !ok {
			continue
		}
		rec.CDS = append(rec.CDS, c)
	}
	return rows.Err()
}

func (s *DatasetStore) loadLinks(ctx context.Context, ds *model.GenomeDataset) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT genome_id, target, q_start, q_end, s_start, s_end, identity FROM links ORDER BY genome_id, position`)
	if err != nil {
		return fmt.Errorf("select links: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id string
			l  model.SimilarityLink
		)
		if err := rows.Scan(&id, &l.Target, &l.QueryStart, &l.QueryEnd, &l.SubjectStart, &l.SubjectEnd, &l.Identity); err != nil {
			return err
		}
		rec, ok := ds.Get(id)
		if !ok {
			continue
		}
		rec.Links = append(rec.Links, l)
	}
	return rows.Err()
}
