package db

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/coafione/phage-genome-plotter/pkg/blob"
	"github.com/coafione/phage-genome-plotter/pkg/model"
)

// IsStoreLocation reports whether loc names a SQL store instead of a JSON file.
func IsStoreLocation(loc string) bool {
	if IsPostgresDSN(loc) {
		return true
	}
	switch strings.ToLower(filepath.Ext(loc)) {
	case ".db", ".sqlite", ".sqlite3":
		return !blob.IsRemote(loc)
	}
	return false
}

// LoadDataset reads a dataset from a JSON file (local or s3://), a SQLite
// file or a Postgres URL.
func LoadDataset(ctx context.Context, loc string) (*model.GenomeDataset, error) {
	if IsStoreLocation(loc) {
		store, err := OpenDatasetStore(ctx, loc)
		if err != nil {
			return nil, err
		}
		defer store.Close()
		return store.Load(ctx)
	}

	bs, key, err := blob.Open(ctx, loc)
	if err != nil {
		return nil, err
	}
	rc, err := bs.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	ds, err := model.ReadJSON(rc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", loc, err)
	}
	return ds, nil
}

// SaveDataset writes ds to any location LoadDataset accepts.
func SaveDataset(ctx context.Context, loc string, ds *model.GenomeDataset) error {
	if IsStoreLocation(loc) {
		store, err := OpenDatasetStore(ctx, loc)
		if err != nil {
			return err
		}
		defer store.Close()
		return store.Save(ctx, ds)
	}

	var buf bytes.Buffer
	if err := model.WriteJSON(&buf, ds); err != nil {
		return err
	}
	bs, key, err := blob.Open(ctx, loc)
	if err != nil {
		return err
	}
	return bs.Put(ctx, key, &buf, blob.ContentType(key))
}
