package db

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/coafione/phage-genome-plotter/internal/util"
	"github.com/coafione/phage-genome-plotter/logger"
	"github.com/coafione/phage-genome-plotter/pkg/model"
)

var ErrAnnotationDirMissing = errors.New("annotation folder does not exist")

// AnnotationExtensions in preference order. When a genome has several
// annotation files the first extension listed wins.
var AnnotationExtensions = []string{".gbk", ".gbff", ".gb", ".gff3", ".gff"}

// folder which hosts GenBank or GFF annotation, one file per genome
type AnnotationDB struct {
	Dir string
}

func NewAnnotationDB(dir string) (*AnnotationDB, error) {
	if !util.DirExists(dir) {
		return nil, fmt.Errorf("%w: %s", ErrAnnotationDirMissing, dir)
	}
	return &AnnotationDB{Dir: dir}, nil
}

func extRank(name string) int {
	ext := strings.ToLower(filepath.Ext(name))
	for i, e := range AnnotationExtensions {
		if e == ext {
			return i
		}
	}
	return -1
}

// Files maps each genome id to its preferred annotation file.
func (adb *AnnotationDB) Files() (map[string]string, error) {
	entries, err := os.ReadDir(adb.Dir)
	if err != nil {
		return nil, err
	}

	files := make(map[string]string)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		rank := extRank(e.Name())
		if rank < 0 {
			continue
		}
		id := util.Stem(e.Name())
		if prev, ok := files[id]; ok && extRank(prev) <= rank {
			continue
		}
		files[id] = filepath.Join(adb.Dir, e.Name())
	}
	return files, nil
}

// Load reads and normalizes the annotation of every recognized genome, in id
// order. Files for genomes outside ids are not opened. GFF files take their
// length from seqdb; seqdb may be nil when only GenBank input is present.
func (adb *AnnotationDB) Load(ids model.IDSet, seqdb *SequenceDB) ([]*model.GenomeRecord, error) {
	files, err := adb.Files()
	if err != nil {
		return nil, err
	}

	var stems []string
	for id := range files {
		stems = append(stems, id)
	}
	sort.Strings(stems)

	var records []*model.GenomeRecord
	for _, id := range stems {
		if !ids.Has(id) {
			logger.Debug("Skipping unrecognized annotation", zap.String("id", id), zap.String("path", files[id]))
			continue
		}

		rec, err := readAnnotation(files[id], id, seqdb)
		if err != nil {
			return nil, err
		}
		g, err := model.Normalize(rec)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", files[id], err)
		}
		records = append(records, g)
	}
	return records, nil
}

func readAnnotation(path, id string, seqdb *SequenceDB) (model.AnnotatedRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.AnnotatedRecord{}, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".gff", ".gff3":
		if seqdb == nil {
			return model.AnnotatedRecord{}, fmt.Errorf("%s: %w", path, ErrNoSequence)
		}
		length, err := seqdb.Length(id)
		if err != nil {
			return model.AnnotatedRecord{}, err
		}
		return ReadGFF(f, id, length)
	default:
		rec, err := ReadGenBank(f, id)
		if err != nil {
			return rec, fmt.Errorf("%s: %w", path, err)
		}
		return rec, nil
	}
}
