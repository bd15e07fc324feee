package db

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/coafione/phage-genome-plotter/internal/util"
	"github.com/coafione/phage-genome-plotter/pkg/model"
)

var ErrAlignmentDirMissing = errors.New("alignment folder does not exist")

// folder of BLAST tabular results named <g1>_vs_<g2>.txt
type AlignmentDB struct {
	Dir string
}

func NewAlignmentDB(dir string) (*AlignmentDB, error) {
	if !util.DirExists(dir) {
		return nil, fmt.Errorf("%w: %s", ErrAlignmentDirMissing, dir)
	}
	return &AlignmentDB{Dir: dir}, nil
}

// Sources lists every .txt file in the folder, in name order. Files that do
// not follow the pair naming are still returned; Assemble skips them.
func (adb *AlignmentDB) Sources() ([]model.AlignmentSource, error) {
	entries, err := os.ReadDir(adb.Dir)
	if err != nil {
		return nil, err
	}

	var sources []model.AlignmentSource
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".txt") {
			continue
		}
		path := filepath.Join(adb.Dir, e.Name())
		sources = append(sources, model.AlignmentSource{
			Name: e.Name(),
			Open: func() (io.ReadCloser, error) { return os.Open(path) },
		})
	}
	sort.Slice(sources, func(i, j int) bool { return sources[i].Name < sources[j].Name })
	return sources, nil
}
