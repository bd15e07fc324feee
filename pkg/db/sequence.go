package db

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"

	"github.com/coafione/phage-genome-plotter/internal/util"
	"github.com/coafione/phage-genome-plotter/pkg/model"
)

// Defining possible error
var (
	ErrSequenceDirMissing = errors.New("sequence folder does not exist")
	ErrNoSequence         = errors.New("no sequence file for genome")
	ErrBadRegion          = errors.New("region outside sequence")
)

// SequenceExtensions are the FASTA file extensions that define genome ids.
var SequenceExtensions = []string{".fasta", ".fa", ".fna"}

// folder which hosts one FASTA file per genome, named <genome id>.<ext>
type SequenceDB struct {
	Dir string
}

func NewSequenceDB(dir string) (*SequenceDB, error) {
	if !util.DirExists(dir) {
		return nil, fmt.Errorf("%w: %s", ErrSequenceDirMissing, dir)
	}
	return &SequenceDB{Dir: dir}, nil
}

// Files lists the FASTA files in name order.
func (seqdb *SequenceDB) Files() ([]string, error) {
	entries, err := os.ReadDir(seqdb.Dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !util.HasExt(e.Name(), SequenceExtensions) {
			continue
		}
		files = append(files, filepath.Join(seqdb.Dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// IDs is the recognized identifier set: the stems of all FASTA files.
func (seqdb *SequenceDB) IDs() (model.IDSet, error) {
	files, err := seqdb.Files()
	if err != nil {
		return nil, err
	}
	ids := model.NewIDSet()
	for _, f := range files {
		ids[util.Stem(f)] = struct{}{}
	}
	return ids, nil
}

// Path returns the first FASTA file whose stem is id.
func (seqdb *SequenceDB) Path(id string) (string, error) {
	files, err := seqdb.Files()
	if err != nil {
		return "", err
	}
	for _, f := range files {
		if util.Stem(f) == id {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrNoSequence, id)
}

// Length returns the length of the first record in the genome's FASTA file.
func (seqdb *SequenceDB) Length(id string) (int, error) {
	path, err := seqdb.Path(id)
	if err != nil {
		return 0, err
	}
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	n, err := FirstSequenceLength(f)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", path, err)
	}
	return n, nil
}

// FirstSequenceLength reads one FASTA record from r and returns its length.
func FirstSequenceLength(r io.Reader) (int, error) {
	s, err := firstSequence(r)
	if err != nil {
		return 0, err
	}
	return s.Len(), nil
}

func firstSequence(r io.Reader) (*linear.Seq, error) {
	template := linear.NewSeq("", nil, alphabet.DNAredundant)
	s, err := fasta.NewReader(r, template).Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty FASTA", ErrNoSequence)
		}
		return nil, err
	}
	return s.(*linear.Seq), nil
}

// Region returns bases [start, end) of the genome's first FASTA record.
func (seqdb *SequenceDB) Region(id string, start, end int) (string, error) {
	path, err := seqdb.Path(id)
	if err != nil {
		return "", err
	}
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	s, err := firstSequence(f)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	if start < 0 || end > s.Len() || start >= end {
		return "", fmt.Errorf("%w: %s:%d-%d (length %d)", ErrBadRegion, id, start, end, s.Len())
	}

	region := make([]byte, 0, end-start)
	for _, l := range s.Seq[start:end] {
		region = append(region, byte(l))
	}
	return string(region), nil
}
