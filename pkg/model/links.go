package model

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/coafione/phage-genome-plotter/logger"
	"github.com/coafione/phage-genome-plotter/pkg/config"
	"go.uber.org/zap"
)

const (
	pairSeparator  = "_vs_"
	pairExtension  = ".txt"
	minBlastFields = 10

	colIdentity = 2
	colQStart   = 6
	colQEnd     = 7
	colSStart   = 8
	colSEnd     = 9
)

// PairName is the alignment result file name for query g1 against subject g2.
func PairName(g1, g2 string) string {
	return g1 + pairSeparator + g2 + pairExtension
}

// ParsePairName recovers (g1, g2) from "<g1>_vs_<g2>.txt". ok is false for
// anything that is not an alignment result name.
func ParsePairName(name string) (g1, g2 string, ok bool) {
	if !strings.HasSuffix(name, pairExtension) {
		return "", "", false
	}
	parts := strings.Split(strings.TrimSuffix(name, pairExtension), pairSeparator)
	if len(parts) != 2 {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// Keep is the link filter predicate. Both bounds are inclusive.
func Keep(f config.Filter, identity float64, alignLen int) bool {
	return identity >= f.IdentityThreshold && alignLen >= f.MinAlignmentLength
}

// ExtractLinks reads BLAST tabular (outfmt 6) records comparing source
// (query) to target (subject) and returns one link per qualifying record.
// Overlapping or duplicate hits are all kept. Comment, short and
// unparsable lines are skipped; only read errors are returned.
func ExtractLinks(r io.Reader, source, target string, f config.Filter) ([]SimilarityLink, error) {
	var links []SimilarityLink

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		cols := strings.Split(line, "\t")
		if len(cols) < minBlastFields {
			logger.Debug("Skipping short alignment line", zap.String("pair", PairName(source, target)), zap.Int("line", lineNo))
			continue
		}

		link, alignLen, err := parseRecord(cols, target)
		if err != nil {
			logger.Debug("Skipping malformed alignment line", zap.String("pair", PairName(source, target)), zap.Int("line", lineNo), zap.Error(err))
			continue
		}

		if !Keep(f, link.Identity, alignLen) {
			continue
		}
		links = append(links, link)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read alignments %s: %w", PairName(source, target), err)
	}
	return links, nil
}

// parseRecord returns the normalized link and the alignment length, which
// is measured on the subject coordinates as reported.
func parseRecord(cols []string, target string) (SimilarityLink, int, error) {
	identity, err := strconv.ParseFloat(strings.TrimSpace(cols[colIdentity]), 64)
	if err != nil {
		return SimilarityLink{}, 0, err
	}
	if math.IsNaN(identity) {
		return SimilarityLink{}, 0, fmt.Errorf("identity is NaN")
	}

	var coords [4]int
	for i, col := range []int{colQStart, colQEnd, colSStart, colSEnd} {
		v, err := strconv.Atoi(strings.TrimSpace(cols[col]))
		if err != nil {
			return SimilarityLink{}, 0, err
		}
		coords[i] = v
	}

	alignLen := coords[3] - coords[2]
	if alignLen < 0 {
		alignLen = -alignLen
	}

	return NewLink(target, coords[0], coords[1], coords[2], coords[3], identity), alignLen, nil
}
