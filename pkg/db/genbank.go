package db

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/coafione/phage-genome-plotter/pkg/model"
)

var ErrNoRecord = errors.New("no GenBank record found")

var (
	rangePattern  = regexp.MustCompile(`<?(\d+)\.\.>?(\d+)`)
	singlePattern = regexp.MustCompile(`^[<>]?(\d+)[<>]?$`)
)

const (
	featureKeyColumn  = 5
	qualifierIndent   = 21
	translationQualif = "translation"
)

// ReadGenBank parses the first record of a GenBank flat file. Feature
// intervals are converted to 0-based half-open coordinates; for compound
// locations the interval spans every part. The length is the number of
// bases under ORIGIN, falling back to the LOCUS line.
func ReadGenBank(r io.Reader, id string) (model.AnnotatedRecord, error) {
	rec := model.AnnotatedRecord{ID: id}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var (
		seenLocus  bool
		inFeatures bool
		inOrigin   bool
		locusLen   int
		seqLen     int
		block      []string
	)

	flush := func() error {
		if len(block) == 0 {
			return nil
		}
		f, err := parseFeatureBlock(block)
		block = nil
		if err != nil {
			if f.Kind != model.FeatureCDS {
				// Locations such as 100^101 only appear on features we never draw.
				return nil
			}
			return &model.MalformedRecordError{ID: id, Feature: len(rec.Features), Reason: err.Error()}
		}
		rec.Features = append(rec.Features, f)
		return nil
	}

	for scanner.Scan() {
		line := scanner.Text()

		switch {
		case strings.HasPrefix(line, "LOCUS"):
			seenLocus = true
			locusLen = parseLocusLength(line)
			continue
		case strings.HasPrefix(line, "FEATURES"):
			inFeatures = true
			continue
		case strings.HasPrefix(line, "ORIGIN"):
			if err := flush(); err != nil {
				return rec, err
			}
			inFeatures = false
			inOrigin = true
			continue
		case strings.HasPrefix(line, "//"):
			if err := flush(); err != nil {
				return rec, err
			}
			return finishRecord(rec, seenLocus, seqLen, locusLen)
		}

		if inFeatures {
			if len(line) > featureKeyColumn && strings.TrimSpace(line[:featureKeyColumn]) == "" && line[featureKeyColumn] != ' ' {
				if err := flush(); err != nil {
					return rec, err
				}
				block = []string{line}
			} else if len(line) > 0 && line[0] != ' ' {
				// Another top-level section (e.g. CONTIG) ends the feature table.
				if err := flush(); err != nil {
					return rec, err
				}
				inFeatures = false
			} else if block != nil {
				block = append(block, line)
			}
			continue
		}

		if inOrigin {
			for i := 0; i < len(line); i++ {
				c := line[i]
				if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
					seqLen++
				}
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return rec, fmt.Errorf("read %s: %w", id, err)
	}
	if err := flush(); err != nil {
		return rec, err
	}
	return finishRecord(rec, seenLocus, seqLen, locusLen)
}

func finishRecord(rec model.AnnotatedRecord, seenLocus bool, seqLen, locusLen int) (model.AnnotatedRecord, error) {
	if !seenLocus {
		return rec, fmt.Errorf("%w: %s", ErrNoRecord, rec.ID)
	}
	rec.Length = seqLen
	if rec.Length == 0 {
		rec.Length = locusLen
	}
	return rec, nil
}

// LOCUS       NC_001416              48502 bp    DNA     linear   PHG 01-MAY-2020
func parseLocusLength(line string) int {
	fields := strings.Fields(line)
	for i := 1; i+1 < len(fields); i++ {
		if fields[i+1] == "bp" || fields[i+1] == "aa" {
			if n, err := strconv.Atoi(fields[i]); err == nil {
				return n
			}
		}
	}
	return 0
}

// parseFeatureBlock handles a feature key line, location continuation lines
// and the qualifier lines that follow.
func parseFeatureBlock(lines []string) (model.AnnotatedFeature, error) {
	head := strings.Fields(lines[0])
	f := model.AnnotatedFeature{
		Kind:       head[0],
		Qualifiers: make(map[string][]string),
	}

	var loc strings.Builder
	if len(head) > 1 {
		loc.WriteString(strings.Join(head[1:], ""))
	}

	i := 1
	for ; i < len(lines); i++ {
		body := strings.TrimSpace(lines[i])
		if strings.HasPrefix(body, "/") {
			break
		}
		loc.WriteString(body)
	}

	start, end, strand, err := parseLocation(loc.String())
	if err != nil {
		return f, err
	}
	f.Start, f.End, f.Strand = start, end, strand

	var (
		key   string
		value strings.Builder
		open  bool
	)
	save := func() {
		if key != "" {
			f.Qualifiers[key] = append(f.Qualifiers[key], strings.Trim(value.String(), `"`))
		}
		key = ""
		value.Reset()
	}

	for ; i < len(lines); i++ {
		body := lines[i]
		if len(body) > qualifierIndent {
			body = body[qualifierIndent:]
		} else {
			body = strings.TrimSpace(body)
		}

		if !open && strings.HasPrefix(body, "/") {
			save()
			name, val, hasVal := strings.Cut(body[1:], "=")
			key = name
			if hasVal {
				value.WriteString(val)
				open = strings.HasPrefix(val, `"`) && (len(val) == 1 || !strings.HasSuffix(val, `"`))
			}
			continue
		}

		if key == "" {
			continue
		}
		if key != translationQualif {
			value.WriteByte(' ')
		}
		value.WriteString(strings.TrimSpace(body))
		if open && strings.HasSuffix(body, `"`) {
			open = false
		}
	}
	save()

	return f, nil
}

// parseLocation reduces a GenBank location string to one forward-strand
// interval and a strand (+1, -1, or 0 when parts disagree).
func parseLocation(loc string) (start, end, strand int, err error) {
	strand = 1
	if strings.HasPrefix(loc, "complement(") {
		strand = -1
		loc = strings.TrimSuffix(strings.TrimPrefix(loc, "complement("), ")")
	} else if strings.HasPrefix(loc, "join(") || strings.HasPrefix(loc, "order(") {
		inner := loc[strings.Index(loc, "(")+1 : len(loc)-1]
		parts := strings.Split(inner, ",")
		complemented := 0
		for _, p := range parts {
			if strings.HasPrefix(p, "complement(") {
				complemented++
			}
		}
		// Mixed-strand joins have no single strand and draw as reverse.
		if complemented > 0 {
			strand = -1
		}
	}

	matches := rangePattern.FindAllStringSubmatch(loc, -1)
	if len(matches) == 0 {
		m := singlePattern.FindStringSubmatch(loc)
		if m == nil {
			return 0, 0, 0, fmt.Errorf("unsupported location %q", loc)
		}
		pos, _ := strconv.Atoi(m[1])
		return pos - 1, pos, strand, nil
	}

	start, end = -1, -1
	for _, m := range matches {
		a, _ := strconv.Atoi(m[1])
		b, _ := strconv.Atoi(m[2])
		if start < 0 || a-1 < start {
			start = a - 1
		}
		if b > end {
			end = b
		}
	}
	return start, end, strand, nil
}
