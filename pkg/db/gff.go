package db

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/biogo/biogo/io/featio/gff"

	"github.com/coafione/phage-genome-plotter/pkg/model"
)

// labelQualifiers are the GFF attributes the normalizer may use as labels.
var labelQualifiers = []string{"gene", "product", "locus_tag"}

// ReadGFF collects the features of a GFF file. GFF carries no sequence
// length, so the caller supplies it (normally from the genome's FASTA file).
// Comment and directive lines are dropped and an embedded ##FASTA section
// ends the feature table.
func ReadGFF(r io.Reader, id string, length int) (model.AnnotatedRecord, error) {
	rec := model.AnnotatedRecord{ID: id, Length: length}

	body, err := featureLines(r)
	if err != nil {
		return rec, fmt.Errorf("read %s: %w", id, err)
	}

	reader := gff.NewReader(body)
	for {
		ft, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return rec, fmt.Errorf("parse %s: %w", id, err)
		}
		gf, ok := ft.(*gff.Feature)
		if !ok {
			continue
		}

		f := model.AnnotatedFeature{
			Kind:       gf.Feature,
			Start:      gf.FeatStart,
			End:        gf.FeatEnd,
			Strand:     int(gf.FeatStrand),
			Qualifiers: make(map[string][]string),
		}
		for _, key := range labelQualifiers {
			if v := gffAttribute(gf.FeatAttributes, key); v != "" {
				f.Qualifiers[key] = []string{v}
			}
		}
		rec.Features = append(rec.Features, f)
	}

	return rec, nil
}

func featureLines(r io.Reader) (io.Reader, error) {
	var buf bytes.Buffer
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "##FASTA") {
			break
		}
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}
		buf.WriteString(gff2Line(line))
		buf.WriteByte('\n')
	}
	return &buf, scanner.Err()
}

// gff2Line rewrites a GFF3 attribute column (ID=a;gene=b) into the GFF2
// form (ID "a"; gene "b") the biogo reader accepts. An empty column "." is
// dropped.
func gff2Line(line string) string {
	fields := strings.Split(line, "\t")
	if len(fields) < 9 {
		return line
	}
	col := strings.TrimSpace(fields[8])
	switch {
	case col == "" || col == ".":
		return strings.Join(fields[:8], "\t")
	case !isGFF3Attributes(col):
		return line
	}

	var pairs []string
	for _, part := range strings.Split(col, ";") {
		key, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok || key == "" {
			continue
		}
		if un, err := url.PathUnescape(value); err == nil {
			value = un
		}
		pairs = append(pairs, gffTag(key)+` "`+gffValue(value)+`"`)
	}
	fields[8] = strings.Join(pairs, "; ")
	return strings.Join(fields, "\t")
}

// isGFF3Attributes reports whether the first attribute is a key=value pair.
func isGFF3Attributes(col string) bool {
	first, _, _ := strings.Cut(col, ";")
	eq := strings.IndexByte(first, '=')
	return eq > 0 && !strings.ContainsAny(first[:eq], " \t")
}

// gffTag maps a key onto the letters and underscores biogo allows in tags.
func gffTag(key string) string {
	return strings.Map(func(r rune) rune {
		if r == '_' || ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') {
			return r
		}
		return '_'
	}, key)
}

func gffValue(v string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '"':
			return '\''
		case ';':
			return ','
		case '\t', '\n', '\r':
			return ' '
		}
		return r
	}, v)
}

// gffAttribute returns the value of key with surrounding quotes removed.
func gffAttribute(attrs gff.Attributes, key string) string {
	for _, a := range attrs {
		if a.Tag == key {
			return strings.Trim(strings.TrimSpace(a.Value), `"`)
		}
	}
	return ""
}
