// Dataset serialization: the JSON document shared by the build and plot
// stages.

package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// MarshalJSON writes the CDS as a [start, end, strand, label] tuple.
func (c CDSFeature) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{c.Start, c.End, int(c.Strand), c.Label})
}

func (c *CDSFeature) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 4 {
		return fmt.Errorf("cds tuple has %d fields, want 4", len(raw))
	}

	var strand int
	var label *string
	if err := json.Unmarshal(raw[0], &c.Start); err != nil {
		return fmt.Errorf("cds start: %w", err)
	}
	if err := json.Unmarshal(raw[1], &c.End); err != nil {
		return fmt.Errorf("cds end: %w", err)
	}
	if err := json.Unmarshal(raw[2], &strand); err != nil {
		return fmt.Errorf("cds strand: %w", err)
	}
	if err := json.Unmarshal(raw[3], &label); err != nil {
		return fmt.Errorf("cds label: %w", err)
	}

	s, ok := StrandOf(strand)
	if !ok {
		return fmt.Errorf("cds strand %d is neither 1 nor -1", strand)
	}
	c.Strand = s
	c.Label = ""
	if label != nil {
		c.Label = *label
	}
	return nil
}

type recordJSON struct {
	Length int              `json:"length"`
	CDS    []CDSFeature     `json:"cds"`
	Links  []SimilarityLink `json:"links"`
}

// MarshalJSON writes the dataset as one object keyed by genome id, keys in
// insertion order.
func (ds *GenomeDataset) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, rec := range ds.Records() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(rec.ID)
		if err != nil {
			return nil, err
		}
		body := recordJSON{Length: rec.Length, CDS: rec.CDS, Links: rec.Links}
		if body.CDS == nil {
			body.CDS = []CDSFeature{}
		}
		if body.Links == nil {
			body.Links = []SimilarityLink{}
		}
		val, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", rec.ID, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads the object written by MarshalJSON, keeping the key
// order of the document as insertion order.
func (ds *GenomeDataset) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("dataset must be a JSON object")
	}

	fresh := NewDataset()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		id, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected token %v", tok)
		}
		var body recordJSON
		if err := dec.Decode(&body); err != nil {
			return fmt.Errorf("decode %s: %w", id, err)
		}
		if err := fresh.Add(&GenomeRecord{ID: id, Length: body.Length, CDS: body.CDS, Links: body.Links}); err != nil {
			return err
		}
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*ds = *fresh
	return nil
}

// WriteJSON encodes ds with two-space indentation.
func WriteJSON(w io.Writer, ds *GenomeDataset) error {
	out, err := json.MarshalIndent(ds, "", "  ")
	if err != nil {
		return err
	}
	out = append(out, '\n')
	_, err = w.Write(out)
	return err
}

// ReadJSON decodes a dataset document.
func ReadJSON(r io.Reader) (*GenomeDataset, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	ds := NewDataset()
	if err := json.Unmarshal(data, ds); err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}
	return ds, nil
}
