package model

import (
	"errors"
	"fmt"
)

var ErrDuplicateRecord = errors.New("duplicate genome record")

// MalformedRecordError reports annotation geometry that cannot be normalized.
// Feature is the index of the offending feature, or -1 for record-level
// problems such as a non-positive length.
type MalformedRecordError struct {
	ID      string
	Feature int
	Reason  string
}

func (e *MalformedRecordError) Error() string {
	if e.Feature < 0 {
		return fmt.Sprintf("malformed record %q: %s", e.ID, e.Reason)
	}
	return fmt.Sprintf("malformed record %q: feature %d: %s", e.ID, e.Feature, e.Reason)
}
