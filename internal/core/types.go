package core

import (
	"errors"
	"fmt"
	"strings"
)

// Field names used by records on the wire and in CSV headers.
const (
	FieldCategory = "category"
	FieldValue    = "value"
)

// UnknownCategory is the group name aggregation uses for records without a category.
const UnknownCategory = "Unknown"

var (
	// ErrInvalidSequence is returned when rows do not form a usable record sequence.
	ErrInvalidSequence = errors.New("missing required column: data must have category and value columns")

	// ErrInvalidRecord is returned when a single record cannot enter the dataset.
	ErrInvalidRecord = errors.New("invalid data point format")

	// ErrIndexOutOfRange is returned by index-addressed edits outside the sequence.
	ErrIndexOutOfRange = errors.New("record index out of range")

	// ErrEmptyDataset is returned when an operation needs at least one record.
	ErrEmptyDataset = errors.New("no data to chart")
)

// DataRecord is one category/value pair.
type DataRecord struct {
	Category string  `json:"category" yaml:"category"`
	Value    float64 `json:"value" yaml:"value"`
}

// Row is a loosely-typed record as produced by import. Field values are either
// string or float64; a column missing from the source row is a missing key.
type Row map[string]any

// RecordPatch is a partial update for an index-addressed edit.
// Nil fields are left unchanged.
type RecordPatch struct {
	Category *string  `json:"category,omitempty"`
	Value    *float64 `json:"value,omitempty"`
}

// SortDirection selects the order applied by SortByValue.
type SortDirection string

const (
	SortNone SortDirection = ""
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// AggregateMethod selects the reduction applied by Aggregate.
type AggregateMethod string

const (
	AggregateNone AggregateMethod = ""
	AggregateSum  AggregateMethod = "sum"
	AggregateAvg  AggregateMethod = "avg"
	AggregateMax  AggregateMethod = "max"
	AggregateMin  AggregateMethod = "min"
)

// TransformOptions are the independent transform flags held by the dataset store.
// Only Sort and Normalize take part in the automatically derived sequence.
type TransformOptions struct {
	Sort      SortDirection   `json:"sort"`
	Normalize bool            `json:"normalize"`
	Aggregate AggregateMethod `json:"aggregate"`
}

// ParseSortDirection parses a sort direction. "none" and "" both mean no sorting.
func ParseSortDirection(s string) (SortDirection, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "null":
		return SortNone, nil
	case "asc", "ascending":
		return SortAsc, nil
	case "desc", "descending":
		return SortDesc, nil
	default:
		return SortNone, fmt.Errorf("invalid sort direction %q (use asc, desc or none)", s)
	}
}

// ParseAggregateMethod parses an aggregation method. "average" is accepted for avg.
func ParseAggregateMethod(s string) (AggregateMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "null":
		return AggregateNone, nil
	case "sum":
		return AggregateSum, nil
	case "avg", "average":
		return AggregateAvg, nil
	case "max", "maximum":
		return AggregateMax, nil
	case "min", "minimum":
		return AggregateMin, nil
	default:
		return AggregateNone, fmt.Errorf("invalid aggregate method %q (use sum, avg, max, min or none)", s)
	}
}

// Clone returns a copy of records that shares no backing array with the input.
func Clone(records []DataRecord) []DataRecord {
	if records == nil {
		return []DataRecord{}
	}
	out := make([]DataRecord, len(records))
	copy(out, records)
	return out
}
