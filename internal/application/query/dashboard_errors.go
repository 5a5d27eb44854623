package query

import (
	"errors"
	"fmt"
)

// AggregationErrorKind says why a dashboard could not be produced at all
type AggregationErrorKind int

const (
	// DatastoreUnavailable means every query of the systemic group failed,
	// which points at the datastore itself rather than at single queries.
	DatastoreUnavailable AggregationErrorKind = iota + 1
	// Cancelled means the caller's context ended before the report was complete.
	Cancelled
)

func (k AggregationErrorKind) String() string {
	switch k {
	case DatastoreUnavailable:
		return "datastore_unavailable"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

var (
	ErrDatastoreUnavailable = errors.New("datastore unavailable")
	ErrAggregationCancelled = errors.New("dashboard aggregation cancelled")
)

// AggregationError is returned instead of a report. Per-query failures never
// produce one; they are replaced by defaults.
type AggregationError struct {
	Kind  AggregationErrorKind
	Group string
	Err   error
}

func (e *AggregationError) Error() string {
	msg := fmt.Sprintf("dashboard aggregation %s in group %q", e.Kind, e.Group)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *AggregationError) Unwrap() error {
	return e.Err
}

func (e *AggregationError) Is(target error) bool {
	switch target {
	case ErrDatastoreUnavailable:
		return e.Kind == DatastoreUnavailable
	case ErrAggregationCancelled:
		return e.Kind == Cancelled
	}
	return false
}
