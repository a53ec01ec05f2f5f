// ABOUTME: Tagged fetch results per metric group.
// ABOUTME: Distinguishes "no data" from "fetch failed" instead of inferring from nulls.
package reconcile

// Status classifies the outcome of fetching one metric group.
type Status int

const (
	// StatusOK means the group fetched and carries at least one value.
	StatusOK Status = iota
	// StatusMissing means the vendor had nothing for the date. Ordinary,
	// not an error.
	StatusMissing
	// StatusError means transport or decoding failed; the group's values
	// are unknown for this run, not absent.
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusMissing:
		return "missing"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Result is the outcome of one metric-group fetch: a value, an explicit
// absence, or a failure reason.
type Result[T any] struct {
	Status Status
	Value  T
	Err    error
}

// OK wraps a fetched value.
func OK[T any](v T) Result[T] {
	return Result[T]{Status: StatusOK, Value: v}
}

// Missing marks a group the vendor had no data for.
func Missing[T any]() Result[T] {
	return Result[T]{Status: StatusMissing}
}

// Failed marks a group whose fetch errored.
func Failed[T any](err error) Result[T] {
	return Result[T]{Status: StatusError, Err: err}
}
