package contract

import "encoding/json"

// Kind classifies a failed Result.
type Kind string

const (
	KindInputValidation Kind = "input_validation_failed"
	KindGeneration      Kind = "generation_failed"
	KindRefinement      Kind = "refinement_failed"
	KindSummary         Kind = "summary_failed"
	KindOperational     Kind = "operational_failure"
)

// Result is the outcome of a caller-facing operation: either a value or a
// classified failure with a human-readable reason.
//
// On the wire a success is {"ok":true,"value":...} and a failure is
// {"ok":false,"kind":...,"reason":...}.
type Result[T any] struct {
	OK     bool
	Value  T
	Kind   Kind
	Reason string
}

// Ok wraps a successful value.
func Ok[T any](v T) Result[T] {
	return Result[T]{OK: true, Value: v}
}

// Fail builds a failed result.
func Fail[T any](kind Kind, reason string) Result[T] {
	return Result[T]{Kind: kind, Reason: reason}
}

func (r Result[T]) MarshalJSON() ([]byte, error) {
	if r.OK {
		return json.Marshal(struct {
			OK    bool `json:"ok"`
			Value T    `json:"value"`
		}{true, r.Value})
	}
	return json.Marshal(struct {
		OK     bool   `json:"ok"`
		Kind   Kind   `json:"kind"`
		Reason string `json:"reason"`
	}{false, r.Kind, r.Reason})
}

func (r *Result[T]) UnmarshalJSON(data []byte) error {
	var wire struct {
		OK     bool   `json:"ok"`
		Value  *T     `json:"value"`
		Kind   Kind   `json:"kind"`
		Reason string `json:"reason"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	*r = Result[T]{OK: wire.OK, Kind: wire.Kind, Reason: wire.Reason}
	if wire.Value != nil {
		r.Value = *wire.Value
	}
	return nil
}
