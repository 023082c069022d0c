package core

// Envelope is the uniform result every data collaborator returns. Err and
// Data may both be set; the error always wins when the result is classified.
type Envelope[T any] struct {
	Data    T
	Present bool
	Err     error
}

func Ok[T any](v T) Envelope[T] {
	return Envelope[T]{Data: v, Present: true}
}

func Fail[T any](err error) Envelope[T] {
	return Envelope[T]{Err: err}
}

// Absent is a successful call that returned no data.
func Absent[T any]() Envelope[T] {
	return Envelope[T]{}
}

// Wrap adapts (value, error) code to an envelope. The value is kept even when
// err is set, so partial results stay visible to callers that want them.
func Wrap[T any](v T, err error) Envelope[T] {
	return Envelope[T]{Data: v, Present: true, Err: err}
}

// State is the terminal (or initial) state of a dashboard widget.
type State int

const (
	StateLoading State = iota
	StateEmpty
	StateError
	StatePopulated
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateEmpty:
		return "empty"
	case StateError:
		return "error"
	case StatePopulated:
		return "populated"
	default:
		return "unknown"
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Classify maps an envelope to a terminal state: error first, then absence or
// emptiness, then populated. isEmpty may be nil when no value of T is empty.
func Classify[T any](env Envelope[T], isEmpty func(T) bool) State {
	if env.Err != nil {
		return StateError
	}
	if !env.Present {
		return StateEmpty
	}
	if isEmpty != nil && isEmpty(env.Data) {
		return StateEmpty
	}
	return StatePopulated
}

// EmptySlice is the emptiness test for collection envelopes.
func EmptySlice[E any](s []E) bool {
	return len(s) == 0
}
