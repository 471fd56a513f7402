package library

import (
	"encoding/json"
	"errors"
)

// State is the phase of an asynchronous load.
type State int

const (
	StateLoading State = iota
	StateSuccess
	StateFailure
	StateNotFound
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateSuccess:
		return "success"
	case StateFailure:
		return "failure"
	case StateNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// Result is the outcome of one load. Exactly one variant is set, so a result can
// never be loading and failed at the same time.
type Result[T any] struct {
	state State
	data  T
	err   error
}

// Loading returns the in-progress variant.
func Loading[T any]() Result[T] {
	return Result[T]{state: StateLoading}
}

// Success wraps loaded data.
func Success[T any](data T) Result[T] {
	return Result[T]{state: StateSuccess, data: data}
}

// Failure wraps the reason a load failed. A nil err is replaced with a generic one.
func Failure[T any](err error) Result[T] {
	if err == nil {
		err = errors.New("unknown error")
	}
	return Result[T]{state: StateFailure, err: err}
}

// NotFound is the variant for a lookup that completed but matched nothing.
func NotFound[T any]() Result[T] {
	return Result[T]{state: StateNotFound}
}

func (r Result[T]) State() State { return r.state }

func (r Result[T]) IsLoading() bool { return r.state == StateLoading }

func (r Result[T]) IsSuccess() bool { return r.state == StateSuccess }

func (r Result[T]) IsFailure() bool { return r.state == StateFailure }

func (r Result[T]) IsNotFound() bool { return r.state == StateNotFound }

// Data returns the payload and whether the result is a success.
func (r Result[T]) Data() (T, bool) {
	return r.data, r.state == StateSuccess
}

// Err returns the failure reason, nil for every other variant.
func (r Result[T]) Err() error {
	if r.state != StateFailure {
		return nil
	}
	return r.err
}

type resultJSON[T any] struct {
	State string `json:"state"`
	Data  *T     `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

// MarshalJSON encodes the result as {"state": ..., "data" | "error": ...}.
func (r Result[T]) MarshalJSON() ([]byte, error) {
	out := resultJSON[T]{State: r.state.String()}
	switch r.state {
	case StateSuccess:
		data := r.data
		out.Data = &data
	case StateFailure:
		out.Error = r.err.Error()
	}
	return json.Marshal(out)
}
