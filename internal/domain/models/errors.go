package models

import (
	"errors"
	"fmt"
)

// ErrorKind classifies forecast failures.
type ErrorKind string

const (
	KindEmptyInput          ErrorKind = "EmptyInput"
	KindInsufficientHistory ErrorKind = "InsufficientHistory"
	KindModelNotReady       ErrorKind = "ModelNotReady"
	KindTrainingFailed      ErrorKind = "TrainingFailed"
)

// Sentinels for errors.Is; they match any ForecastError of the same kind.
var (
	ErrEmptyInput          = &ForecastError{Kind: KindEmptyInput, Message: "no bars supplied"}
	ErrInsufficientHistory = &ForecastError{Kind: KindInsufficientHistory, Message: "not enough history"}
	ErrModelNotReady       = &ForecastError{Kind: KindModelNotReady, Message: "model is not trained"}
	ErrTrainingFailed      = &ForecastError{Kind: KindTrainingFailed, Message: "training failed"}
)

type ForecastError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func NewForecastError(kind ErrorKind, format string, args ...interface{}) *ForecastError {
	return &ForecastError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a cause.
func (e *ForecastError) Wrap(err error) *ForecastError {
	return &ForecastError{Kind: e.Kind, Message: e.Message, Err: err}
}

func (e *ForecastError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *ForecastError) Unwrap() error { return e.Err }

func (e *ForecastError) Is(target error) bool {
	t, ok := target.(*ForecastError)
	return ok && t.Kind == e.Kind
}

// KindOf returns the kind of the first ForecastError in err's chain, or "".
func KindOf(err error) ErrorKind {
	var fe *ForecastError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return ""
}
