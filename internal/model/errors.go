package model

import "errors"

// ErrInvalidArgument is matched by every InvalidArgumentError via errors.Is.
var ErrInvalidArgument = errors.New("invalid argument")

// InvalidArgumentError reports a failed precondition of a service call.
type InvalidArgumentError struct {
	Msg string
}

// InvalidArgument returns an InvalidArgumentError carrying msg.
func InvalidArgument(msg string) *InvalidArgumentError {
	return &InvalidArgumentError{Msg: msg}
}

func (e *InvalidArgumentError) Error() string { return e.Msg }

func (e *InvalidArgumentError) Is(target error) bool {
	return target == ErrInvalidArgument
}
