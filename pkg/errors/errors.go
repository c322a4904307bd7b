package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrPoolClosed is returned when work is submitted to a pool after Close.
	ErrPoolClosed = errors.New("pool is closed")
	// ErrJobSubmitted is returned when dependencies are added to a job that
	// already sits in a queue.
	ErrJobSubmitted = errors.New("job already submitted")
)

type IndexOutOfRangeError struct {
	Index int
	Size  int
}

func NewIndexOutOfRangeError(index, size int) *IndexOutOfRangeError {
	return &IndexOutOfRangeError{Index: index, Size: size}
}

func (e *IndexOutOfRangeError) Error() string {
	return fmt.Sprintf("index %d is out of range [0, %d)", e.Index, e.Size)
}

type InvalidArgumentError struct {
	Name   string
	Value  any
	Reason string
}

func NewInvalidArgumentError(name string, value any, reason string) *InvalidArgumentError {
	return &InvalidArgumentError{Name: name, Value: value, Reason: reason}
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid argument %s=%v: %s", e.Name, e.Value, e.Reason)
}

func IsIndexOutOfRangeError(err error) bool {
	var e *IndexOutOfRangeError
	return errors.As(err, &e)
}

func IsInvalidArgumentError(err error) bool {
	var e *InvalidArgumentError
	return errors.As(err, &e)
}

type ResourceNotFoundError struct {
	Kind string
	ID   string
}

func NewResourceNotFoundError(kind, id string) *ResourceNotFoundError {
	return &ResourceNotFoundError{Kind: kind, ID: id}
}

func (e *ResourceNotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

func IsResourceNotFoundError(err error) bool {
	var e *ResourceNotFoundError
	return errors.As(err, &e)
}
