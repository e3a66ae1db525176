package firestore

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Error is a Firestore failure tagged with the gRPC code it carried, so the
// cart and order mirrors can tell a missing document from an outage.
type Error struct {
	Op   string
	Code codes.Code
	err  error
}

var (
	conflictCodes    = []codes.Code{codes.AlreadyExists, codes.FailedPrecondition, codes.Aborted, codes.OutOfRange}
	unavailableCodes = []codes.Code{codes.Unavailable, codes.ResourceExhausted, codes.Internal, codes.DeadlineExceeded}
)

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Op == "" {
		return e.err.Error()
	}
	return fmt.Sprintf("firestore %s: %v", e.Op, e.err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.err
}

func (e *Error) IsNotFound() bool    { return e.is(codes.NotFound) }
func (e *Error) IsConflict() bool    { return e.is(conflictCodes...) }
func (e *Error) IsUnavailable() bool { return e.is(unavailableCodes...) }

func (e *Error) is(candidates ...codes.Code) bool {
	if e == nil {
		return false
	}
	for _, c := range candidates {
		if e.Code == c {
			return true
		}
	}
	return false
}

// WrapError tags err with op and its gRPC code. Cancellation is returned as
// the plain context error.
func WrapError(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	}

	code := status.Code(err)
	if code == codes.Canceled {
		return context.Canceled
	}
	if code == codes.DeadlineExceeded {
		return context.DeadlineExceeded
	}

	var tagged *Error
	if errors.As(err, &tagged) {
		if tagged.Op == "" {
			tagged.Op = op
		}
		return tagged
	}
	return &Error{Op: op, Code: code, err: err}
}

// IsNotFound reports whether err is, or wraps, a NotFound failure.
func IsNotFound(err error) bool {
	var tagged *Error
	if errors.As(err, &tagged) {
		return tagged.IsNotFound()
	}
	return status.Code(err) == codes.NotFound
}

func isIteratorDone(err error) bool { return errors.Is(err, iterator.Done) }
