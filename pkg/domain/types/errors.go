package types

import (
	"context"
	"errors"
	"net"

	"github.com/m-mizutani/goerr/v2"
)

// Classification tags for the error taxonomy. Every error that leaves the
// retrieval pipeline carries exactly one of these.
var (
	TagValidation = goerr.NewTag("validation")
	TagNotFound   = goerr.NewTag("not_found")
	TagNetwork    = goerr.NewTag("network")
	TagTimeout    = goerr.NewTag("timeout")
	TagEmptyFile  = goerr.NewTag("empty_file")
	TagPermission = goerr.NewTag("permission")
	TagCancelled  = goerr.NewTag("cancelled")
)

// ErrCancelled marks a user-initiated cancellation. It is an outcome, not a
// failure: callers must not log it as an error and must not run cleanup for it.
var ErrCancelled = goerr.New("cancelled by user", goerr.T(TagCancelled))

// HasTag reports whether any error in the wrap chain carries the given tag.
// goerr/v2 keeps its tag type unexported, so the parameter type is bound by
// inference from (*goerr.Error).HasTag instead of being named here.
var HasTag = hasTagImpl((*goerr.Error).HasTag)

func hasTagImpl[T any](check func(*goerr.Error, T) bool) func(error, T) bool {
	return func(err error, tag T) bool {
		for e := err; e != nil; e = errors.Unwrap(e) {
			if ge, ok := e.(*goerr.Error); ok && check(ge, tag) {
				return true
			}
		}
		return false
	}
}

// IsCancelled reports whether err represents a user cancellation.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled) || HasTag(err, TagCancelled)
}

// IsTimeout reports whether err is a context deadline or a network-level
// timeout, regardless of how deep it sits in the wrap chain.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
