// Package faults provides the typed errors used across the pipeline.
//
// Every failure that crosses a package boundary carries a Kind so the
// orchestrator can decide between retry, per-item abort and full-run abort
// without string matching.
package faults

import (
	stderrs "errors"
	"fmt"
)

// Kind classifies a pipeline failure.
type Kind uint8

const (
	// KindUnknown is for unclassified errors.
	KindUnknown Kind = iota

	// KindProvider is a transient external-provider failure, absorbed by
	// fallback chains and backoff.
	KindProvider

	// KindValidation is content rejected by the safety gate, the dedup
	// check or the response decoder; triggers another generation attempt.
	KindValidation

	// KindRender is a media rendering failure, fatal for the current item.
	KindRender

	// KindUpload is a publish failure, retried a small bounded number of
	// times before the item is marked failed.
	KindUpload

	// KindPersistence is a state-file failure, fatal for the whole run.
	KindPersistence
)

// String returns the stable label used in logs and run reports.
func (k Kind) String() string {
	switch k {
	case KindProvider:
		return "provider"
	case KindValidation:
		return "validation"
	case KindRender:
		return "render"
	case KindUpload:
		return "upload"
	case KindPersistence:
		return "persistence"
	default:
		return "unknown"
	}
}

// Error is the structured error type with wrapping.
type Error struct {
	kind Kind
	msg  string
	orig error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.orig != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.orig)
	}
	return e.msg
}

// Unwrap returns the wrapped cause, if any.
func (e *Error) Unwrap() error { return e.orig }

// Kind returns the error kind.
func (e *Error) Kind() Kind { return e.kind }

// New returns a new *Error with the given kind and message.
func New(kind Kind, msg string) error { return &Error{kind: kind, msg: msg} }

// Newf returns a new *Error with kind and formatted message.
func Newf(kind Kind, format string, a ...any) error {
	return &Error{kind: kind, msg: fmt.Sprintf(format, a...)}
}

// Wrap returns a new *Error that wraps orig with kind and message.
func Wrap(orig error, kind Kind, msg string) error {
	return &Error{kind: kind, msg: msg, orig: orig}
}

// Wrapf returns a new *Error that wraps orig with kind and formatted message.
func Wrapf(orig error, kind Kind, format string, a ...any) error {
	return &Error{kind: kind, msg: fmt.Sprintf(format, a...), orig: orig}
}

// As unwraps and returns (*Error, true) if err is one of ours.
func As(err error) (*Error, bool) {
	var e *Error
	if stderrs.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf extracts a Kind from any error, defaulting to Unknown.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.kind
	}
	return KindUnknown
}

// IsKind reports whether err has the given kind.
func IsKind(err error, kind Kind) bool { return KindOf(err) == kind }
