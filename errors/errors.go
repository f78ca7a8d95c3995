// Package errors provides error handling for git1file.
//
// It re-exports github.com/cockroachdb/errors so every package wraps and
// inspects errors the same way, and adds the sentinels and the service
// error type used by the ingestion client and the controller.
//
//	if err := client.Ingest(ctx, opts); err != nil {
//	    return errors.Wrap(err, "ingest failed")
//	}
//
//	if errors.Is(err, errors.ErrBadRequest) {
//	    // hide the stats panel
//	}
package errors

import (
	"fmt"

	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
	Mark         = crdb.Mark
)

// User-facing messages and details
var (
	WithHint    = crdb.WithHint
	WithHintf   = crdb.WithHintf
	WithDetail  = crdb.WithDetail
	WithDetailf = crdb.WithDetailf
)

// Error inspection
var (
	Is            = crdb.Is
	IsAny         = crdb.IsAny
	As            = crdb.As
	Unwrap        = crdb.Unwrap
	UnwrapAll     = crdb.UnwrapAll
	GetAllHints   = crdb.GetAllHints
	GetAllDetails = crdb.GetAllDetails
	FlattenHints  = crdb.FlattenHints
)

// Sentinels. Wrap them to add context; check them with Is.
var (
	// ErrBadRequest marks a 400 from the ingestion service (malformed or
	// incomplete source). The stats path suppresses it silently.
	ErrBadRequest = New("bad request")

	// ErrBusy is returned when a submission is attempted while another is
	// still loading.
	ErrBusy = New("submission already in progress")

	// ErrNoResults is returned by output actions when nothing has been
	// ingested yet.
	ErrNoResults = New("no output available")

	// ErrInvalidRequest indicates options that cannot be sent at all.
	ErrInvalidRequest = New("invalid request")

	// ErrServiceUnavailable indicates the ingestion service could not be reached.
	ErrServiceUnavailable = New("service unavailable")
)

// ServiceError is a non-2xx response from the ingestion service.
// Detail holds the service's "detail" field when it sent one.
type ServiceError struct {
	Status int
	Detail string
}

func (e *ServiceError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("server responded with status %d", e.Status)
}

// Is lets errors.Is(err, ErrBadRequest) match a 400 ServiceError.
func (e *ServiceError) Is(target error) bool {
	return target == ErrBadRequest && e.Status == 400
}

// NewServiceError builds a ServiceError for the given status and detail.
func NewServiceError(status int, detail string) error {
	return WithStack(&ServiceError{Status: status, Detail: detail})
}

// IsBadRequest reports whether err is or wraps a 400 from the service.
func IsBadRequest(err error) bool {
	return err != nil && Is(err, ErrBadRequest)
}

// UserMessage returns the text shown to the user for err.
// Service errors surface their detail (or synthesized status message)
// verbatim, without any wrapping context added on the way up.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var svc *ServiceError
	if As(err, &svc) {
		return svc.Error()
	}
	return err.Error()
}
