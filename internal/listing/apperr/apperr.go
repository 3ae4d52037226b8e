// Package apperr turns heterogeneous failures into one stable taxonomy.
// Every public usecase method returns *Error (or nil), never a raw transport error.
package apperr

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/Abdurahmanit/GroupProject/rental-listing/internal/listing/domain"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type Kind string

const (
	KindAuthenticationRequired Kind = "AuthenticationRequired"
	KindUnauthorized           Kind = "Unauthorized"
	KindValidationFailed       Kind = "ValidationFailed"
	KindRemoteOperationFailed  Kind = "RemoteOperationFailed"
	KindNotFound               Kind = "NotFound"
	KindUnknown                Kind = "Unknown"
)

// Error is a normalized failure. Op names the public operation that failed.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error by kind, so errors.Is(err, apperr.NotFound) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Op == "" && t.Message == "" && t.Err == nil && t.Kind == e.Kind
}

// GRPCStatus lets grpc/status render the error with a matching code.
func (e *Error) GRPCStatus() *status.Status {
	return status.New(kindToCode[e.Kind], e.Error())
}

// Kind-only sentinels for errors.Is.
var (
	AuthenticationRequired = &Error{Kind: KindAuthenticationRequired}
	Unauthorized           = &Error{Kind: KindUnauthorized}
	ValidationFailed       = &Error{Kind: KindValidationFailed}
	RemoteOperationFailed  = &Error{Kind: KindRemoteOperationFailed}
	NotFound               = &Error{Kind: KindNotFound}
	Unknown                = &Error{Kind: KindUnknown}
)

var kindToCode = map[Kind]codes.Code{
	KindAuthenticationRequired: codes.Unauthenticated,
	KindUnauthorized:           codes.PermissionDenied,
	KindValidationFailed:       codes.InvalidArgument,
	KindRemoteOperationFailed:  codes.Unavailable,
	KindNotFound:               codes.NotFound,
	KindUnknown:                codes.Unknown,
}

// KindOf reports the kind of err, classifying it first if needed.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return classify(err).Kind
}

// Normalize classifies err and tags it with op. A nil err stays nil; an
// already normalized error keeps its kind and original op.
func Normalize(op string, err error) error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		if ae.Op == "" {
			return &Error{Kind: ae.Kind, Op: op, Message: ae.Message, Err: ae.Err}
		}
		return ae
	}
	n := classify(err)
	n.Op = op
	return n
}

func classify(err error) *Error {
	var batch domain.GatewayErrors
	if errors.As(err, &batch) {
		first, ok := batch.First()
		if !ok {
			return &Error{Kind: KindRemoteOperationFailed, Message: batch.Error(), Err: err}
		}
		return &Error{Kind: gatewayKind(first), Message: first.Message, Err: err}
	}
	var single domain.GatewayError
	if errors.As(err, &single) {
		return &Error{Kind: gatewayKind(single), Message: single.Message, Err: err}
	}

	switch {
	case errors.Is(err, domain.ErrAuthenticationRequired):
		return &Error{Kind: KindAuthenticationRequired, Message: "sign in to continue", Err: err}
	case errors.Is(err, domain.ErrForbidden):
		return &Error{Kind: KindUnauthorized, Message: "only the listing owner can do this", Err: err}
	case errors.Is(err, domain.ErrFileTooLarge),
		errors.Is(err, domain.ErrUnsupportedFileType),
		errors.Is(err, domain.ErrInvalidInput):
		return &Error{Kind: KindValidationFailed, Message: err.Error(), Err: err}
	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrListingNotFound),
		errors.Is(err, domain.ErrFavoriteNotFound):
		return &Error{Kind: KindNotFound, Message: err.Error(), Err: err}
	case errors.Is(err, domain.ErrStorage), errors.Is(err, domain.ErrGateway):
		return &Error{Kind: KindRemoteOperationFailed, Message: err.Error(), Err: err}
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return &Error{Kind: KindRemoteOperationFailed, Message: "remote call did not complete: " + err.Error(), Err: err}
	}

	if st, ok := status.FromError(err); ok {
		return fromStatus(st, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return &Error{Kind: KindRemoteOperationFailed, Message: "network error: " + netErr.Error(), Err: err}
	}

	return &Error{Kind: KindUnknown, Message: err.Error(), Err: err}
}

func gatewayKind(e domain.GatewayError) Kind {
	switch e.ErrorType {
	case "Unauthorized", "UnauthorizedException":
		return KindUnauthorized
	case "Unauthenticated":
		return KindAuthenticationRequired
	case "NotFound":
		return KindNotFound
	case "ValidationError":
		return KindValidationFailed
	default:
		return KindRemoteOperationFailed
	}
}

func fromStatus(st *status.Status, err error) *Error {
	kind := KindUnknown
	switch st.Code() {
	case codes.Unauthenticated:
		kind = KindAuthenticationRequired
	case codes.PermissionDenied:
		kind = KindUnauthorized
	case codes.NotFound:
		kind = KindNotFound
	case codes.InvalidArgument, codes.FailedPrecondition, codes.OutOfRange:
		kind = KindValidationFailed
	case codes.Unavailable, codes.DeadlineExceeded, codes.Aborted, codes.Internal, codes.ResourceExhausted:
		kind = KindRemoteOperationFailed
	}
	return &Error{Kind: kind, Message: st.Message(), Err: err}
}
