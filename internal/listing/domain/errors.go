package domain

import (
	"errors"
	"strings"
)

var (
	ErrAuthenticationRequired = errors.New("authentication required")
	ErrForbidden              = errors.New("user not authorized to perform this action")
	ErrNotFound               = errors.New("entity not found")
	ErrListingNotFound        = errors.New("listing not found")
	ErrFavoriteNotFound       = errors.New("favorite not found")
	ErrInvalidInput           = errors.New("invalid input data")
	ErrFileTooLarge           = errors.New("file exceeds maximum size")
	ErrUnsupportedFileType    = errors.New("unsupported file type")
	ErrStorage                = errors.New("object storage error")
	ErrGateway                = errors.New("remote gateway error")
)

// GatewayError is one entry of a gateway error batch.
type GatewayError struct {
	Message   string   `json:"message"`
	ErrorType string   `json:"errorType,omitempty"`
	Path      []string `json:"path,omitempty"`
}

func (e GatewayError) Error() string {
	if e.ErrorType == "" {
		return e.Message
	}
	return e.ErrorType + ": " + e.Message
}

// GatewayErrors is the errors array of a gateway envelope.
type GatewayErrors []GatewayError

func (es GatewayErrors) Error() string {
	if len(es) == 0 {
		return "remote gateway reported an empty error batch"
	}
	msgs := make([]string, 0, len(es))
	for _, e := range es {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "; ")
}

// First returns the first reported error.
func (es GatewayErrors) First() (GatewayError, bool) {
	if len(es) == 0 {
		return GatewayError{}, false
	}
	return es[0], true
}

func (es GatewayErrors) Unwrap() error { return ErrGateway }
