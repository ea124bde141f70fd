package powerbi

import (
	"errors"
	"fmt"
	"net/http"
)

var ErrConfigInvalid = errors.New("power bi configuration invalid")

type Kind int

const (
	TokenAcquisitionFailed Kind = iota + 1
	EmbedTokenFailed
)

func (k Kind) String() string {
	switch k {
	case TokenAcquisitionFailed:
		return "token_acquisition_failed"
	case EmbedTokenFailed:
		return "embed_token_failed"
	default:
		return "unknown"
	}
}

// ExchangeError reports a failed remote step. Status is the upstream HTTP
// status, or zero when no response was received.
type ExchangeError struct {
	Kind   Kind
	Status int
	Err    error
}

func (e *ExchangeError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: upstream status %d: %v", e.Kind, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *ExchangeError) Unwrap() error {
	return e.Err
}

// HTTPStatus is the status to report for the failure; 500 when the upstream
// gave none.
func (e *ExchangeError) HTTPStatus() int {
	if e.Status == 0 {
		return http.StatusInternalServerError
	}
	return e.Status
}
