package provider

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/anthropics/anthropic-sdk-go"
)

// StatusError is a non-200 reply from an HTTP provider.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("provider: status %d", e.StatusCode)
	}
	return fmt.Sprintf("provider: status %d: %s", e.StatusCode, e.Body)
}

// Kind classifies a reasoning-service failure.
type Kind int

const (
	KindOther Kind = iota
	KindAuth
	KindRateLimit
	KindConnectivity
	KindTimeout
)

func (k Kind) String() string {
	switch k {
	case KindAuth:
		return "auth"
	case KindRateLimit:
		return "rate_limit"
	case KindConnectivity:
		return "connectivity"
	case KindTimeout:
		return "timeout"
	default:
		return "other"
	}
}

// Reply is the user-facing message for a failure of this kind.
func (k Kind) Reply() string {
	switch k {
	case KindAuth:
		return "I couldn't sign in to my reasoning service. Please check the API key in your configuration."
	case KindRateLimit:
		return "I'm being rate limited right now. Please try again in a moment."
	case KindConnectivity:
		return "I can't reach my reasoning service at the moment. Please check your connection."
	case KindTimeout:
		return "My reasoning service took too long to answer. Please try again."
	default:
		return "Sorry, something went wrong while I was thinking about that."
	}
}

// Classify maps a transport error to a Kind.
func Classify(err error) Kind {
	if err == nil {
		return KindOther
	}
	if errors.Is(err, ErrMissingAPIKey) {
		return KindAuth
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}

	status := 0
	var apiErr *anthropic.Error
	var stErr *StatusError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.StatusCode
	case errors.As(err, &stErr):
		status = stErr.StatusCode
	}
	if status != 0 {
		switch {
		case status == http.StatusUnauthorized || status == http.StatusForbidden:
			return KindAuth
		case status == http.StatusTooManyRequests:
			return KindRateLimit
		case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
			return KindTimeout
		case status >= 500:
			return KindConnectivity
		default:
			return KindOther
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return KindTimeout
		}
		return KindConnectivity
	}
	return KindOther
}
