package session

import (
	"errors"
	"net/http"

	"github.com/karobar-pay/karobar_pay/internal/api"
)

// User-facing signin failure messages, one per error class.
const (
	MsgInvalidCredentials = "Invalid email or password."
	MsgBadRequest         = "The sign-in request was malformed. Please check your input."
	MsgServerFault        = "Something went wrong on our side. Please try again later."
	MsgNetworkFailure     = "Unable to reach the server. Check your connection and try again."
)

// LoginError is a classified signin failure carrying the message shown
// to the operator.
type LoginError struct {
	Message string
	cause   error
}

// Error implements the error interface.
func (e *LoginError) Error() string {
	return e.Message
}

// Unwrap exposes the underlying cause.
func (e *LoginError) Unwrap() error {
	return e.cause
}

// classifyLoginError maps a transport or HTTP failure onto the error
// taxonomy: network, invalid credentials, malformed request, server
// fault, or a server-supplied message.
func classifyLoginError(err error) *LoginError {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Status {
		case http.StatusUnauthorized:
			return &LoginError{Message: MsgInvalidCredentials, cause: err}
		case http.StatusBadRequest:
			return &LoginError{Message: MsgBadRequest, cause: err}
		case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable:
			return &LoginError{Message: MsgServerFault, cause: err}
		default:
			if apiErr.Message != "" {
				return &LoginError{Message: apiErr.Message, cause: err}
			}
			return &LoginError{Message: MsgServerFault, cause: err}
		}
	}
	return &LoginError{Message: MsgNetworkFailure, cause: err}
}
