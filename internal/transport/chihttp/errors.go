package chihttp

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/clarusedu/studybuddy/internal/domain"
)

// Machine-readable error codes returned alongside HTTP statuses.
const (
	codeBadRequest        = "bad_request"
	codeValidationFailed  = "validation_failed"
	codeEmailTaken        = "email_taken"
	codeIncorrectEmail    = "incorrect_email"
	codeIncorrectPassword = "incorrect_password"
	codeUnsupportedFormat = "unsupported_format"
	codeEmptyText         = "empty_text"
	codeNotFound          = "not_found"
	codeUpstreamError     = "upstream_error"
	codeInternalError     = "internal_error"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without
// exposing internals.
func safeDomainMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrNoMessages):
		return "Messages are required"
	case errors.Is(err, domain.ErrEmailTaken):
		return "Email already exists"
	case errors.Is(err, domain.ErrIncorrectEmail):
		return "Incorrect email"
	case errors.Is(err, domain.ErrIncorrectPassword):
		return "Incorrect password"
	}

	sentinels := []error{
		domain.ErrUnsupportedFormat,
		domain.ErrEmptyText,
		domain.ErrNotFound,
		domain.ErrUpstream,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}
