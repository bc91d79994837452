// Package http provides the JSON API over the reporting engine and the
// storage layer.
//
// Every response uses the uniform envelope {data, error}: exactly one of the
// two fields is non-null. Internal failures never cross the boundary as
// anything but an envelope with an error code.
package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"finbook/internal/core"
)

type envelope struct {
	Data  any       `json:"data"`
	Error *apiError `json:"error"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, env envelope) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeRaw(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{Data: data})
}

// writeError maps domain errors onto HTTP statuses and stable error codes.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	code := "internal"

	var parseErr *time.ParseError
	switch {
	case errors.Is(err, core.ErrInvalidPeriod):
		status, code = http.StatusBadRequest, "invalid_period"
	case errors.Is(err, core.ErrNotFound):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidFrequency),
		errors.Is(err, core.ErrInvalidType),
		errors.Is(err, core.ErrEmptyName),
		errors.Is(err, core.ErrEmptyFilter),
		errors.Is(err, errBadBody),
		errors.As(err, &parseErr):
		status, code = http.StatusBadRequest, "invalid_input"
	}

	msg := err.Error()
	if status == http.StatusInternalServerError {
		// Do not leak internals to clients; the full error is in the log.
		msg = "internal error"
	}
	writeJSON(w, status, envelope{Error: &apiError{Code: code, Message: msg}})
}
