package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/schema"
)

// codedError carries the HTTP status a handler wants the client to see.
type codedError struct {
	code int
	err  error
}

func (e *codedError) Error() string { return e.err.Error() }
func (e *codedError) Unwrap() error { return e.err }

func CodedError(code int, err error) error {
	return &codedError{code: code, err: err}
}

func CodedErrorf(code int, format string, args ...any) error {
	return &codedError{code: code, err: fmt.Errorf(format, args...)}
}

// statusFor maps a handler error to a response code, treating anything not
// coded as internal.
func statusFor(err error) int {
	var cerr *codedError
	if errors.As(err, &cerr) {
		return cerr.code
	}
	return http.StatusInternalServerError
}

func ParseRequest[T any](r *http.Request) (T, error) {
	var data T
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		slog.Error("error parsing request body", "error", err)
		return data, CodedErrorf(http.StatusBadRequest, "unable to parse request body")
	}
	return data, nil
}

var queryDecoder = func() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	return d
}()

func ParseRequestQueryParams[T any](r *http.Request) (T, error) {
	var data T
	if err := r.ParseForm(); err != nil {
		return data, CodedErrorf(http.StatusBadRequest, "unable to parse request query params")
	}
	if err := queryDecoder.Decode(&data, r.Form); err != nil {
		slog.Error("error decoding query params", "error", err)
		return data, CodedErrorf(http.StatusBadRequest, "unable to parse request query params")
	}
	return data, nil
}

// RestHandler adapts a value-or-error handler to http.HandlerFunc, encoding
// successes as JSON and mapping errors through statusFor.
func RestHandler(handler func(r *http.Request) (any, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := handler(r)
		if err != nil {
			code := statusFor(err)
			if code == http.StatusInternalServerError {
				slog.Error("internal error from endpoint", "path", r.URL.Path, "error", err)
			}
			http.Error(w, err.Error(), code)
			return
		}

		if res == nil {
			res = struct{}{}
		}
		WriteJsonResponse(w, res)
	}
}

func WriteJsonResponse(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// headers already sent, nothing left to tell the client
		slog.Error("error serializing response body", "error", err)
	}
}

func URLParamUUID(r *http.Request, key string) (uuid.UUID, error) {
	param := chi.URLParam(r, key)
	if param == "" {
		return uuid.Nil, CodedErrorf(http.StatusBadRequest, "missing {%v} url parameter", key)
	}

	id, err := uuid.Parse(param)
	if err != nil {
		return uuid.Nil, CodedErrorf(http.StatusBadRequest, "invalid uuid '%v' url parameter provided: %w", key, err)
	}
	return id, nil
}
