// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mnemo Contributors

// Package errors defines the typed error taxonomy used across mnemo.
// Every failure that crosses a package boundary carries a Code; callers
// classify errors by code reason rather than by string matching.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/samber/oops"
)

// Code is the machine-readable identifier for an error.
// Codes follow area.entity.verb.reason; the trailing reason segment
// drives the Is* classifiers below.
type Code string

const (
	CodeSessionIDInvalid        Code = "session.id.invalid_input"
	CodeSessionNotFound         Code = "session.get.not_found"
	CodeSessionMessageInvalid   Code = "session.message.append.invalid_input"
	CodeSessionBusyTimeout      Code = "session.lock.acquire.busy_timeout"
	CodeSessionStateCorrupt     Code = "session.state.decode.invalid_format"
	CodeCheckpointNotFound      Code = "checkpoint.get.not_found"
	CodeCheckpointPersistence   Code = "checkpoint.save.persistence_failure"
	CodeCheckpointListFailure   Code = "checkpoint.list.persistence_failure"
	CodeCheckpointPruneFailure  Code = "checkpoint.prune.persistence_failure"
	CodeCheckpointBackendUnsupported Code = "checkpoint.backend.unsupported"

	CodeSummarizerUpstreamFailure Code = "summarizer.upstream.failure"
	CodeSummarizerConfigInvalid   Code = "summarizer.config.invalid_value"

	CodeSecretInvalidInput   Code = "secret.input.invalid_input"
	CodeSecretNotFound       Code = "secret.get.not_found"
	CodeSecretStoreFailure   Code = "secret.store.failure"
	CodeSecretDeleteFailure  Code = "secret.delete.failure"
	CodeSecretListFailure    Code = "secret.list.failure"
	CodeSecretResolveFailure Code = "secret.resolve.failure"

	CodeConfigLoadReadFailure      Code = "config.load.read.failure"
	CodeConfigValidateInvalidValue Code = "config.validate.invalid_value"

	CodeServerRequestInvalid  Code = "server.request.invalid_input"
	CodeServerStartFailure    Code = "server.start.failure"
	CodeServerInternalFailure Code = "server.internal.failure"

	CodeCLIServerNotRunning Code = "cli.server.not_running"
	CodeCLIRequestFailure   Code = "cli.request.failure"
	CodeCLIResponseInvalid  Code = "cli.response.invalid_format"
	CodeCLISetupFailure     Code = "cli.setup.failure"
	CodeCLIInputInvalid     Code = "cli.input.invalid_input"
)

// Attr is a structured key/value context attached to an error.
type Attr struct {
	Key   string
	Value any
}

// Field creates a structured error field.
func Field(key string, value any) Attr {
	return Attr{Key: key, Value: value}
}

func FieldSessionID(value string) Attr {
	return Field("session_id", value)
}

func FieldVersion(value int64) Attr {
	return Field("version", value)
}

func FieldBackend(value string) Attr {
	return Field("backend", value)
}

func FieldProvider(value string) Attr {
	return Field("provider", value)
}

func New(code Code, msg string, fields ...Attr) error {
	return oops.Code(code).With(flatten(fields)...).New(msg)
}

func Errorf(code Code, format string, args ...any) error {
	return oops.Code(code).Errorf(format, args...)
}

func Wrap(err error, code Code, msg string, fields ...Attr) error {
	if err == nil {
		return nil
	}

	return oops.Code(code).With(flatten(fields)...).Wrapf(err, "%s", msg)
}

func Wrapf(err error, code Code, format string, args ...any) error {
	if err == nil {
		return nil
	}

	return oops.Code(code).Wrapf(err, format, args...)
}

// CodeOf extracts the Code from an error chain, or "" if none is present.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}

	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return ""
	}

	if code, ok := oopsErr.Code().(Code); ok {
		return code
	}

	if code, ok := oopsErr.Code().(string); ok {
		return Code(code)
	}

	return Code(fmt.Sprintf("%v", oopsErr.Code()))
}

// FieldsOf returns the structured context attached to an error, if any.
func FieldsOf(err error) map[string]any {
	if err == nil {
		return nil
	}

	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return nil
	}

	return oopsErr.Context()
}

func HasCode(err error, code Code) bool {
	if err == nil {
		return false
	}
	return CodeOf(err) == code
}

func IsNotFound(err error) bool {
	return reason(CodeOf(err)) == "not_found"
}

func IsInvalidInput(err error) bool {
	r := reason(CodeOf(err))
	return r == "invalid_input" || r == "invalid_value" || r == "invalid_format"
}

func IsBusyTimeout(err error) bool {
	return reason(CodeOf(err)) == "busy_timeout"
}

func IsPersistenceFailure(err error) bool {
	return reason(CodeOf(err)) == "persistence_failure"
}

func IsUpstreamFailure(err error) bool {
	code := CodeOf(err)
	return strings.Contains(string(code), "upstream") && reason(code) == "failure"
}

// HTTPStatus maps an error to the HTTP status code the server surface
// should return for it. SessionBusyTimeout maps to 503 with retry
// semantics: the session exists but its latch could not be acquired in
// time, and the caller should back off and retry.
func HTTPStatus(err error) int {
	switch {
	case IsNotFound(err):
		return http.StatusNotFound
	case IsInvalidInput(err):
		return http.StatusBadRequest
	case IsBusyTimeout(err):
		return http.StatusServiceUnavailable
	case IsPersistenceFailure(err):
		return http.StatusBadGateway
	case IsUpstreamFailure(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func Join(errs ...error) error {
	return oops.Code(CodeServerInternalFailure).Wrap(stderrors.Join(errs...))
}

func flatten(fields []Attr) []any {
	pairs := make([]any, 0, len(fields)*2)
	for _, field := range fields {
		if field.Key == "" {
			continue
		}
		pairs = append(pairs, field.Key, field.Value)
	}
	return pairs
}

func reason(code Code) string {
	if code == "" {
		return ""
	}

	raw := string(code)
	idx := strings.LastIndex(raw, ".")
	if idx == -1 || idx == len(raw)-1 {
		return raw
	}
	return raw[idx+1:]
}
