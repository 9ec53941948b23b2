// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mnemo Contributors

package errors_test

import (
	stderrors "errors"
	"net/http"
	"testing"

	mnemoerr "github.com/mnemo-dev/mnemo/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodeOf(t *testing.T) {
	err := mnemoerr.New(mnemoerr.CodeCheckpointNotFound, "no checkpoint")
	assert.Equal(t, mnemoerr.CodeCheckpointNotFound, mnemoerr.CodeOf(err))

	assert.Equal(t, mnemoerr.Code(""), mnemoerr.CodeOf(nil))
	assert.Equal(t, mnemoerr.Code(""), mnemoerr.CodeOf(stderrors.New("plain")))
}

func TestWrapPreservesCode(t *testing.T) {
	cause := stderrors.New("disk full")
	err := mnemoerr.Wrap(cause, mnemoerr.CodeCheckpointPersistence, "writing checkpoint",
		mnemoerr.FieldSessionID("s1"), mnemoerr.FieldVersion(3))

	require.Error(t, err)
	assert.Equal(t, mnemoerr.CodeCheckpointPersistence, mnemoerr.CodeOf(err))
	assert.ErrorIs(t, err, cause)

	fields := mnemoerr.FieldsOf(err)
	assert.Equal(t, "s1", fields["session_id"])
	assert.Equal(t, int64(3), fields["version"])
}

func TestWrapNil(t *testing.T) {
	assert.NoError(t, mnemoerr.Wrap(nil, mnemoerr.CodeCheckpointPersistence, "noop"))
	assert.NoError(t, mnemoerr.Wrapf(nil, mnemoerr.CodeCheckpointPersistence, "noop %d", 1))
}

func TestClassifiers(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{"not found", mnemoerr.New(mnemoerr.CodeCheckpointNotFound, "x"), mnemoerr.IsNotFound},
		{"invalid message", mnemoerr.New(mnemoerr.CodeSessionMessageInvalid, "x"), mnemoerr.IsInvalidInput},
		{"invalid session id", mnemoerr.New(mnemoerr.CodeSessionIDInvalid, "x"), mnemoerr.IsInvalidInput},
		{"busy timeout", mnemoerr.New(mnemoerr.CodeSessionBusyTimeout, "x"), mnemoerr.IsBusyTimeout},
		{"persistence", mnemoerr.New(mnemoerr.CodeCheckpointPersistence, "x"), mnemoerr.IsPersistenceFailure},
		{"upstream", mnemoerr.New(mnemoerr.CodeSummarizerUpstreamFailure, "x"), mnemoerr.IsUpstreamFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.check(tt.err))
		})
	}
}

func TestClassifiersRejectOtherCodes(t *testing.T) {
	busy := mnemoerr.New(mnemoerr.CodeSessionBusyTimeout, "x")
	assert.False(t, mnemoerr.IsNotFound(busy))
	assert.False(t, mnemoerr.IsInvalidInput(busy))
	assert.False(t, mnemoerr.IsPersistenceFailure(busy))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{mnemoerr.New(mnemoerr.CodeCheckpointNotFound, "x"), http.StatusNotFound},
		{mnemoerr.New(mnemoerr.CodeSessionMessageInvalid, "x"), http.StatusBadRequest},
		{mnemoerr.New(mnemoerr.CodeSessionBusyTimeout, "x"), http.StatusServiceUnavailable},
		{mnemoerr.New(mnemoerr.CodeCheckpointPersistence, "x"), http.StatusBadGateway},
		{mnemoerr.New(mnemoerr.CodeServerInternalFailure, "x"), http.StatusInternalServerError},
		{stderrors.New("plain"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, mnemoerr.HTTPStatus(tt.err), "for %v", tt.err)
	}
}

func TestHasCode(t *testing.T) {
	err := mnemoerr.Errorf(mnemoerr.CodeSessionBusyTimeout, "session %s busy", "s1")
	assert.True(t, mnemoerr.HasCode(err, mnemoerr.CodeSessionBusyTimeout))
	assert.False(t, mnemoerr.HasCode(err, mnemoerr.CodeCheckpointNotFound))
	assert.False(t, mnemoerr.HasCode(nil, mnemoerr.CodeSessionBusyTimeout))
}
