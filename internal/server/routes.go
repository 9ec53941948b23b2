// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mnemo Contributors

package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/mnemo-dev/mnemo/internal/conversation"
	mnemoerr "github.com/mnemo-dev/mnemo/pkg/errors"
)

// RegisterServices sets the service dependencies and registers REST routes.
func (s *Server) RegisterServices(svc *Services) {
	if svc.Logger == nil {
		svc.Logger = slog.Default()
	}
	s.services = svc
	s.registerRoutes()
}

func (s *Server) registerRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "post-message",
		Method:      http.MethodPost,
		Path:        "/api/v1/sessions/{id}/messages",
		Summary:     "Append a message to a session",
		Tags:        []string{"sessions"},
	}, s.handlePostMessage)

	huma.Register(s.api, huma.Operation{
		OperationID: "get-session",
		Method:      http.MethodGet,
		Path:        "/api/v1/sessions/{id}",
		Summary:     "Get a session's live state",
		Tags:        []string{"sessions"},
	}, s.handleGetSession)

	huma.Register(s.api, huma.Operation{
		OperationID: "delete-session",
		Method:      http.MethodDelete,
		Path:        "/api/v1/sessions/{id}",
		Summary:     "Delete a session and its checkpoints",
		Tags:        []string{"sessions"},
	}, s.handleDeleteSession)

	huma.Register(s.api, huma.Operation{
		OperationID: "save-checkpoint",
		Method:      http.MethodPost,
		Path:        "/api/v1/sessions/{id}/checkpoints",
		Summary:     "Save a checkpoint of the session's current state",
		Tags:        []string{"checkpoints"},
	}, s.handleSaveCheckpoint)

	huma.Register(s.api, huma.Operation{
		OperationID: "list-checkpoints",
		Method:      http.MethodGet,
		Path:        "/api/v1/sessions/{id}/checkpoints",
		Summary:     "List checkpoint versions for a session",
		Tags:        []string{"checkpoints"},
	}, s.handleListCheckpoints)

	huma.Register(s.api, huma.Operation{
		OperationID: "restore-checkpoint",
		Method:      http.MethodPost,
		Path:        "/api/v1/sessions/{id}/restore",
		Summary:     "Restore a session from a checkpoint",
		Tags:        []string{"checkpoints"},
	}, s.handleRestore)
}

// --- Request/Response types for huma ---

type sessionIDInput struct {
	ID string `path:"id" doc:"Session identifier"`
}

type postMessageInput struct {
	ID   string `path:"id" doc:"Session identifier"`
	Body struct {
		Role    string `json:"role" enum:"user,assistant,system" doc:"Message author role"`
		Content string `json:"content" minLength:"1" doc:"Message text"`
	}
}
type postMessageOutput struct {
	Body StateView
}

type getSessionOutput struct {
	Body StateView
}

type deleteSessionOutput struct {
	Body struct {
		Status string `json:"status" example:"deleted"`
	}
}

type saveCheckpointOutput struct {
	Body struct {
		SessionID string `json:"session_id"`
		Version   int64  `json:"version" doc:"Version the checkpoint captured"`
	}
}

type listCheckpointsOutput struct {
	Body struct {
		SessionID string  `json:"session_id"`
		Versions  []int64 `json:"versions" doc:"Stored checkpoint versions, ascending"`
	}
}

type restoreInput struct {
	ID   string `path:"id" doc:"Session identifier"`
	Body struct {
		Version int64 `json:"version,omitempty" doc:"Checkpoint version to restore; omit or 0 for latest"`
	}
}
type restoreOutput struct {
	Body StateView
}

// --- Handlers ---

func (s *Server) handlePostMessage(ctx context.Context, input *postMessageInput) (*postMessageOutput, error) {
	state, err := s.services.Sessions.Append(ctx, input.ID, conversation.Role(input.Body.Role), input.Body.Content)
	if err != nil {
		return nil, apiError(err)
	}
	return &postMessageOutput{Body: stateView(state)}, nil
}

func (s *Server) handleGetSession(ctx context.Context, input *sessionIDInput) (*getSessionOutput, error) {
	state, err := s.services.Sessions.Snapshot(ctx, input.ID)
	if err != nil {
		return nil, apiError(err)
	}
	return &getSessionOutput{Body: stateView(state)}, nil
}

func (s *Server) handleDeleteSession(ctx context.Context, input *sessionIDInput) (*deleteSessionOutput, error) {
	if err := conversation.ValidateSessionID(input.ID); err != nil {
		return nil, apiError(err)
	}

	s.services.Sessions.Remove(input.ID)
	if err := s.services.Checkpoints.Prune(ctx, input.ID); err != nil {
		return nil, apiError(err)
	}

	out := &deleteSessionOutput{}
	out.Body.Status = "deleted"
	return out, nil
}

func (s *Server) handleSaveCheckpoint(ctx context.Context, input *sessionIDInput) (*saveCheckpointOutput, error) {
	version, err := s.services.Checkpoints.Save(ctx, input.ID)
	if err != nil {
		return nil, apiError(err)
	}

	out := &saveCheckpointOutput{}
	out.Body.SessionID = input.ID
	out.Body.Version = version
	return out, nil
}

func (s *Server) handleListCheckpoints(ctx context.Context, input *sessionIDInput) (*listCheckpointsOutput, error) {
	if err := conversation.ValidateSessionID(input.ID); err != nil {
		return nil, apiError(err)
	}

	versions := []int64{}
	for v, err := range s.services.Checkpoints.Versions(ctx, input.ID) {
		if err != nil {
			return nil, apiError(err)
		}
		versions = append(versions, v)
	}

	out := &listCheckpointsOutput{}
	out.Body.SessionID = input.ID
	out.Body.Versions = versions
	return out, nil
}

func (s *Server) handleRestore(ctx context.Context, input *restoreInput) (*restoreOutput, error) {
	state, err := s.services.Checkpoints.Restore(ctx, input.ID, input.Body.Version)
	if err != nil {
		return nil, apiError(err)
	}
	return &restoreOutput{Body: stateView(state)}, nil
}

// apiError converts a domain error into a huma status error using the
// error code's HTTP mapping.
func apiError(err error) error {
	return huma.NewError(mnemoerr.HTTPStatus(err), err.Error())
}
