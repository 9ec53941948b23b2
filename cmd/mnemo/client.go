// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mnemo Contributors

package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/spf13/viper"

	mnemoerr "github.com/mnemo-dev/mnemo/pkg/errors"
)

// ErrServerNotRunning indicates the server refused the connection.
var ErrServerNotRunning = errors.New("mnemo server is not running (connection refused)")

// defaultHTTPClient is the package-level HTTP client used by client
// commands. Overridden in tests via httptest.
var defaultHTTPClient = &http.Client{
	Timeout: 10 * time.Second,
}

// engineClient provides HTTP access to a running mnemo server.
type engineClient struct {
	baseURL string
	http    *http.Client
}

// newEngineClient creates a client targeting the configured server address.
func newEngineClient() *engineClient {
	return &engineClient{
		baseURL: "http://" + viper.GetString("server.listen"),
		http:    defaultHTTPClient,
	}
}

// getJSON performs a GET request and decodes the JSON response into dest.
func (c *engineClient) getJSON(path string, dest any) error {
	req, err := http.NewRequest(http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return mnemoerr.Errorf(mnemoerr.CodeCLIRequestFailure, "building request: %w", err)
	}
	return c.do(req, dest)
}

// postJSON performs a POST request with a JSON body and decodes the JSON
// response into dest. A nil body sends an empty JSON object.
func (c *engineClient) postJSON(path string, body, dest any) error {
	if body == nil {
		body = struct{}{}
	}
	data, err := json.Marshal(body)
	if err != nil {
		return mnemoerr.Errorf(mnemoerr.CodeCLIRequestFailure, "encoding request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return mnemoerr.Errorf(mnemoerr.CodeCLIRequestFailure, "building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, dest)
}

// deleteJSON performs a DELETE request and decodes the JSON response into
// dest.
func (c *engineClient) deleteJSON(path string, dest any) error {
	req, err := http.NewRequest(http.MethodDelete, c.baseURL+path, nil)
	if err != nil {
		return mnemoerr.Errorf(mnemoerr.CodeCLIRequestFailure, "building request: %w", err)
	}
	return c.do(req, dest)
}

func (c *engineClient) do(req *http.Request, dest any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		if isDialError(err) {
			return ErrServerNotRunning
		}
		return mnemoerr.Errorf(mnemoerr.CodeCLIRequestFailure, "request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return mnemoerr.Errorf(mnemoerr.CodeCLIRequestFailure,
			"server returned status %d: %s", resp.StatusCode, string(body))
	}

	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return mnemoerr.Errorf(mnemoerr.CodeCLIResponseInvalid, "invalid response: %w", err)
	}
	return nil
}

// isDialError returns true if err is a net dial error (connection refused,
// etc.).
func isDialError(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return opErr.Op == "dial"
	}
	return false
}

// sessionPath builds the API path for a session resource.
func sessionPath(sessionID, suffix string) string {
	return fmt.Sprintf("/api/v1/sessions/%s%s", sessionID, suffix)
}
