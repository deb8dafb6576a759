// Copyright 2026 The Lair Chat Authors
// SPDX-License-Identifier: Apache-2.0

package chat

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/lairchat/lair-go/lib/netutil"
	"github.com/lairchat/lair-go/lib/secret"
)

// apiBasePath is prepended to every endpoint path.
const apiBasePath = "/api/v1"

// ClientConfig holds configuration for creating a Client.
type ClientConfig struct {
	// ServerURL is the base URL of the Lair Chat server
	// (e.g., "http://127.0.0.1:8082"). The /api/v1 prefix is appended
	// by the client; a ServerURL that already ends in /api/v1 is
	// accepted as-is.
	ServerURL string
	// HTTPClient is used for all requests. If nil, http.DefaultClient is used.
	HTTPClient *http.Client
	// Logger is used for structured logging. If nil, slog.Default() is used.
	Logger *slog.Logger
}

// Client is an unauthenticated Lair Chat client. It holds the server
// URL and HTTP transport, shared across Sessions.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new unauthenticated Lair Chat client.
func NewClient(config ClientConfig) (*Client, error) {
	if config.ServerURL == "" {
		return nil, fmt.Errorf("chat: ServerURL is required")
	}

	// Validate the URL structure. We store the string form (with
	// trailing slash stripped) and build request URLs by direct
	// concatenation — endpoint paths contain no characters that need
	// re-encoding.
	if _, err := url.Parse(config.ServerURL); err != nil {
		return nil, fmt.Errorf("chat: invalid ServerURL %q: %w", config.ServerURL, err)
	}

	baseURL := strings.TrimRight(config.ServerURL, "/")
	if !strings.HasSuffix(baseURL, apiBasePath) {
		baseURL += apiBasePath
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// CloseIdleConnections closes idle HTTP connections in the underlying
// transport's connection pool. Call this after a network disruption to
// force subsequent requests to establish fresh TCP connections instead
// of reusing a poisoned pooled connection.
func (c *Client) CloseIdleConnections() {
	c.httpClient.CloseIdleConnections()
}

// Health checks whether the server is reachable and reports itself
// healthy. This is an unauthenticated endpoint.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	body, err := c.doRequest(ctx, http.MethodGet, "/health", nil, nil)
	if err != nil {
		return nil, fmt.Errorf("chat: health check failed: %w", err)
	}

	var response struct {
		Data HealthStatus `json:"data"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("chat: parsing health response: %w: %w", ErrDecode, err)
	}
	return &response.Data, nil
}

// Register creates a new account. Registration does not log in — call
// Login afterwards to obtain a session.
func (c *Client) Register(ctx context.Context, request RegisterRequest) (*User, error) {
	if request.Username == "" {
		return nil, fmt.Errorf("chat: username is required for registration")
	}
	if request.Email == "" {
		return nil, fmt.Errorf("chat: email is required for registration")
	}
	if request.Password == nil {
		return nil, fmt.Errorf("chat: password is required for registration")
	}

	// Password is converted to string at the JSON serialization
	// boundary. The heap copy is short-lived — it exists only during
	// the HTTP call.
	registerRequest := map[string]any{
		"username": request.Username,
		"email":    request.Email,
		"password": request.Password.String(),
	}

	body, err := c.doRequest(ctx, http.MethodPost, "/auth/register", nil, registerRequest)
	if err != nil {
		return nil, fmt.Errorf("chat: registration failed: %w", err)
	}

	var response struct {
		Data User `json:"data"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("chat: parsing register response: %w: %w", ErrDecode, err)
	}

	c.logger.Info("registered account", "username", request.Username)
	return &response.Data, nil
}

// Login authenticates with a username or email and password, returning
// a UserSession. The password Buffer is read but not closed — the
// caller retains ownership.
func (c *Client) Login(ctx context.Context, identifier string, password *secret.Buffer) (*UserSession, error) {
	if identifier == "" {
		return nil, fmt.Errorf("chat: identifier is required for login")
	}
	if password == nil {
		return nil, fmt.Errorf("chat: password is required for login")
	}

	// Password is converted to string at the JSON serialization boundary.
	loginRequest := map[string]any{
		"identifier": identifier,
		"password":   password.String(),
	}

	body, err := c.doRequest(ctx, http.MethodPost, "/auth/login", nil, loginRequest)
	if err != nil {
		return nil, fmt.Errorf("chat: login failed: %w", err)
	}

	// The login payload sits at the top level of the response, not
	// inside the data wrapper.
	var authResponse AuthResponse
	if err := json.Unmarshal(body, &authResponse); err != nil {
		return nil, fmt.Errorf("chat: parsing login response: %w: %w", ErrDecode, err)
	}
	if authResponse.AccessToken == "" {
		return nil, fmt.Errorf("chat: login response missing access token: %w", ErrDecode)
	}

	tokenBuffer, err := secret.NewFromBytes([]byte(authResponse.AccessToken))
	if err != nil {
		return nil, fmt.Errorf("chat: protecting access token: %w", err)
	}

	c.logger.Info("logged in",
		"user_id", authResponse.User.ID,
		"username", authResponse.User.Username,
	)

	return &UserSession{
		client:      c,
		accessToken: tokenBuffer,
		user:        authResponse.User,
	}, nil
}

// SessionFromToken creates a UserSession from an existing access token
// string. The token is moved into mmap-backed memory (locked against
// swap, excluded from core dumps). The original string remains on the
// heap briefly — it will be collected by the GC, but the mmap buffer
// is the durable copy.
//
// This does NOT validate the token — the first API call will fail if
// invalid. The caller must call Close on the returned session.
func (c *Client) SessionFromToken(user User, accessToken string) (*UserSession, error) {
	tokenBuffer, err := secret.NewFromBytes([]byte(accessToken))
	if err != nil {
		return nil, fmt.Errorf("chat: protecting access token: %w", err)
	}
	return &UserSession{
		client:      c,
		accessToken: tokenBuffer,
		user:        user,
	}, nil
}

// doRequest performs an HTTP request against the API and returns the
// response body. On 2xx with a successful envelope, returns the body.
// On 4xx/5xx, or on a 2xx envelope with success=false, returns a
// *APIError. accessToken may be nil for unauthenticated endpoints.
// query may be nil for endpoints without query parameters.
func (c *Client) doRequest(ctx context.Context, method, path string, accessToken *secret.Buffer, requestBody any, query ...url.Values) ([]byte, error) {
	requestURL := c.baseURL + path
	if len(query) > 0 && query[0] != nil {
		requestURL += "?" + query[0].Encode()
	}

	var bodyReader io.Reader
	if requestBody != nil {
		encoded, err := json.Marshal(requestBody)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
		bodyReader = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, requestURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	if requestBody != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if accessToken != nil {
		request.Header.Set("Authorization", "Bearer "+accessToken.String())
	}
	if requestID := newRequestID(); requestID != "" {
		request.Header.Set("X-Request-ID", requestID)
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("request to %s %s failed: %w", method, path, err)
	}
	defer response.Body.Close()

	responseBody, err := netutil.ReadResponse(response.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if response.StatusCode >= 200 && response.StatusCode < 300 {
		// Even 2xx responses carry the envelope; an explicit
		// success=false is an API-level failure.
		var env envelope
		if jsonErr := json.Unmarshal(responseBody, &env); jsonErr != nil {
			return nil, fmt.Errorf("invalid response from %s %s: %w: %w", method, path, ErrDecode, jsonErr)
		}
		if env.failed() {
			return responseBody, apiErrorFromEnvelope(&env, response.StatusCode)
		}
		return responseBody, nil
	}

	// All error responses share the envelope shape.
	var env envelope
	if jsonErr := json.Unmarshal(responseBody, &env); jsonErr != nil {
		// Server returned a non-JSON error. Fail loud with the
		// truncated raw body for diagnostics.
		return nil, fmt.Errorf("unexpected %d response from %s %s: %s",
			response.StatusCode, method, path, truncateBody(responseBody))
	}
	return responseBody, apiErrorFromEnvelope(&env, response.StatusCode)
}

// apiErrorFromEnvelope converts a failed envelope into an *APIError.
func apiErrorFromEnvelope(env *envelope, statusCode int) *APIError {
	apiErr := &APIError{StatusCode: statusCode}
	if env.Error != nil {
		apiErr.Code = env.Error.Code
		apiErr.Message = env.Error.Message
		apiErr.RequestID = env.Error.RequestID
	}
	if apiErr.Message == "" {
		apiErr.Message = "unknown API error"
	}
	return apiErr
}

// newRequestID creates a random 16-byte hex string for correlating
// client requests with server-side logs. Returns "" if the system
// entropy source fails; the header is simply omitted in that case.
func newRequestID() string {
	var buffer [16]byte
	if _, err := rand.Read(buffer[:]); err != nil {
		return ""
	}
	return hex.EncodeToString(buffer[:])
}

// maxDiagnosticBody caps raw error bodies quoted in error messages.
const maxDiagnosticBody = 512

func truncateBody(body []byte) string {
	if len(body) > maxDiagnosticBody {
		return string(body[:maxDiagnosticBody]) + "...(truncated)"
	}
	return string(body)
}
