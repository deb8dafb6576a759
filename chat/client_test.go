// Copyright 2026 The Lair Chat Authors
// SPDX-License-Identifier: Apache-2.0

package chat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lairchat/lair-go/lib/secret"
)

// testBuffer creates a secret.Buffer from a string for testing. The
// buffer is automatically closed when the test completes.
func testBuffer(t *testing.T, value string) *secret.Buffer {
	t.Helper()
	buffer, err := secret.NewFromString(value)
	if err != nil {
		t.Fatalf("creating test buffer: %v", err)
	}
	t.Cleanup(func() { buffer.Close() })
	return buffer
}

// writeEnvelope writes a successful {success, data} response.
func writeEnvelope(t *testing.T, writer http.ResponseWriter, data any) {
	t.Helper()
	writer.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(writer).Encode(map[string]any{
		"success": true,
		"data":    data,
	}); err != nil {
		t.Fatalf("encoding response: %v", err)
	}
}

// writeAPIError writes a failure envelope with the given status code.
func writeAPIError(t *testing.T, writer http.ResponseWriter, status int, code, message string) {
	t.Helper()
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(status)
	if err := json.NewEncoder(writer).Encode(map[string]any{
		"success": false,
		"error":   map[string]any{"code": code, "message": message},
	}); err != nil {
		t.Fatalf("encoding error response: %v", err)
	}
}

func TestNewClient(t *testing.T) {
	t.Run("valid URL", func(t *testing.T) {
		client, err := NewClient(ClientConfig{ServerURL: "http://127.0.0.1:8082"})
		if err != nil {
			t.Fatalf("NewClient failed: %v", err)
		}
		if client.baseURL != "http://127.0.0.1:8082/api/v1" {
			t.Errorf("baseURL = %q, want API prefix appended", client.baseURL)
		}
	})

	t.Run("URL already carrying the API prefix", func(t *testing.T) {
		client, err := NewClient(ClientConfig{ServerURL: "http://127.0.0.1:8082/api/v1"})
		if err != nil {
			t.Fatalf("NewClient failed: %v", err)
		}
		if client.baseURL != "http://127.0.0.1:8082/api/v1" {
			t.Errorf("baseURL = %q, prefix must not be doubled", client.baseURL)
		}
	})

	t.Run("empty URL", func(t *testing.T) {
		if _, err := NewClient(ClientConfig{}); err == nil {
			t.Fatal("expected error for empty URL")
		}
	})

	t.Run("invalid URL", func(t *testing.T) {
		if _, err := NewClient(ClientConfig{ServerURL: "://invalid"}); err == nil {
			t.Fatal("expected error for invalid URL")
		}
	})
}

func TestHealth(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if request.URL.Path != "/api/v1/health" {
				t.Errorf("unexpected path: %s", request.URL.Path)
			}
			writeEnvelope(t, writer, HealthStatus{Status: "ok", Version: "0.9.2"})
		}))
		defer server.Close()

		client, err := NewClient(ClientConfig{ServerURL: server.URL})
		if err != nil {
			t.Fatalf("NewClient failed: %v", err)
		}

		health, err := client.Health(context.Background())
		if err != nil {
			t.Fatalf("Health failed: %v", err)
		}
		if !health.OK() {
			t.Errorf("expected healthy status, got %q", health.Status)
		}
	})

	t.Run("server unreachable", func(t *testing.T) {
		client, err := NewClient(ClientConfig{ServerURL: "http://127.0.0.1:1"})
		if err != nil {
			t.Fatalf("NewClient failed: %v", err)
		}
		if _, err := client.Health(context.Background()); err == nil {
			t.Fatal("expected error for unreachable server")
		}
	})
}

func TestRegister(t *testing.T) {
	t.Run("successful registration", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if request.URL.Path != "/api/v1/auth/register" {
				t.Errorf("unexpected path: %s", request.URL.Path)
				writer.WriteHeader(http.StatusNotFound)
				return
			}
			var body map[string]any
			if err := json.NewDecoder(request.Body).Decode(&body); err != nil {
				t.Fatalf("decoding request body: %v", err)
			}
			if body["username"] != "alice" {
				t.Errorf("unexpected username: %v", body["username"])
			}
			if body["email"] != "alice@example.com" {
				t.Errorf("unexpected email: %v", body["email"])
			}
			if body["password"] != "password123" {
				t.Errorf("unexpected password: %v", body["password"])
			}
			writeEnvelope(t, writer, User{ID: "u1", Username: "alice", Email: "alice@example.com"})
		}))
		defer server.Close()

		client, err := NewClient(ClientConfig{ServerURL: server.URL})
		if err != nil {
			t.Fatalf("NewClient failed: %v", err)
		}

		user, err := client.Register(context.Background(), RegisterRequest{
			Username: "alice",
			Email:    "alice@example.com",
			Password: testBuffer(t, "password123"),
		})
		if err != nil {
			t.Fatalf("Register failed: %v", err)
		}
		if user.ID != "u1" || user.Username != "alice" {
			t.Errorf("unexpected user: %+v", user)
		}
	})

	t.Run("username taken", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
			writeAPIError(t, writer, http.StatusConflict, "username_taken", "Username is already registered.")
		}))
		defer server.Close()

		client, err := NewClient(ClientConfig{ServerURL: server.URL})
		if err != nil {
			t.Fatalf("NewClient failed: %v", err)
		}

		_, err = client.Register(context.Background(), RegisterRequest{
			Username: "alice",
			Email:    "alice@example.com",
			Password: testBuffer(t, "password123"),
		})
		if !IsAPIError(err, "username_taken") {
			t.Fatalf("expected username_taken APIError, got %v", err)
		}
		var apiErr *APIError
		if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusConflict {
			t.Fatalf("expected status 409 on the error, got %v", err)
		}
	})

	t.Run("missing fields rejected locally", func(t *testing.T) {
		client, err := NewClient(ClientConfig{ServerURL: "http://127.0.0.1:8082"})
		if err != nil {
			t.Fatalf("NewClient failed: %v", err)
		}
		if _, err := client.Register(context.Background(), RegisterRequest{}); err == nil {
			t.Fatal("expected error for empty request")
		}
	})
}

func TestLogin(t *testing.T) {
	t.Run("successful login", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if request.URL.Path != "/api/v1/auth/login" {
				t.Errorf("unexpected path: %s", request.URL.Path)
			}
			var body map[string]any
			if err := json.NewDecoder(request.Body).Decode(&body); err != nil {
				t.Fatalf("decoding request body: %v", err)
			}
			if body["identifier"] != "alice" {
				t.Errorf("unexpected identifier: %v", body["identifier"])
			}
			// The login payload sits at the top level, beside the
			// envelope fields.
			writer.Header().Set("Content-Type", "application/json")
			json.NewEncoder(writer).Encode(map[string]any{
				"success":      true,
				"access_token": "tok_alice",
				"token_type":   "Bearer",
				"user":         User{ID: "u1", Username: "alice"},
			})
		}))
		defer server.Close()

		client, err := NewClient(ClientConfig{ServerURL: server.URL})
		if err != nil {
			t.Fatalf("NewClient failed: %v", err)
		}

		session, err := client.Login(context.Background(), "alice", testBuffer(t, "password123"))
		if err != nil {
			t.Fatalf("Login failed: %v", err)
		}
		defer session.Close()

		if session.User().ID != "u1" {
			t.Errorf("unexpected user: %+v", session.User())
		}
	})

	t.Run("invalid credentials", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
			writeAPIError(t, writer, http.StatusUnauthorized, "invalid_credentials", "Invalid identifier or password.")
		}))
		defer server.Close()

		client, err := NewClient(ClientConfig{ServerURL: server.URL})
		if err != nil {
			t.Fatalf("NewClient failed: %v", err)
		}

		_, err = client.Login(context.Background(), "alice", testBuffer(t, "wrong"))
		if !IsAuthError(err) {
			t.Fatalf("expected auth error, got %v", err)
		}
	})

	t.Run("missing token in response", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
			writeEnvelope(t, writer, map[string]any{})
		}))
		defer server.Close()

		client, err := NewClient(ClientConfig{ServerURL: server.URL})
		if err != nil {
			t.Fatalf("NewClient failed: %v", err)
		}

		_, err = client.Login(context.Background(), "alice", testBuffer(t, "password123"))
		if !errors.Is(err, ErrDecode) {
			t.Fatalf("expected ErrDecode, got %v", err)
		}
	})
}

func TestDoRequestErrorShapes(t *testing.T) {
	t.Run("success=false on 200 is an API error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
			writer.Header().Set("Content-Type", "application/json")
			json.NewEncoder(writer).Encode(map[string]any{
				"success": false,
				"error":   map[string]any{"message": "room is full"},
			})
		}))
		defer server.Close()

		client, err := NewClient(ClientConfig{ServerURL: server.URL})
		if err != nil {
			t.Fatalf("NewClient failed: %v", err)
		}

		_, err = client.Health(context.Background())
		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("expected APIError, got %v", err)
		}
		if apiErr.Message != "room is full" {
			t.Errorf("unexpected message: %q", apiErr.Message)
		}
	})

	t.Run("non-JSON body is a decode failure", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
			writer.Write([]byte("<html>not json</html>"))
		}))
		defer server.Close()

		client, err := NewClient(ClientConfig{ServerURL: server.URL})
		if err != nil {
			t.Fatalf("NewClient failed: %v", err)
		}

		_, err = client.Health(context.Background())
		if !errors.Is(err, ErrDecode) {
			t.Fatalf("expected ErrDecode, got %v", err)
		}
	})

	t.Run("500 with non-JSON body reports the raw body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
			writer.WriteHeader(http.StatusInternalServerError)
			writer.Write([]byte("upstream exploded"))
		}))
		defer server.Close()

		client, err := NewClient(ClientConfig{ServerURL: server.URL})
		if err != nil {
			t.Fatalf("NewClient failed: %v", err)
		}

		_, err = client.Health(context.Background())
		if err == nil {
			t.Fatal("expected error for 500 response")
		}
	})
}
