package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/teemow/gdrive-endpoint/internal/google"
)

func TestValidateHTTPSRequirement(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		wantErr bool
	}{
		{name: "valid HTTPS URL", baseURL: "https://mcp.example.com"},
		{name: "valid HTTP localhost", baseURL: "http://localhost:8080"},
		{name: "valid HTTP 127.0.0.1", baseURL: "http://127.0.0.1:8080"},
		{name: "valid HTTP ::1 (IPv6 loopback)", baseURL: "http://[::1]:8080"},
		{name: "invalid HTTP non-localhost", baseURL: "http://mcp.example.com", wantErr: true},
		{name: "invalid HTTP with localhost substring", baseURL: "http://localhost.example.com", wantErr: true},
		{name: "invalid HTTP with 127.0.0.1 in domain", baseURL: "http://127.0.0.1.example.com", wantErr: true},
		{name: "empty URL", baseURL: "", wantErr: true},
		{name: "invalid URL format", baseURL: "not a url", wantErr: true},
		{name: "invalid scheme", baseURL: "ftp://example.com", wantErr: true},
		{name: "HTTPS with path", baseURL: "https://mcp.example.com/api"},
		{name: "HTTPS with port", baseURL: "https://mcp.example.com:8443"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateHTTPSRequirement(tt.baseURL)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateHTTPSRequirement() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewHTTPServer_RejectsInsecureBaseURL(t *testing.T) {
	sc, _ := newTestServerContext(t)
	_, err := NewHTTPServer(mcpserver.NewMCPServer("test", "1.0.0"), sc, HTTPConfig{BaseURL: "http://drive.example.com"})
	assert.Error(t, err)
}

func TestResponseWriter(t *testing.T) {
	t.Run("captures status code", func(t *testing.T) {
		rw := newResponseWriter(httptest.NewRecorder())
		rw.WriteHeader(http.StatusNotFound)
		assert.Equal(t, http.StatusNotFound, rw.statusCode)
	})

	t.Run("defaults to 200", func(t *testing.T) {
		rw := newResponseWriter(httptest.NewRecorder())
		assert.Equal(t, http.StatusOK, rw.statusCode)
	})

	t.Run("passes write header to underlying writer", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		rw := newResponseWriter(recorder)
		rw.WriteHeader(http.StatusCreated)
		assert.Equal(t, http.StatusCreated, recorder.Code)
	})

	t.Run("flushes through", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		rw := newResponseWriter(recorder)
		rw.Flush()
		assert.True(t, recorder.Flushed)
		assert.Same(t, recorder, rw.Unwrap())
	})
}

func TestRouteLabel(t *testing.T) {
	assert.Equal(t, "/mcp", routeLabel("/mcp"))
	assert.Equal(t, "/callback", routeLabel("/callback"))
	assert.Equal(t, "/readyz", routeLabel("/readyz"))
	assert.Equal(t, "other", routeLabel("/files/abc123"))
}

func TestInstrumentationMiddleware(t *testing.T) {
	t.Run("calls next handler when no metrics", func(t *testing.T) {
		sc, _ := newTestServerContext(t)
		server := &HTTPServer{serverContext: sc}
		called := false
		next := http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
			called = true
		})

		server.instrumentationMiddleware(next).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/test", nil))
		assert.True(t, called)
	})

	t.Run("records with metrics", func(t *testing.T) {
		sc, _ := newTestServerContext(t)
		sc.SetMetrics(newProvider(t, true).Metrics())
		server := &HTTPServer{serverContext: sc}
		next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		})

		rec := httptest.NewRecorder()
		server.instrumentationMiddleware(next).ServeHTTP(rec, httptest.NewRequest("GET", "/mcp", nil))
		assert.Equal(t, http.StatusTeapot, rec.Code)
	})
}

func newTestHTTPServer(t *testing.T) *HTTPServer {
	t.Helper()
	sc, _ := newTestServerContext(t, "work")

	mcpServer := mcpserver.NewMCPServer("test", "1.0.0", mcpserver.WithToolCapabilities(true))
	mcpServer.AddTool(mcp.NewTool("whoami"), func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		account, _ := AccountFromContext(ctx)
		return mcp.NewToolResultText(account), nil
	})

	s, err := NewHTTPServer(mcpServer, sc, HTTPConfig{BaseURL: "http://localhost:8080"})
	require.NoError(t, err)
	t.Cleanup(func() { s.Sessions().Stop() })
	return s
}

func TestAccountContext_HeaderBindsSession(t *testing.T) {
	s := newTestHTTPServer(t)
	sessionID := s.Sessions().Generate()

	req := httptest.NewRequest(http.MethodPost, MCPEndpointPath, nil)
	req.Header.Set(AccountHeader, "personal")
	req.Header.Set(mcpserver.HeaderKeySessionID, sessionID)
	account, ok := AccountFromContext(s.accountContext(context.Background(), req))
	assert.True(t, ok)
	assert.Equal(t, "personal", account)

	req = httptest.NewRequest(http.MethodPost, MCPEndpointPath, nil)
	req.Header.Set(mcpserver.HeaderKeySessionID, sessionID)
	account, ok = AccountFromContext(s.accountContext(context.Background(), req))
	assert.True(t, ok)
	assert.Equal(t, "personal", account)

	req = httptest.NewRequest(http.MethodPost, MCPEndpointPath, nil)
	_, ok = AccountFromContext(s.accountContext(context.Background(), req))
	assert.False(t, ok)
}

func postJSONRPC(t *testing.T, client *http.Client, url string, headers map[string]string, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, url, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/event-stream")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := client.Do(req)
	require.NoError(t, err)
	return resp
}

func TestStreamableHTTP_SessionKeepsAccount(t *testing.T) {
	s := newTestHTTPServer(t)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	resp := postJSONRPC(t, ts.Client(), ts.URL+MCPEndpointPath, map[string]string{AccountHeader: "work"},
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2025-03-26","capabilities":{},"clientInfo":{"name":"test","version":"1"}}}`)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	sessionID := resp.Header.Get(mcpserver.HeaderKeySessionID)
	require.NotEmpty(t, sessionID)
	assert.Equal(t, "work", s.Sessions().AccountForSession(sessionID))

	resp = postJSONRPC(t, ts.Client(), ts.URL+MCPEndpointPath, map[string]string{mcpserver.HeaderKeySessionID: sessionID},
		`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"whoami","arguments":{}}}`)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var rpc struct {
		Result struct {
			Content []struct {
				Text string `json:"text"`
			} `json:"content"`
		} `json:"result"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rpc))
	require.Len(t, rpc.Result.Content, 1)
	assert.Equal(t, "work", rpc.Result.Content[0].Text)
}

func TestStreamableHTTP_UnknownSession(t *testing.T) {
	s := newTestHTTPServer(t)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	resp := postJSONRPC(t, ts.Client(), ts.URL+MCPEndpointPath,
		map[string]string{mcpserver.HeaderKeySessionID: "0b0e8a57-7fd4-4c43-9d1e-2a1f1c1a9e11"},
		`{"jsonrpc":"2.0","id":2,"method":"tools/list"}`)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// tokenEndpoint answers every OAuth code exchange with a fixed token
type tokenEndpoint struct{}

func (tokenEndpoint) RoundTrip(r *http.Request) (*http.Response, error) {
	body := `{"access_token":"at-1","token_type":"Bearer","refresh_token":"rt-1","expires_in":3600}`
	return &http.Response{
		StatusCode: http.StatusOK,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(bytes.NewBufferString(body)),
		Request:    r,
	}, nil
}

func callback(t *testing.T, s *HTTPServer, query url.Values) *httptest.ResponseRecorder {
	t.Helper()
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, &http.Client{Transport: tokenEndpoint{}})
	req := httptest.NewRequest(http.MethodGet, CallbackPath+"?"+query.Encode(), nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestCallback(t *testing.T) {
	google.Configure(google.ClientConfig{ClientID: "id", ClientSecret: "secret", TokenDir: t.TempDir()})
	t.Cleanup(func() { google.Configure(google.ClientConfig{}) })

	s := newTestHTTPServer(t)

	t.Run("connects the account named in state", func(t *testing.T) {
		rec := callback(t, s, url.Values{"code": {"4/abc"}, "state": {"personal"}, "authuser": {"0"}})
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"personal" connected`)
		assert.True(t, google.HasTokenForAccount("personal"))
	})

	t.Run("missing state", func(t *testing.T) {
		rec := callback(t, s, url.Values{"code": {"4/abc"}})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "state is required")
	})

	t.Run("missing code", func(t *testing.T) {
		rec := callback(t, s, url.Values{"state": {"work"}})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "code is required")
	})

	t.Run("user denied access", func(t *testing.T) {
		rec := callback(t, s, url.Values{"state": {"work"}, "error": {"access_denied"}})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "access_denied")
	})

	t.Run("invalid account name", func(t *testing.T) {
		rec := callback(t, s, url.Values{"code": {"4/abc"}, "state": {"../etc"}})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "state is not a valid account name")
	})

	t.Run("method not allowed", func(t *testing.T) {
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, CallbackPath, nil))
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}
