package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"

	"github.com/saomyaraj/ConvoSphere/internal/auth"
	"github.com/saomyaraj/ConvoSphere/internal/config"
	"github.com/saomyaraj/ConvoSphere/internal/hub"
	"github.com/saomyaraj/ConvoSphere/internal/proto"
	"github.com/saomyaraj/ConvoSphere/internal/store"
	"github.com/saomyaraj/ConvoSphere/internal/store/sqlite"
)

type testEnv struct {
	server *httptest.Server
	auth   *auth.Service
	store  store.Store
}

func startTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	jwtConfig := &auth.JWTConfig{
		Secret:   []byte("test-secret-change-me"),
		Issuer:   "test",
		Audience: "test",
		TTL:      time.Hour,
	}
	authService := auth.NewService(st, jwtConfig)

	logger := zerolog.New(nil)
	h := hub.New(&logger, nil)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go h.Run(ctx)

	cfg := config.Default()
	server := NewServer(h, st, authService, cfg, &logger)

	ts := httptest.NewServer(server.Handler)
	t.Cleanup(ts.Close)

	return &testEnv{server: ts, auth: authService, store: st}
}

// registerUser creates an account and returns its token.
func (e *testEnv) registerUser(t *testing.T, username string) string {
	t.Helper()

	_, token, err := e.auth.Register(context.Background(), username, "password123")
	if err != nil {
		t.Fatalf("register %s: %v", username, err)
	}
	return token
}

// dialWS opens a websocket connection authenticated with the given token.
func (e *testEnv) dialWS(ctx context.Context, t *testing.T, token string) *websocket.Conn {
	t.Helper()

	wsURL := strings.Replace(e.server.URL, "http", "ws", 1) + "/ws?token=" + token
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close(websocket.StatusNormalClosure, "done") })
	return conn
}

// sendEvent writes an inbound envelope on the connection.
func sendEvent(ctx context.Context, t *testing.T, conn *websocket.Conn, eventType string, data any) {
	t.Helper()

	var raw json.RawMessage
	if data != nil {
		payload, err := json.Marshal(data)
		if err != nil {
			t.Fatalf("marshal %s payload: %v", eventType, err)
		}
		raw = payload
	}
	if err := wsjson.Write(ctx, conn, proto.Inbound{Type: eventType, Data: raw}); err != nil {
		t.Fatalf("write %s: %v", eventType, err)
	}
}

type rawOutbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// readUntil reads outbound envelopes until one of the wanted type arrives.
func readUntil(ctx context.Context, t *testing.T, conn *websocket.Conn, eventType string) rawOutbound {
	t.Helper()

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		var out rawOutbound
		if err := wsjson.Read(ctx, conn, &out); err != nil {
			t.Fatalf("read while waiting for %s: %v", eventType, err)
		}
		if out.Type == eventType {
			return out
		}
	}
	t.Fatalf("event %s not received", eventType)
	return rawOutbound{}
}

// doJSON performs an HTTP request with a JSON body and optional bearer token.
func (e *testEnv) doJSON(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req, err := http.NewRequest(method, e.server.URL+path, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.server.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}
