package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"

	"github.com/vovakirdan/linechat-server/internal/auth"
	"github.com/vovakirdan/linechat-server/internal/config"
	"github.com/vovakirdan/linechat-server/internal/core"
	"github.com/vovakirdan/linechat-server/internal/log"
	"github.com/vovakirdan/linechat-server/internal/metrics"
	"github.com/vovakirdan/linechat-server/internal/store/sqlite"
	"github.com/vovakirdan/linechat-server/internal/transport"
)

func startTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	st, err := sqlite.NewWithSetup(":memory:", sqlite.ApplySchema)
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	svc := auth.NewService(st)
	for _, u := range [][3]string{{"alice", "Alice", "secret"}, {"bob", "Bob", "hunter2"}} {
		if _, err := svc.Register(context.Background(), u[0], u[1], u[2]); err != nil {
			t.Fatalf("register %s: %v", u[0], err)
		}
	}

	logger := log.Nop()
	m := metrics.New()
	hub := core.NewHub(svc, core.Options{Logger: logger, Metrics: m})
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	cfg := config.Default()
	bridge := transport.NewBridge(hub, logger, transport.Options{WriteTimeout: time.Second})
	server := NewServer(hub, bridge, m, &cfg, logger)

	ts := httptest.NewServer(server.Handler)
	t.Cleanup(func() {
		cancel()
		<-hub.Done()
		ts.Close()
	})
	return ts
}

func dialWS(t *testing.T, ctx context.Context, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	wsURL := strings.Replace(ts.URL, "http", "ws", 1) + "/ws"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "done") })
	return conn
}

func writeLine(t *testing.T, ctx context.Context, conn *websocket.Conn, line string) {
	t.Helper()
	if err := conn.Write(ctx, websocket.MessageText, []byte(line)); err != nil {
		t.Fatalf("write %q: %v", line, err)
	}
}

func readLine(t *testing.T, ctx context.Context, conn *websocket.Conn) string {
	t.Helper()
	_, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	return string(data)
}

func expectLine(t *testing.T, ctx context.Context, conn *websocket.Conn, want string) {
	t.Helper()
	if got := readLine(t, ctx, conn); got != want {
		t.Fatalf("unexpected line: got %q, want %q", got, want)
	}
}

func TestHealthEndpoint(t *testing.T) {
	ts := startTestServer(t)

	resp, err := ts.Client().Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
}

func TestWebSocketLoginAndBroadcast(t *testing.T) {
	ts := startTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	connA := dialWS(t, ctx, ts)
	writeLine(t, ctx, connA, "AUTH_REQUEST|alice|secret")
	expectLine(t, ctx, connA, "AUTH_ACCEPT|Alice")
	expectLine(t, ctx, connA, "TYPE_BROADCAST|Server|Alice connected")
	expectLine(t, ctx, connA, "USER_LIST|Alice")

	connB := dialWS(t, ctx, ts)
	writeLine(t, ctx, connB, "AUTH_REQUEST|bob|hunter2")
	expectLine(t, ctx, connB, "AUTH_ACCEPT|Bob")
	expectLine(t, ctx, connB, "TYPE_BROADCAST|Server|Bob connected")
	expectLine(t, ctx, connB, "USER_LIST|Alice|Bob")

	writeLine(t, ctx, connA, "USER_BROADCAST|hi there")
	expectLine(t, ctx, connB, "TYPE_BROADCAST|Alice|hi there")
}

func TestWebSocketFormatErrorKeepsConnection(t *testing.T) {
	ts := startTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn := dialWS(t, ctx, ts)
	writeLine(t, ctx, conn, "FOO|bar")
	expectLine(t, ctx, conn, "MSG_FORMAT_ERROR|FOO|bar")

	writeLine(t, ctx, conn, "AUTH_REQUEST|alice|secret")
	expectLine(t, ctx, conn, "AUTH_ACCEPT|Alice")
}

func TestRosterEndpoint(t *testing.T) {
	ts := startTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn := dialWS(t, ctx, ts)
	writeLine(t, ctx, conn, "AUTH_REQUEST|alice|secret")
	expectLine(t, ctx, conn, "AUTH_ACCEPT|Alice")

	resp, err := ts.Client().Get(ts.URL + "/api/roster")
	if err != nil {
		t.Fatalf("roster request failed: %v", err)
	}
	defer resp.Body.Close()

	var body RosterResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode roster: %v", err)
	}
	if len(body.Users) != 1 || body.Users[0] != "Alice" {
		t.Fatalf("unexpected roster: %+v", body.Users)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	ts := startTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn := dialWS(t, ctx, ts)
	writeLine(t, ctx, conn, "AUTH_REQUEST|alice|secret")
	expectLine(t, ctx, conn, "AUTH_ACCEPT|Alice")

	resp, err := ts.Client().Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("metrics request failed: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read metrics: %v", err)
	}
	if !strings.Contains(string(body), "linechat_auth_accepted_total 1") {
		t.Fatalf("auth counter missing from metrics output:\n%s", body)
	}
}
