package httpapi

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/gorilla/websocket"

	"github.com/Keanutjardim/FRPadelLeague/internal/platform/changefeed"
)

func TestStreamUpdates_RelaysFilteredBusEvents(t *testing.T) {
	bus := changefeed.NewBus()
	handler := NewHandler(nil, nil, nil, nil, bus, nil)

	server := httptest.NewServer(http.HandlerFunc(handler.StreamUpdates))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "?tables=teams"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial websocket: %v", err)
	}
	defer conn.Close()
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}

	// Give the handler a beat to register its subscription after the upgrade.
	time.Sleep(100 * time.Millisecond)

	bus.Publish(changefeed.TableChallenges)
	bus.Publish(changefeed.TableTeams)

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read message: %v", err)
	}

	var event struct {
		Table   string `json:"table"`
		Version uint64 `json:"version"`
	}
	if err := sonic.Unmarshal(payload, &event); err != nil {
		t.Fatalf("unmarshal event: %v (payload=%s)", err, payload)
	}
	if event.Table != changefeed.TableTeams {
		t.Fatalf("expected only the teams table through the filter, got %q", event.Table)
	}
	if event.Version != 1 {
		t.Fatalf("expected teams version 1, got %d", event.Version)
	}
}

func TestStreamUpdates_WithoutFeedIsUnavailable(t *testing.T) {
	handler := NewHandler(nil, nil, nil, nil, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/ws/updates", nil)
	rec := httptest.NewRecorder()

	handler.StreamUpdates(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", rec.Code)
	}
}
