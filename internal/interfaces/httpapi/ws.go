package httpapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/gorilla/websocket"

	"github.com/Keanutjardim/FRPadelLeague/internal/usecase"
)

const (
	wsWriteTimeout = 10 * time.Second
	wsPongTimeout  = 60 * time.Second
	wsPingInterval = 50 * time.Second
	wsReadLimit    = 512
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browser clients authenticate per message-free read-only stream;
	// origin policy is enforced by the CORS layer for the REST surface.
	CheckOrigin: func(*http.Request) bool { return true },
}

// StreamUpdates upgrades the request and relays coalesced table-change
// events until the client disconnects. The optional `tables` query
// parameter narrows the stream; empty means every table.
func (h *Handler) StreamUpdates(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.feed == nil {
		writeError(ctx, w, fmt.Errorf("%w: change feed is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	tables := splitTablesParam(r.URL.Query().Get("tables"))

	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written its own HTTP error response.
		h.logger.WarnContext(ctx, "websocket upgrade failed", "error", err)
		return
	}
	defer func() {
		_ = conn.Close()
	}()

	sub := h.feed.Subscribe(tables...)
	defer sub.Close()

	h.logger.InfoContext(ctx, "websocket subscriber connected",
		"tables", strings.Join(tables, ","),
		"client_ip", resolveClientIP(ctx, r),
	)

	// The reader only services control frames; any read error means the
	// client went away.
	done := make(chan struct{})
	go func() {
		defer close(done)
		conn.SetReadLimit(wsReadLimit)
		_ = conn.SetReadDeadline(time.Now().Add(wsPongTimeout))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(wsPongTimeout))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			deadline := time.Now().Add(wsWriteTimeout)
			_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""), deadline)
			return
		case event, ok := <-sub.Events():
			if !ok {
				return
			}
			payload, err := sonic.Marshal(event)
			if err != nil {
				h.logger.WarnContext(ctx, "marshal feed event failed", "table", event.Table, "error", err)
				continue
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func splitTablesParam(raw string) []string {
	parts := strings.Split(raw, ",")
	tables := make([]string, 0, len(parts))
	for _, part := range parts {
		if table := strings.TrimSpace(part); table != "" {
			tables = append(tables, table)
		}
	}
	return tables
}
