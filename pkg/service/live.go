package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/Suhaibinator/SConvert/pkg/middleware"
	"github.com/Suhaibinator/SConvert/pkg/radix"
	"github.com/Suhaibinator/SConvert/pkg/sanitize"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// LiveRequest is one message from a live client, sent on every edit.
type LiveRequest struct {
	Seq       int64  `json:"seq"`
	Number    string `json:"number"`
	From      int    `json:"from"`
	To        int    `json:"to"`
	Precision *int   `json:"precision,omitempty"`
}

// LiveResponse answers the LiveRequest with the same Seq. Exactly one of
// Result and Error is set; an empty number yields an empty Result.
type LiveResponse struct {
	Seq    int64  `json:"seq"`
	Result string `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
	Field  string `json:"field,omitempty"`
}

// liveClient is one WebSocket connection.
type liveClient struct {
	svc     *Service
	conn    *websocket.Conn
	send    chan []byte
	done    chan struct{}
	once    sync.Once
	traceID string

	// closeCode is the close frame writePump sends once done is closed;
	// zero drops the connection without one. Written only before done closes.
	closeCode int
	closeText string
}

func (s *Service) upgrader() *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}
}

// checkOrigin accepts requests without an Origin header, same-host origins
// and origins listed in AllowedOrigins.
func (s *Service) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range s.origins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, r.Host)
}

func (s *Service) handleLive(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		http.Error(w, "Service Unavailable", http.StatusServiceUnavailable)
		return
	}

	// The upgrader writes its own error response on failure.
	conn, err := s.upgrader().Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("WebSocket upgrade failed",
			zap.Error(err),
			zap.String("trace_id", middleware.GetTraceID(r)),
		)
		return
	}

	c := &liveClient{
		svc:     s,
		conn:    conn,
		send:    make(chan []byte, 16),
		done:    make(chan struct{}),
		traceID: middleware.GetTraceID(r),
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		_ = conn.Close()
		return
	}
	s.clients[c] = struct{}{}
	count := len(s.clients)
	s.mu.Unlock()

	s.logger.Debug("Live client connected",
		zap.String("trace_id", c.traceID),
		zap.String("client_ip", middleware.ClientIP(r)),
		zap.Int("clients", count),
	)

	go c.writePump()
	go c.readPump()
}

// shutdown stops the pumps without a close frame. It is safe to call more
// than once; the first call to shutdown or goingAway wins.
func (c *liveClient) shutdown() {
	c.stop(0, "")
}

// goingAway stops the pumps and tells the peer the server is shutting down.
func (c *liveClient) goingAway() {
	c.stop(websocket.CloseGoingAway, "server shutting down")
}

func (c *liveClient) stop(code int, text string) {
	c.once.Do(func() {
		c.closeCode, c.closeText = code, text
		close(c.done)
	})
}

// readPump converts each incoming message and queues the reply.
func (c *liveClient) readPump() {
	s := c.svc
	defer func() {
		c.shutdown()
		s.mu.Lock()
		delete(s.clients, c)
		s.mu.Unlock()
	}()

	c.conn.SetReadLimit(s.maxMessage)
	_ = c.conn.SetReadDeadline(time.Now().Add(s.readTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(s.readTimeout))
	})

	ctx := middleware.WithTraceID(context.Background(), c.traceID)
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Debug("Live connection closed", zap.Error(err), zap.String("trace_id", c.traceID))
			}
			return
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(s.readTimeout))

		reply, err := json.Marshal(s.live(ctx, data))
		if err != nil {
			return
		}
		select {
		case c.send <- reply:
		case <-c.done:
			return
		}
	}
}

// live answers one raw LiveRequest.
func (s *Service) live(ctx context.Context, data []byte) LiveResponse {
	var msg LiveRequest
	if err := json.Unmarshal(data, &msg); err != nil {
		return LiveResponse{Error: "invalid message: " + err.Error()}
	}

	resp := LiveResponse{Seq: msg.Seq}
	// Clearing the number field clears the result.
	if msg.Number == "" {
		return resp
	}

	req := radix.Request{
		Digits:    msg.Number,
		From:      msg.From,
		To:        msg.To,
		Precision: s.opts.DefaultPrecision,
	}
	if msg.Precision != nil {
		req.Precision = *msg.Precision
	}

	result, err := s.Convert(ctx, req)
	if err != nil {
		resp.Error = err.Error()
		_, resp.Field = validationError(err)
		if resp.Field == "" {
			resp.Field = sanitize.FieldNumber
		}
		return resp
	}
	resp.Result = result
	return resp
}

// writePump writes queued replies and keeps the connection alive with pings.
func (c *liveClient) writePump() {
	s := c.svc
	ticker := time.NewTicker(s.pingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(liveWriteTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.shutdown()
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(liveWriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.shutdown()
				return
			}

		case <-c.done:
			if c.closeCode != 0 {
				_ = c.conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(c.closeCode, c.closeText),
					time.Now().Add(liveWriteTimeout))
			}
			return
		}
	}
}
