package controller

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/vidroom/server/pkg/ctxlogger"
	"github.com/vidroom/server/pkg/wsrouter"
)

func (c *controller) requestIdMw(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := ctxlogger.AppendCtx(r.Context(), slog.String("request_id", uuid.NewString()))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (c *controller) requestLoggingMw(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.logger.InfoContext(r.Context(), "request",
			"method", r.Method,
			"url", r.URL.String(),
			"remote_addr", r.RemoteAddr,
		)
		next.ServeHTTP(w, r)
	})
}

// rateLimitMw drops messages from connections talking faster than the
// configured rate, telling the sender why.
func (c *controller) rateLimitMw(next wsrouter.HandlerFunc) wsrouter.HandlerFunc {
	return func(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) error {
		if !c.limiter.Allow(c.getConnIdFromCtx(ctx)) {
			c.writeError(ctx, conn, "Rate limit exceeded")
			return nil
		}

		return next(ctx, conn, payload)
	}
}

func (c *controller) wsLoggingMw(next wsrouter.HandlerFunc) wsrouter.HandlerFunc {
	return func(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) error {
		ctx = ctxlogger.AppendCtx(ctx, slog.String("message_type", wsrouter.GetMessageTypeFromCtx(ctx)))
		if err := next(ctx, conn, payload); err != nil {
			c.logger.DebugContext(ctx, "failed to handle message", "error", err)
			return err
		}

		return nil
	}
}
