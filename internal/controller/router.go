package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (c *controller) Mux() http.Handler {
	r := chi.NewRouter()

	r.Use(c.requestIdMw)
	r.Use(c.requestLoggingMw)

	r.Post("/api/rooms", c.createRoom)
	r.Get("/api/rooms/{room-id}", c.getRoom)
	r.Get("/api/rooms/{room-id}/state", c.getRoomState)
	r.Get("/api/chat/{room-id}", c.getMessages)
	r.Get("/healthz", c.health)

	r.HandleFunc("/ws", c.serveWS)

	return r
}
