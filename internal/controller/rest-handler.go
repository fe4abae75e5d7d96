package controller

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vidroom/server/internal/service/room"
	"github.com/vidroom/server/pkg/rest"
)

type createRoomInput struct {
	VideoURL string `json:"video_url" validate:"required,url"`
}

func (c *controller) createRoom(w http.ResponseWriter, r *http.Request) {
	var input createRoomInput
	if err := rest.ReadJSON(r, &input); err != nil {
		c.logger.DebugContext(r.Context(), "failed to read json", "error", err)
		rest.WriteJSON(w, http.StatusUnprocessableEntity, rest.Envelope{"error": err.Error()})
		return
	}

	if validationErrors, ok := c.validate.Validate(input); !ok {
		c.logger.DebugContext(r.Context(), "failed to validate input", "errors", validationErrors)
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"errors": validationErrors})
		return
	}

	createRoomResp, err := c.roomService.CreateRoom(r.Context(), &room.CreateRoomParams{
		VideoURL: input.VideoURL,
	})
	if err != nil {
		if errors.Is(err, room.ErrInvalidVideoURL) {
			rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"error": "invalid video url"})
			return
		}

		c.logger.WarnContext(r.Context(), "failed to create room", "error", err)
		rest.WriteJSON(w, http.StatusInternalServerError, rest.Envelope{"error": "internal error"})
		return
	}

	rest.WriteJSON(w, http.StatusCreated, rest.Envelope{"data": createRoomResp.Room})
}

func (c *controller) getRoom(w http.ResponseWriter, r *http.Request) {
	roomModel, err := c.roomService.GetRoom(r.Context(), chi.URLParam(r, "room-id"))
	if err != nil {
		if errors.Is(err, room.ErrRoomNotFound) {
			rest.WriteJSON(w, http.StatusNotFound, rest.Envelope{"error": "room not found"})
			return
		}

		c.logger.WarnContext(r.Context(), "failed to get room", "error", err)
		rest.WriteJSON(w, http.StatusInternalServerError, rest.Envelope{"error": "internal error"})
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": roomModel})
}

func (c *controller) getRoomState(w http.ResponseWriter, r *http.Request) {
	state, err := c.roomService.GetPlayerState(r.Context(), chi.URLParam(r, "room-id"))
	if err != nil {
		if errors.Is(err, room.ErrRoomNotFound) {
			rest.WriteJSON(w, http.StatusNotFound, rest.Envelope{"error": "room not found"})
			return
		}

		c.logger.WarnContext(r.Context(), "failed to get room state", "error", err)
		rest.WriteJSON(w, http.StatusInternalServerError, rest.Envelope{"error": "internal error"})
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": state})
}

func (c *controller) getMessages(w http.ResponseWriter, r *http.Request) {
	messages, err := c.roomService.GetMessages(r.Context(), chi.URLParam(r, "room-id"))
	if err != nil {
		if errors.Is(err, room.ErrRoomNotFound) {
			rest.WriteJSON(w, http.StatusNotFound, rest.Envelope{"error": "room not found"})
			return
		}

		c.logger.WarnContext(r.Context(), "failed to get messages", "error", err)
		rest.WriteJSON(w, http.StatusInternalServerError, rest.Envelope{"error": "internal error"})
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": messages})
}

func (c *controller) health(w http.ResponseWriter, r *http.Request) {
	rest.WriteJSON(w, http.StatusOK, rest.Envelope{
		"status":      "ok",
		"connections": c.roomService.ConnectionsCount(),
	})
}
