package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/saomyaraj/ConvoSphere/internal/store"
)

// CreateRoomRequest is the payload for POST /api/rooms.
type CreateRoomRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// RoomResponse is the public view of a room.
type RoomResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	IsDefault   bool   `json:"isDefault"`
	CreatorID   int64  `json:"creatorId"`
	CreatedAt   string `json:"createdAt"`
}

// RoomHandlers serves room management endpoints.
type RoomHandlers struct {
	rooms store.RoomStore
	log   *zerolog.Logger
}

func NewRoomHandlers(rooms store.RoomStore, logger *zerolog.Logger) *RoomHandlers {
	return &RoomHandlers{rooms: rooms, log: logger}
}

func roomResponse(r *store.Room) RoomResponse {
	return RoomResponse{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		IsDefault:   r.IsDefault,
		CreatorID:   r.CreatorID,
		CreatedAt:   r.CreatedAt.UTC().Format(timeLayout),
	}
}

// List handles GET /api/rooms.
func (h *RoomHandlers) List(c *gin.Context) {
	rooms, err := h.rooms.ListRooms(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("list rooms failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to list rooms"})
		return
	}

	out := make([]RoomResponse, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, roomResponse(r))
	}
	c.JSON(http.StatusOK, out)
}

// Create handles POST /api/rooms.
func (h *RoomHandlers) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "not authenticated"})
		return
	}

	var req CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "room name is required"})
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" || len(name) > 64 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "room name must be 1-64 characters"})
		return
	}

	if _, err := h.rooms.GetRoomByName(c.Request.Context(), name); err == nil {
		c.JSON(http.StatusConflict, ErrorResponse{Error: "room already exists"})
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		h.log.Error().Err(err).Msg("room lookup failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to create room"})
		return
	}

	room, err := h.rooms.CreateRoom(c.Request.Context(), name, strings.TrimSpace(req.Description), userID)
	if err != nil {
		h.log.Error().Err(err).Str("name", name).Msg("create room failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to create room"})
		return
	}

	c.JSON(http.StatusCreated, roomResponse(room))
}

// Join handles POST /api/rooms/:id/join.
func (h *RoomHandlers) Join(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "not authenticated"})
		return
	}

	roomID, err := parseRoomID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid room id"})
		return
	}

	if _, err := h.rooms.GetRoomByID(c.Request.Context(), roomID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "room not found"})
			return
		}
		h.log.Error().Err(err).Int64("room_id", roomID).Msg("room lookup failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to join room"})
		return
	}

	if err := h.rooms.AddMember(c.Request.Context(), roomID, userID); err != nil {
		h.log.Error().Err(err).Int64("room_id", roomID).Int64("user_id", userID).Msg("join room failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to join room"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"joined": true})
}

// Leave handles POST /api/rooms/:id/leave.
func (h *RoomHandlers) Leave(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "not authenticated"})
		return
	}

	roomID, err := parseRoomID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid room id"})
		return
	}

	if err := h.rooms.RemoveMember(c.Request.Context(), roomID, userID); err != nil {
		h.log.Error().Err(err).Int64("room_id", roomID).Int64("user_id", userID).Msg("leave room failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to leave room"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"left": true})
}

func parseRoomID(c *gin.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}
