package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/saomyaraj/ConvoSphere/internal/store"
)

// UpdateProfileRequest is the payload for PUT /api/profile.
type UpdateProfileRequest struct {
	Status        *string `json:"status"`
	StatusMessage *string `json:"statusMessage"`
}

// ProfileHandlers serves the authenticated user's profile.
type ProfileHandlers struct {
	users store.UserStore
	log   *zerolog.Logger
}

func NewProfileHandlers(users store.UserStore, logger *zerolog.Logger) *ProfileHandlers {
	return &ProfileHandlers{users: users, log: logger}
}

var validStatuses = map[string]struct{}{
	"online":  {},
	"away":    {},
	"busy":    {},
	"offline": {},
}

// Get handles GET /api/profile.
func (h *ProfileHandlers) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "not authenticated"})
		return
	}

	user, err := h.users.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "user not found"})
			return
		}
		h.log.Error().Err(err).Int64("user_id", userID).Msg("get profile failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to load profile"})
		return
	}

	c.JSON(http.StatusOK, userResponse(user))
}

// Update handles PUT /api/profile.
func (h *ProfileHandlers) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "not authenticated"})
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	user, err := h.users.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Int64("user_id", userID).Msg("load profile failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to load profile"})
		return
	}

	status := user.Status
	if req.Status != nil {
		if _, valid := validStatuses[*req.Status]; !valid {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "status must be one of online, away, busy, offline"})
			return
		}
		status = *req.Status
	}

	statusMessage := user.StatusMessage
	if req.StatusMessage != nil {
		if len(*req.StatusMessage) > 100 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "status message must be 100 characters or fewer"})
			return
		}
		statusMessage = *req.StatusMessage
	}

	if err := h.users.UpdateProfile(c.Request.Context(), userID, status, statusMessage); err != nil {
		h.log.Error().Err(err).Int64("user_id", userID).Msg("update profile failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to update profile"})
		return
	}

	user.Status = status
	user.StatusMessage = statusMessage
	c.JSON(http.StatusOK, userResponse(user))
}
