package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/saomyaraj/ConvoSphere/internal/store"
)

// timeLayout is the wire format for REST timestamps.
const timeLayout = time.RFC3339Nano

const (
	defaultPageLimit = 50
	maxPageLimit     = 100
)

// SendMessageRequest is the payload for posting a room or private message.
type SendMessageRequest struct {
	Body          string  `json:"body"`
	HasFormatting bool    `json:"hasFormatting"`
	Image         *string `json:"image"`
}

// MessageResponse is the public view of a persisted message.
type MessageResponse struct {
	ID             int64   `json:"id"`
	SenderID       int64   `json:"senderId"`
	SenderUsername string  `json:"senderUsername"`
	RoomID         *int64  `json:"roomId,omitempty"`
	ReceiverID     *int64  `json:"receiverId,omitempty"`
	Body           string  `json:"body"`
	HasFormatting  bool    `json:"hasFormatting"`
	Image          *string `json:"image,omitempty"`
	IsRead         bool    `json:"isRead"`
	CreatedAt      string  `json:"createdAt"`
}

// MessagePage is one page of message history.
type MessagePage struct {
	Messages []MessageResponse `json:"messages"`
	Total    int               `json:"total"`
	Page     int               `json:"page"`
	Limit    int               `json:"limit"`
}

// ConversationResponse summarizes one private-message partner.
type ConversationResponse struct {
	UserID          int64  `json:"userId"`
	Username        string `json:"username"`
	LastMessage     string `json:"lastMessage"`
	LastMessageTime string `json:"lastMessageTime"`
	UnreadCount     int    `json:"unreadCount"`
}

// MessageHandlers serves message history endpoints.
type MessageHandlers struct {
	store store.Store
	log   *zerolog.Logger
}

func NewMessageHandlers(st store.Store, logger *zerolog.Logger) *MessageHandlers {
	return &MessageHandlers{store: st, log: logger}
}

func messageResponse(m *store.Message) MessageResponse {
	return MessageResponse{
		ID:             m.ID,
		SenderID:       m.SenderID,
		SenderUsername: m.SenderUsername,
		RoomID:         m.RoomID,
		ReceiverID:     m.ReceiverID,
		Body:           m.Body,
		HasFormatting:  m.HasFormatting,
		Image:          m.Image,
		IsRead:         m.IsRead,
		CreatedAt:      m.CreatedAt.UTC().Format(timeLayout),
	}
}

func messagePage(msgs []*store.Message, total, page, limit int) MessagePage {
	out := make([]MessageResponse, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, messageResponse(m))
	}
	return MessagePage{Messages: out, Total: total, Page: page, Limit: limit}
}

func pagination(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultPageLimit)))
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return page, limit
}

// RoomHistory handles GET /api/messages/room/:id. Only members may read
// a room's history.
func (h *MessageHandlers) RoomHistory(c *gin.Context) {
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

	if _, err := h.store.GetRoomByID(c.Request.Context(), roomID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "room not found"})
			return
		}
		h.log.Error().Err(err).Int64("room_id", roomID).Msg("room lookup failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to load messages"})
		return
	}

	member, err := h.store.IsMember(c.Request.Context(), roomID, userID)
	if err != nil {
		h.log.Error().Err(err).Int64("room_id", roomID).Msg("membership check failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to load messages"})
		return
	}
	if !member {
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "not a member of this room"})
		return
	}

	page, limit := pagination(c)
	msgs, total, err := h.store.ListRoomMessages(c.Request.Context(), roomID, page, limit)
	if err != nil {
		h.log.Error().Err(err).Int64("room_id", roomID).Msg("list room messages failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to load messages"})
		return
	}

	c.JSON(http.StatusOK, messagePage(msgs, total, page, limit))
}

// PostRoomMessage handles POST /api/messages/room/:id.
func (h *MessageHandlers) PostRoomMessage(c *gin.Context) {
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

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "message body is required"})
		return
	}
	body := strings.TrimSpace(req.Body)
	if body == "" && req.Image == nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "message body is required"})
		return
	}

	member, err := h.store.IsMember(c.Request.Context(), roomID, userID)
	if err != nil {
		h.log.Error().Err(err).Int64("room_id", roomID).Msg("membership check failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to send message"})
		return
	}
	if !member {
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "not a member of this room"})
		return
	}

	msg, err := h.store.SaveMessage(c.Request.Context(), &store.Message{
		SenderID:       userID,
		SenderUsername: currentUsername(c),
		RoomID:         &roomID,
		Body:           body,
		HasFormatting:  req.HasFormatting,
		Image:          req.Image,
	})
	if err != nil {
		h.log.Error().Err(err).Int64("room_id", roomID).Msg("save room message failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to send message"})
		return
	}

	c.JSON(http.StatusCreated, messageResponse(msg))
}

// PrivateHistory handles GET /api/messages/private/:userId. It also marks the
// other party's messages to the caller as read.
func (h *MessageHandlers) PrivateHistory(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "not authenticated"})
		return
	}

	otherID, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid user id"})
		return
	}

	page, limit := pagination(c)
	msgs, total, err := h.store.ListPrivateMessages(c.Request.Context(), userID, otherID, page, limit)
	if err != nil {
		h.log.Error().Err(err).Int64("other_id", otherID).Msg("list private messages failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to load messages"})
		return
	}

	if err := h.store.MarkPrivateRead(c.Request.Context(), otherID, userID); err != nil {
		h.log.Error().Err(err).Int64("other_id", otherID).Msg("mark read failed")
	}

	c.JSON(http.StatusOK, messagePage(msgs, total, page, limit))
}

// PostPrivateMessage handles POST /api/messages/private/:userId.
func (h *MessageHandlers) PostPrivateMessage(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "not authenticated"})
		return
	}

	receiverID, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid user id"})
		return
	}
	if receiverID == userID {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "cannot message yourself"})
		return
	}

	if _, err := h.store.GetUserByID(c.Request.Context(), receiverID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "user not found"})
			return
		}
		h.log.Error().Err(err).Int64("receiver_id", receiverID).Msg("user lookup failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to send message"})
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "message body is required"})
		return
	}
	body := strings.TrimSpace(req.Body)
	if body == "" && req.Image == nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "message body is required"})
		return
	}

	msg, err := h.store.SaveMessage(c.Request.Context(), &store.Message{
		SenderID:       userID,
		SenderUsername: currentUsername(c),
		ReceiverID:     &receiverID,
		Body:           body,
		HasFormatting:  req.HasFormatting,
		Image:          req.Image,
	})
	if err != nil {
		h.log.Error().Err(err).Int64("receiver_id", receiverID).Msg("save private message failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to send message"})
		return
	}

	c.JSON(http.StatusCreated, messageResponse(msg))
}

// Conversations handles GET /api/messages/conversations.
func (h *MessageHandlers) Conversations(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "not authenticated"})
		return
	}

	convos, err := h.store.ListConversations(c.Request.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Msg("list conversations failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to load conversations"})
		return
	}

	out := make([]ConversationResponse, 0, len(convos))
	for _, cv := range convos {
		out = append(out, ConversationResponse{
			UserID:          cv.UserID,
			Username:        cv.Username,
			LastMessage:     cv.LastMessage,
			LastMessageTime: cv.LastMessageTime.UTC().Format(timeLayout),
			UnreadCount:     cv.UnreadCount,
		})
	}
	c.JSON(http.StatusOK, out)
}
