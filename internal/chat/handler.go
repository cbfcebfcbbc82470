package chat

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pramrakhani/Mentor-Bridge/internal/api"
	"github.com/pramrakhani/Mentor-Bridge/internal/auth"
)

type Handler struct {
	repo Repository
}

func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

// ListConversations godoc
// @Summary      List my conversations
// @Tags         chat
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}   ConversationWithPeer
// @Failure      401  {object}  api.ErrorResponse
// @Failure      500  {object}  api.ErrorResponse
// @Router       /conversations [get]
func (h *Handler) ListConversations(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	convs, err := h.repo.ListConversations(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch conversations"})
		return
	}

	c.JSON(http.StatusOK, convs)
}

// ListMessages godoc
// @Summary      List conversation messages
// @Tags         chat
// @Security     BearerAuth
// @Produce      json
// @Param        conversationID  path      int  true  "Conversation ID"
// @Param        limit           query     int  false "Page size"
// @Param        offset          query     int  false "Page offset"
// @Success      200             {array}   Message
// @Failure      403             {object}  api.ErrorResponse
// @Failure      404             {object}  api.ErrorResponse
// @Router       /conversations/{conversationID}/messages [get]
func (h *Handler) ListMessages(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	conversationID, err := strconv.ParseInt(c.Param("conversationID"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid conversation ID"})
		return
	}

	conv, err := h.repo.GetConversation(c.Request.Context(), conversationID)
	if err != nil {
		if errors.Is(err, ErrConversationNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Conversation not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load conversation"})
		return
	}

	if conv.UserA != userID && conv.UserB != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not a participant of this conversation"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	msgs, err := h.repo.ListMessages(c.Request.Context(), conversationID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch messages"})
		return
	}

	c.JSON(http.StatusOK, msgs)
}

// SendMessage godoc
// @Summary      Send a message
// @Tags         chat
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        conversationID  path      int                 true  "Conversation ID"
// @Param        request         body      SendMessageRequest  true  "Message body"
// @Success      201             {object}  Message
// @Failure      400             {object}  api.ErrorResponse
// @Failure      403             {object}  api.ErrorResponse
// @Failure      404             {object}  api.ErrorResponse
// @Router       /conversations/{conversationID}/messages [post]
func (h *Handler) SendMessage(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	conversationID, err := strconv.ParseInt(c.Param("conversationID"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid conversation ID"})
		return
	}

	var req SendMessageRequest
	if !api.BindJSON(c, &req) {
		return
	}

	conv, err := h.repo.GetConversation(c.Request.Context(), conversationID)
	if err != nil {
		if errors.Is(err, ErrConversationNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Conversation not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load conversation"})
		return
	}

	if conv.UserA != userID && conv.UserB != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not a participant of this conversation"})
		return
	}

	msg, err := h.repo.AddMessage(c.Request.Context(), conversationID, userID, req.Body)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send message"})
		return
	}

	c.JSON(http.StatusCreated, msg)
}
