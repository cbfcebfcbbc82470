package session

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pramrakhani/Mentor-Bridge/internal/api"
	"github.com/pramrakhani/Mentor-Bridge/internal/auth"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Book godoc
// @Summary      Book a session
// @Description  Creates a session with a mentor or tutor and debits the token cost in the same transaction.
// @Tags         sessions
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      BookRequest  true  "Booking data"
// @Success      201      {object}  BookResponse
// @Failure      400      {object}  api.ErrorResponse
// @Failure      402      {object}  api.ErrorResponse
// @Failure      404      {object}  api.ErrorResponse
// @Failure      500      {object}  api.ErrorResponse
// @Router       /sessions [post]
func (h *Handler) Book(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req BookRequest
	if !api.BindJSON(c, &req) {
		return
	}

	created, remaining, err := h.service.Book(c.Request.Context(), userID, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrMentorNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Mentor not found"})
		case errors.Is(err, ErrNotAnAdvisor):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Selected user is not a mentor or tutor"})
		case errors.Is(err, ErrSelfBooking):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot book a session with yourself"})
		case errors.Is(err, ErrScheduledInPast):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot book a session in the past"})
		case errors.Is(err, ErrInvalidDuration):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Duration must be positive"})
		case errors.Is(err, ErrInsufficientTokens):
			c.JSON(http.StatusPaymentRequired, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to book session"})
		}
		return
	}

	c.JSON(http.StatusCreated, BookResponse{
		Session:          created,
		RemainingBalance: remaining,
	})
}

// ListMySessions godoc
// @Summary      List my sessions
// @Description  Returns sessions where the authenticated user is the student or the advisor.
// @Tags         sessions
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}   SessionWithNames
// @Failure      500  {object}  api.ErrorResponse
// @Router       /sessions [get]
func (h *Handler) ListMySessions(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	sessions, err := h.service.ListForUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch sessions"})
		return
	}

	c.JSON(http.StatusOK, sessions)
}

// Complete godoc
// @Summary      Mark session completed
// @Tags         sessions
// @Security     BearerAuth
// @Produce      json
// @Param        sessionID  path      int  true  "Session ID"
// @Success      200        {object}  api.MessageResponse
// @Failure      400        {object}  api.ErrorResponse
// @Failure      403        {object}  api.ErrorResponse
// @Failure      404        {object}  api.ErrorResponse
// @Router       /sessions/{sessionID}/complete [post]
func (h *Handler) Complete(c *gin.Context) {
	h.transition(c, h.service.Complete, "Session marked as completed")
}

// Cancel godoc
// @Summary      Cancel session
// @Description  Cancels an upcoming session and refunds its token cost to the student.
// @Tags         sessions
// @Security     BearerAuth
// @Produce      json
// @Param        sessionID  path      int  true  "Session ID"
// @Success      200        {object}  api.MessageResponse
// @Failure      400        {object}  api.ErrorResponse
// @Failure      403        {object}  api.ErrorResponse
// @Failure      404        {object}  api.ErrorResponse
// @Router       /sessions/{sessionID}/cancel [post]
func (h *Handler) Cancel(c *gin.Context) {
	h.transition(c, h.service.Cancel, "Session cancelled")
}

func (h *Handler) transition(c *gin.Context, fn func(ctx context.Context, userID, sessionID int64) error, okMessage string) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	sessionID, err := strconv.ParseInt(c.Param("sessionID"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid session ID"})
		return
	}

	if err := fn(c.Request.Context(), userID, sessionID); err != nil {
		switch {
		case errors.Is(err, ErrSessionNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		case errors.Is(err, ErrNotParticipant):
			c.JSON(http.StatusForbidden, gin.H{"error": "You are not a participant of this session"})
		case errors.Is(err, ErrInvalidTransition):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Session is not upcoming"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update session"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": okMessage})
}
