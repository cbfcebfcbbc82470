package withdrawal

import (
	"errors"
	"net/http"

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

// Submit godoc
// @Summary      Request a withdrawal
// @Description  Creates a pending withdrawal and debits the tokens from the tutor's balance in the same transaction. Safe to retry with an Idempotency-Key header.
// @Tags         withdrawals
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header    string         false  "Client-supplied idempotency key"
// @Param        request          body      SubmitRequest  true   "Withdrawal data"
// @Success      201              {object}  Withdrawal
// @Failure      400              {object}  api.ErrorResponse
// @Failure      402              {object}  api.ErrorResponse
// @Failure      403              {object}  api.ErrorResponse
// @Failure      409              {object}  api.ErrorResponse
// @Router       /withdrawals [post]
func (h *Handler) Submit(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req SubmitRequest
	if !api.BindJSON(c, &req) {
		return
	}

	idempotencyKey := c.GetHeader("Idempotency-Key")

	w, err := h.service.Submit(c.Request.Context(), userID, req, idempotencyKey)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotTutor):
			c.JSON(http.StatusForbidden, gin.H{"error": "Only tutors can withdraw tokens"})
		case errors.Is(err, ErrInvalidPayoutDetails):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, ErrInsufficientTokens):
			c.JSON(http.StatusPaymentRequired, gin.H{"error": err.Error()})
		case errors.Is(err, ErrIdempotencyConflict):
			c.JSON(http.StatusConflict, gin.H{"error": "Idempotency key already used with a different request"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit withdrawal"})
		}
		return
	}

	c.JSON(http.StatusCreated, w)
}

// ListMine godoc
// @Summary      My withdrawal history
// @Tags         withdrawals
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}   Withdrawal
// @Failure      401  {object}  api.ErrorResponse
// @Failure      500  {object}  api.ErrorResponse
// @Router       /withdrawals [get]
func (h *Handler) ListMine(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	ws, err := h.service.ListByTutor(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch withdrawals"})
		return
	}

	c.JSON(http.StatusOK, ws)
}
