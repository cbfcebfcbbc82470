package admin

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pramrakhani/Mentor-Bridge/internal/api"
	"github.com/pramrakhani/Mentor-Bridge/internal/ledger"
	"github.com/pramrakhani/Mentor-Bridge/internal/session"
	"github.com/pramrakhani/Mentor-Bridge/internal/user"
	"github.com/pramrakhani/Mentor-Bridge/internal/withdrawal"
)

type Handler struct {
	userRepo          user.Repository
	ledgerRepo        ledger.Repository
	sessionRepo       session.Repository
	withdrawalService withdrawal.Service
	withdrawalRepo    withdrawal.Repository
}

func NewHandler(
	userRepo user.Repository,
	ledgerRepo ledger.Repository,
	sessionRepo session.Repository,
	withdrawalService withdrawal.Service,
	withdrawalRepo withdrawal.Repository,
) *Handler {
	return &Handler{
		userRepo:          userRepo,
		ledgerRepo:        ledgerRepo,
		sessionRepo:       sessionRepo,
		withdrawalService: withdrawalService,
		withdrawalRepo:    withdrawalRepo,
	}
}

type Stats struct {
	UsersByType         map[string]int64 `json:"users_by_type"`
	TokensInCirculation int64            `json:"tokens_in_circulation"`
	TotalSessions       int64            `json:"total_sessions"`
	PendingWithdrawals  int64            `json:"pending_withdrawals"`
}

type TopUpRequest struct {
	UserID int64 `json:"user_id" binding:"required"`
	Tokens int64 `json:"tokens" binding:"required,gt=0"`
}

// GetStats godoc
// @Summary      Platform statistics
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  Stats
// @Failure      500  {object}  api.ErrorResponse
// @Router       /admin/stats [get]
func (h *Handler) GetStats(c *gin.Context) {
	ctx := c.Request.Context()

	usersByType, err := h.userRepo.CountByType(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count users"})
		return
	}

	totalTokens, err := h.ledgerRepo.TotalTokens(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to sum token balances"})
		return
	}

	totalSessions, err := h.sessionRepo.CountSessions(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count sessions"})
		return
	}

	pendingWithdrawals, err := h.withdrawalRepo.CountPending(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count withdrawals"})
		return
	}

	c.JSON(http.StatusOK, Stats{
		UsersByType:         usersByType,
		TokensInCirculation: totalTokens,
		TotalSessions:       totalSessions,
		PendingWithdrawals:  pendingWithdrawals,
	})
}

// ListPendingWithdrawals godoc
// @Summary      Pending withdrawal requests
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}   withdrawal.WithdrawalWithTutor
// @Failure      500  {object}  api.ErrorResponse
// @Router       /admin/withdrawals [get]
func (h *Handler) ListPendingWithdrawals(c *gin.Context) {
	ws, err := h.withdrawalService.ListPending(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch withdrawals"})
		return
	}

	c.JSON(http.StatusOK, ws)
}

// ApproveWithdrawal godoc
// @Summary      Approve a pending withdrawal
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Param        withdrawalID  path      int  true  "Withdrawal ID"
// @Success      200           {object}  withdrawal.Withdrawal
// @Failure      400           {object}  api.ErrorResponse
// @Failure      404           {object}  api.ErrorResponse
// @Router       /admin/withdrawals/{withdrawalID}/approve [post]
func (h *Handler) ApproveWithdrawal(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("withdrawalID"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid withdrawal ID"})
		return
	}

	w, err := h.withdrawalService.Approve(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, withdrawal.ErrWithdrawalNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Withdrawal not found"})
		case errors.Is(err, withdrawal.ErrInvalidTransition):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Withdrawal is not pending"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to approve withdrawal"})
		}
		return
	}

	c.JSON(http.StatusOK, w)
}

// RejectWithdrawal godoc
// @Summary      Reject a pending withdrawal
// @Description  Rejects the request and refunds the held tokens to the tutor.
// @Tags         admin
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        withdrawalID  path      int                        true  "Withdrawal ID"
// @Param        request       body      withdrawal.RejectRequest   true  "Rejection reason"
// @Success      200           {object}  withdrawal.Withdrawal
// @Failure      400           {object}  api.ErrorResponse
// @Failure      404           {object}  api.ErrorResponse
// @Router       /admin/withdrawals/{withdrawalID}/reject [post]
func (h *Handler) RejectWithdrawal(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("withdrawalID"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid withdrawal ID"})
		return
	}

	var req withdrawal.RejectRequest
	if !api.BindJSON(c, &req) {
		return
	}

	w, err := h.withdrawalService.Reject(c.Request.Context(), id, req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, withdrawal.ErrWithdrawalNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Withdrawal not found"})
		case errors.Is(err, withdrawal.ErrInvalidTransition):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Withdrawal is not pending"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reject withdrawal"})
		}
		return
	}

	c.JSON(http.StatusOK, w)
}

// TopUp godoc
// @Summary      Credit tokens to a user
// @Tags         admin
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      TopUpRequest  true  "Top-up data"
// @Success      200      {object}  gin.H
// @Failure      400      {object}  api.ErrorResponse
// @Failure      404      {object}  api.ErrorResponse
// @Router       /admin/topup [post]
func (h *Handler) TopUp(c *gin.Context) {
	var req TopUpRequest
	if !api.BindJSON(c, &req) {
		return
	}

	balance, err := h.ledgerRepo.Credit(c.Request.Context(), req.UserID, req.Tokens, ledger.TxAdminTopUp)
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrAccountNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Token account not found"})
		case errors.Is(err, ledger.ErrInvalidAmount):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Tokens must be positive"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to credit tokens"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Tokens credited",
		"user_id":     req.UserID,
		"new_balance": balance,
	})
}
