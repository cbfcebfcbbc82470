package user

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pramrakhani/Mentor-Bridge/internal/api"
	"github.com/pramrakhani/Mentor-Bridge/internal/auth"
	"github.com/pramrakhani/Mentor-Bridge/internal/ledger"
)

type Handler struct {
	service    Service
	ledgerRepo ledger.Repository
}

func NewHandler(service Service, ledgerRepo ledger.Repository) *Handler {
	return &Handler{
		service:    service,
		ledgerRepo: ledgerRepo,
	}
}

// Register godoc
// @Summary      Register new user
// @Description  Creates a student, mentor or tutor account, grants the starting tokens and returns access & refresh tokens.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      RegisterRequest  true  "User registration data"
// @Success      201      {object}  LoginResponse
// @Failure      400      {object}  api.ErrorResponse
// @Failure      409      {object}  api.ErrorResponse
// @Failure      500      {object}  api.ErrorResponse
// @Router       /auth/register [post]
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if !api.BindJSON(c, &req) {
		return
	}

	user, accessToken, refreshToken, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ErrEmailExists) {
			c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	c.JSON(http.StatusCreated, LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         *user,
	})
}

// Login godoc
// @Summary      Login user
// @Description  Authenticates user by email and password.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      LoginRequest  true  "User credentials"
// @Success      200      {object}  LoginResponse
// @Failure      400      {object}  api.ErrorResponse
// @Failure      401      {object}  api.ErrorResponse
// @Router       /auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if !api.BindJSON(c, &req) {
		return
	}

	user, accessToken, refreshToken, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         *user,
	})
}

// Refresh godoc
// @Summary      Refresh access token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      RefreshRequest  true  "Refresh token"
// @Success      200      {object}  gin.H
// @Failure      400      {object}  api.ErrorResponse
// @Failure      401      {object}  api.ErrorResponse
// @Router       /auth/refresh [post]
func (h *Handler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if !api.BindJSON(c, &req) {
		return
	}

	accessToken, user, err := h.service.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid refresh token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": accessToken,
		"user":         user,
	})
}

// GetMe godoc
// @Summary      Current user profile
// @Description  Returns the authenticated user together with their token balance.
// @Tags         users
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  Profile
// @Failure      401  {object}  api.ErrorResponse
// @Failure      500  {object}  api.ErrorResponse
// @Router       /me [get]
func (h *Handler) GetMe(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	user, err := h.service.GetByID(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load user"})
		return
	}

	balance, err := h.ledgerRepo.GetBalance(c.Request.Context(), userID)
	if err != nil && !errors.Is(err, ledger.ErrAccountNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load token balance"})
		return
	}

	c.JSON(http.StatusOK, Profile{User: *user, TokenBalance: balance})
}

// ListAdvisors godoc
// @Summary      Browse mentors and tutors
// @Description  Returns the advisor directory, filterable by type and subject.
// @Tags         users
// @Security     BearerAuth
// @Produce      json
// @Param        type     query     string  false  "Advisor type (mentor or tutor)"
// @Param        subject  query     string  false  "Subject filter"
// @Success      200      {array}   User
// @Failure      500      {object}  api.ErrorResponse
// @Router       /advisors [get]
func (h *Handler) ListAdvisors(c *gin.Context) {
	userType := c.Query("type")
	if userType != "" && userType != TypeMentor && userType != TypeTutor {
		c.JSON(http.StatusBadRequest, gin.H{"error": "type must be 'mentor' or 'tutor'"})
		return
	}

	advisors, err := h.service.ListAdvisors(c.Request.Context(), userType, c.Query("subject"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch advisors"})
		return
	}

	c.JSON(http.StatusOK, advisors)
}
