package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/NOTSTEVEN4000/banano-api/internal/auth"
	"github.com/NOTSTEVEN4000/banano-api/internal/db"
	"github.com/NOTSTEVEN4000/banano-api/internal/middleware"
	"github.com/NOTSTEVEN4000/banano-api/internal/models"
	"github.com/sirupsen/logrus"
)

// AuthHandler handles authentication requests
type AuthHandler struct {
	authService    *auth.Service
	userCollection db.UserCollection
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(authService *auth.Service, userCollection db.UserCollection) *AuthHandler {
	return &AuthHandler{
		authService:    authService,
		userCollection: userCollection,
	}
}

// Login authenticates by username or email. Accounts lock for a while
// after too many failed attempts; the caller cannot tell a bad
// password from an unknown account.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var loginReq models.LoginRequest
	if !decodeJSON(w, r, &loginReq) {
		return
	}

	if loginReq.Login == "" || loginReq.Password == "" {
		writeError(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	user, err := h.userCollection.FindUserByLogin(r.Context(), loginReq.Login)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	if !user.IsActive {
		writeError(w, http.StatusUnauthorized, "Account is deactivated")
		return
	}

	now := time.Now()
	if user.LockedUntil != nil && user.LockedUntil.After(now) {
		writeError(w, http.StatusUnauthorized, "Account temporarily locked")
		return
	}

	if !h.authService.CheckPassword(loginReq.Password, user.PasswordHash) {
		failed := user.FailedLogins + 1
		var lockedUntil *time.Time
		if failed >= auth.MaxFailedLogins {
			t := now.Add(auth.LockoutDuration)
			lockedUntil = &t
			failed = 0
		}
		if err := h.userCollection.RecordLoginFailure(r.Context(), user.ID.Hex(), failed, lockedUntil); err != nil {
			logrus.WithError(err).Error("Failed to record login failure")
		}
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := h.authService.GenerateToken(user)
	if err != nil {
		logrus.WithError(err).Error("Failed to generate token")
		writeError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	if err := h.userCollection.RecordLoginSuccess(r.Context(), user.ID.Hex()); err != nil {
		logrus.WithError(err).Error("Failed to record login success")
	}

	writeJSON(w, http.StatusOK, models.LoginResponse{
		Token: token,
		User:  *user,
	})
}

// Register creates a user account. Only admins may register users,
// and only within their own tenant.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "User context not found")
		return
	}
	if claims.Role != models.RoleAdmin {
		writeError(w, http.StatusForbidden, "Insufficient permissions")
		return
	}

	var req models.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.authService.ValidateUsername(req.Username); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.authService.ValidateEmail(req.Email); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.authService.ValidatePassword(req.Password); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !models.IsValidRole(req.Role) {
		writeError(w, http.StatusBadRequest, "Invalid role")
		return
	}

	hash, err := h.authService.HashPassword(req.Password)
	if err != nil {
		logrus.WithError(err).Error("Failed to hash password")
		writeError(w, http.StatusInternalServerError, "Failed to create user")
		return
	}

	now := time.Now()
	user := models.User{
		Username:     strings.ToLower(strings.TrimSpace(req.Username)),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		FullName:     req.FullName,
		PasswordHash: hash,
		Role:         req.Role,
		EmpresaID:    claims.EmpresaID,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := h.userCollection.InsertUser(r.Context(), user); err != nil {
		if errors.Is(err, db.ErrDuplicateKey) {
			writeError(w, http.StatusConflict, "Username or email already exists")
			return
		}
		logrus.WithError(err).Error("Failed to insert user")
		writeError(w, http.StatusInternalServerError, "Failed to create user")
		return
	}

	logrus.WithFields(logrus.Fields{
		"usuario":    user.Username,
		"rol":        user.Role,
		"empresa_id": user.EmpresaID,
	}).Info("User registered")

	writeJSON(w, http.StatusCreated, user)
}

// Me returns the principal behind the presented token.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "User context not found")
		return
	}

	user, err := h.userCollection.FindUserByID(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}

	writeJSON(w, http.StatusOK, user)
}
