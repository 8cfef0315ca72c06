package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/NOTSTEVEN4000/banano-api/internal/auth"
	"github.com/NOTSTEVEN4000/banano-api/internal/middleware"
	"github.com/NOTSTEVEN4000/banano-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MockUserCollection is a mock implementation of db.UserCollection
type MockUserCollection struct {
	mock.Mock
}

func (m *MockUserCollection) InsertUser(ctx context.Context, user models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserCollection) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserCollection) FindUserByLogin(ctx context.Context, login string) (*models.User, error) {
	args := m.Called(ctx, login)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserCollection) RecordLoginSuccess(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserCollection) RecordLoginFailure(ctx context.Context, id string, failedLogins int, lockedUntil *time.Time) error {
	args := m.Called(ctx, id, failedLogins, lockedUntil)
	return args.Error(0)
}

func newAuthFixture(t *testing.T) (*AuthHandler, *auth.Service, *MockUserCollection) {
	t.Helper()
	service := auth.NewService("test-secret", time.Hour)
	users := new(MockUserCollection)
	return NewAuthHandler(service, users), service, users
}

func seedUser(t *testing.T, service *auth.Service, password string) *models.User {
	t.Helper()
	hash, err := service.HashPassword(password)
	require.NoError(t, err)
	return &models.User{
		ID:           primitive.NewObjectID(),
		Username:     "operador1",
		Email:        "operador1@example.com",
		PasswordHash: hash,
		Role:         models.RoleOperator,
		EmpresaID:    "emp-42",
		IsActive:     true,
	}
}

func postLogin(handler *AuthHandler, body interface{}) *httptest.ResponseRecorder {
	data, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewBuffer(data))
	rec := httptest.NewRecorder()
	handler.Login(rec, req)
	return rec
}

func TestAuthHandler_Login(t *testing.T) {
	handler, service, users := newAuthFixture(t)
	user := seedUser(t, service, "Secret123!")

	users.On("FindUserByLogin", mock.Anything, "operador1").Return(user, nil)
	users.On("RecordLoginSuccess", mock.Anything, user.ID.Hex()).Return(nil)

	rec := postLogin(handler, models.LoginRequest{Login: "operador1", Password: "Secret123!"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.LoginResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "operador1", resp.User.Username)

	claims, err := service.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "emp-42", claims.EmpresaID)
	users.AssertExpectations(t)
}

func TestAuthHandler_Login_WrongPassword(t *testing.T) {
	handler, service, users := newAuthFixture(t)
	user := seedUser(t, service, "Secret123!")

	users.On("FindUserByLogin", mock.Anything, "operador1").Return(user, nil)
	users.On("RecordLoginFailure", mock.Anything, user.ID.Hex(), 1, (*time.Time)(nil)).Return(nil)

	rec := postLogin(handler, models.LoginRequest{Login: "operador1", Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	users.AssertExpectations(t)
}

func TestAuthHandler_Login_LocksAfterMaxFailures(t *testing.T) {
	handler, service, users := newAuthFixture(t)
	user := seedUser(t, service, "Secret123!")
	user.FailedLogins = auth.MaxFailedLogins - 1

	users.On("FindUserByLogin", mock.Anything, "operador1").Return(user, nil)
	users.On("RecordLoginFailure", mock.Anything, user.ID.Hex(), 0, mock.MatchedBy(func(until *time.Time) bool {
		return until != nil && until.After(time.Now())
	})).Return(nil)

	rec := postLogin(handler, models.LoginRequest{Login: "operador1", Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	users.AssertExpectations(t)
}

func TestAuthHandler_Login_LockedAccount(t *testing.T) {
	handler, service, users := newAuthFixture(t)
	user := seedUser(t, service, "Secret123!")
	until := time.Now().Add(10 * time.Minute)
	user.LockedUntil = &until

	users.On("FindUserByLogin", mock.Anything, "operador1").Return(user, nil)

	// even the right password is refused while locked
	rec := postLogin(handler, models.LoginRequest{Login: "operador1", Password: "Secret123!"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	users.AssertNotCalled(t, "RecordLoginSuccess", mock.Anything, mock.Anything)
}

func TestAuthHandler_Login_UnknownUser(t *testing.T) {
	handler, _, users := newAuthFixture(t)
	users.On("FindUserByLogin", mock.Anything, "nadie").Return(nil, assert.AnError)

	rec := postLogin(handler, models.LoginRequest{Login: "nadie", Password: "whatever1"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthHandler_Login_MissingFields(t *testing.T) {
	handler, _, _ := newAuthFixture(t)
	rec := postLogin(handler, models.LoginRequest{Login: "operador1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthHandler_Register(t *testing.T) {
	handler, _, users := newAuthFixture(t)

	users.On("InsertUser", mock.Anything, mock.MatchedBy(func(u models.User) bool {
		return u.Username == "nuevo" && u.EmpresaID == "emp-42" && u.IsActive
	})).Return(nil)

	body, _ := json.Marshal(models.RegisterRequest{
		Username: "nuevo",
		Email:    "nuevo@example.com",
		Password: "Secret123!",
		Role:     models.RoleOperator,
	})
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewBuffer(body))
	ctx := context.WithValue(req.Context(), middleware.UserContextKey, &models.Claims{
		UserID:    "admin-1",
		Role:      models.RoleAdmin,
		EmpresaID: "emp-42",
	})
	rec := httptest.NewRecorder()
	handler.Register(rec, req.WithContext(ctx))

	assert.Equal(t, http.StatusCreated, rec.Code)
	users.AssertExpectations(t)
}

func TestAuthHandler_Register_NonAdmin(t *testing.T) {
	handler, _, users := newAuthFixture(t)

	body, _ := json.Marshal(models.RegisterRequest{
		Username: "nuevo",
		Email:    "nuevo@example.com",
		Password: "Secret123!",
		Role:     models.RoleOperator,
	})
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewBuffer(body))
	ctx := context.WithValue(req.Context(), middleware.UserContextKey, &models.Claims{
		UserID:    "op-1",
		Role:      models.RoleOperator,
		EmpresaID: "emp-42",
	})
	rec := httptest.NewRecorder()
	handler.Register(rec, req.WithContext(ctx))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	users.AssertNotCalled(t, "InsertUser", mock.Anything, mock.Anything)
}
