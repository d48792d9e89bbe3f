package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ai-saathi-api/internal/models"
	"github.com/noah-isme/ai-saathi-api/internal/service"
	appErrors "github.com/noah-isme/ai-saathi-api/pkg/errors"
)

type fakeAuthService struct {
	err error

	lastLogin    models.LoginRequest
	lastRefresh  models.RefreshTokenRequest
	lastLogout   string
	lastUserID   string
	lastChange   models.ChangePasswordRequest
	lastRegister service.RegisterUserRequest
}

func (f *fakeAuthService) Login(_ context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	f.lastLogin = req
	if f.err != nil {
		return nil, f.err
	}
	return &models.LoginResponse{AccessToken: "access", RefreshToken: "refresh", User: models.UserInfo{ID: "teacher-1"}}, nil
}

func (f *fakeAuthService) RefreshToken(_ context.Context, req models.RefreshTokenRequest) (*models.RefreshTokenResponse, error) {
	f.lastRefresh = req
	if f.err != nil {
		return nil, f.err
	}
	return &models.RefreshTokenResponse{AccessToken: "access-2"}, nil
}

func (f *fakeAuthService) Logout(_ context.Context, refreshToken string, userID string, _ models.LoginRequest) error {
	f.lastLogout, f.lastUserID = refreshToken, userID
	return f.err
}

func (f *fakeAuthService) ChangePassword(_ context.Context, userID string, req models.ChangePasswordRequest) error {
	f.lastUserID, f.lastChange = userID, req
	return f.err
}

func (f *fakeAuthService) Me(_ context.Context, userID string) (*models.UserInfo, error) {
	f.lastUserID = userID
	if f.err != nil {
		return nil, f.err
	}
	return &models.UserInfo{ID: userID, Language: "hindi"}, nil
}

func (f *fakeAuthService) Register(_ context.Context, req service.RegisterUserRequest) (*models.UserInfo, error) {
	f.lastRegister = req
	if f.err != nil {
		return nil, f.err
	}
	return &models.UserInfo{ID: "new-user", Email: req.Email, Role: req.Role}, nil
}

func TestAuthHandlerLogin(t *testing.T) {
	svc := &fakeAuthService{}
	handler := NewAuthHandler(svc)

	c, rec := newTestContext(http.MethodPost, "/auth/login", map[string]string{"email": "t@school.in", "password": "secret"})
	c.Request.Header.Set("User-Agent", "browser")
	handler.Login(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "t@school.in", svc.lastLogin.Email)
	assert.Equal(t, "browser", svc.lastLogin.UserAgent)

	var res models.LoginResponse
	decodeData(t, rec, &res)
	assert.Equal(t, "access", res.AccessToken)
}

func TestAuthHandlerLoginInvalidCredentials(t *testing.T) {
	handler := NewAuthHandler(&fakeAuthService{err: appErrors.ErrInvalidCredentials})

	c, rec := newTestContext(http.MethodPost, "/auth/login", map[string]string{"email": "t@school.in", "password": "wrong"})
	handler.Login(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, decodeEnvelope(t, rec).Error.Code)
}

func TestAuthHandlerRefreshMalformed(t *testing.T) {
	handler := NewAuthHandler(&fakeAuthService{})

	c, rec := newTestContext(http.MethodPost, "/auth/refresh", `not json`)
	handler.Refresh(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthHandlerLogout(t *testing.T) {
	svc := &fakeAuthService{}
	handler := NewAuthHandler(svc)

	c, rec := newTestContext(http.MethodPost, "/auth/logout", map[string]string{"refresh_token": "refresh"})
	withClaims(c, teacherClaims)
	handler.Logout(c)
	c.Writer.WriteHeaderNow()

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "refresh", svc.lastLogout)
	assert.Equal(t, "teacher-1", svc.lastUserID)
}

func TestAuthHandlerLogoutRequiresToken(t *testing.T) {
	handler := NewAuthHandler(&fakeAuthService{})

	c, rec := newTestContext(http.MethodPost, "/auth/logout", map[string]string{})
	withClaims(c, teacherClaims)
	handler.Logout(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthHandlerChangePassword(t *testing.T) {
	svc := &fakeAuthService{}
	handler := NewAuthHandler(svc)

	c, rec := newTestContext(http.MethodPost, "/auth/change-password", map[string]string{"old_password": "a", "new_password": "b12345"})
	handler.ChangePassword(c)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	c, rec = newTestContext(http.MethodPost, "/auth/change-password", map[string]string{"old_password": "a", "new_password": "b12345"})
	withClaims(c, teacherClaims)
	handler.ChangePassword(c)
	c.Writer.WriteHeaderNow()
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "b12345", svc.lastChange.NewPassword)
}

func TestAuthHandlerMe(t *testing.T) {
	svc := &fakeAuthService{}
	handler := NewAuthHandler(svc)

	c, rec := newTestContext(http.MethodGet, "/auth/me", nil)
	withClaims(c, teacherClaims)
	handler.Me(c)

	require.Equal(t, http.StatusOK, rec.Code)
	var info models.UserInfo
	decodeData(t, rec, &info)
	assert.Equal(t, "teacher-1", info.ID)
	assert.Equal(t, "hindi", info.Language)
}

func TestAuthHandlerRegister(t *testing.T) {
	svc := &fakeAuthService{}
	handler := NewAuthHandler(svc)

	c, rec := newTestContext(http.MethodPost, "/auth/register", map[string]string{
		"email":     "new@school.in",
		"password":  "secret1",
		"full_name": "New Teacher",
		"role":      "TEACHER",
	})
	handler.Register(c)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, models.RoleTeacher, svc.lastRegister.Role)
}

func TestAuthHandlerRegisterConflict(t *testing.T) {
	handler := NewAuthHandler(&fakeAuthService{err: appErrors.Clone(appErrors.ErrConflict, "email already registered")})

	c, rec := newTestContext(http.MethodPost, "/auth/register", map[string]string{"email": "dup@school.in"})
	handler.Register(c)

	assert.Equal(t, http.StatusConflict, rec.Code)
}
