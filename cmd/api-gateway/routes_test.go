package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/ai-saathi-api/internal/handler"
	"github.com/noah-isme/ai-saathi-api/internal/models"
	"github.com/noah-isme/ai-saathi-api/internal/service"
	appErrors "github.com/noah-isme/ai-saathi-api/pkg/errors"
)

type stubTokens map[string]*models.JWTClaims

func (s stubTokens) ValidateToken(token string) (*models.JWTClaims, error) {
	if claims, ok := s[token]; ok {
		return claims, nil
	}
	return nil, appErrors.ErrUnauthorized
}

func buildTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	translations := service.NewTranslationService(service.DefaultCatalog(), nil, nil, nil, service.TranslationServiceConfig{})
	r := gin.New()
	registerRoutes(r, routeDeps{
		APIPrefix: "/api/v1",
		Tokens: stubTokens{
			"teacher": {UserID: "t-1", Role: models.RoleTeacher},
			"admin":   {UserID: "a-1", Role: models.RoleAdmin},
		},
		Languages: translations,
		Auth:      handler.NewAuthHandler(nil),
		Students:  handler.NewStudentHandler(nil, nil),
		Dashboard: handler.NewDashboardHandler(nil),
		Workflows: handler.NewWorkflowHandler(nil, nil),
		I18n:      handler.NewI18nHandler(translations),
		Exports:   handler.NewExportHandler(nil),
		Metrics:   handler.NewMetricsHandler(nil, nil, nil),
	})
	return r
}

func serve(r http.Handler, method, target, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestRegisterRoutesGuards(t *testing.T) {
	r := buildTestRouter()

	cases := []struct {
		name   string
		method string
		target string
		token  string
		want   int
	}{
		{"health is public", http.MethodGet, "/health", "", http.StatusOK},
		{"ready without checks", http.MethodGet, "/ready", "", http.StatusOK},
		{"students need a token", http.MethodGet, "/api/v1/students", "", http.StatusUnauthorized},
		{"workflows need a token", http.MethodPost, "/api/v1/workflows", "", http.StatusUnauthorized},
		{"dashboard needs a token", http.MethodGet, "/api/v1/dashboard/stats", "bogus", http.StatusUnauthorized},
		{"register is admin only", http.MethodPost, "/api/v1/auth/register", "teacher", http.StatusForbidden},
		{"metrics summary is admin only", http.MethodGet, "/api/v1/metrics/summary", "teacher", http.StatusForbidden},
		{"translate needs a token", http.MethodPost, "/api/v1/i18n/translate", "", http.StatusUnauthorized},
		{"catalog is public", http.MethodGet, "/api/v1/i18n/hindi", "", http.StatusOK},
		{"languages are public", http.MethodGet, "/api/v1/i18n/languages", "", http.StatusOK},
		{"unknown catalog", http.MethodGet, "/api/v1/i18n/klingon", "", http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, serve(r, tc.method, tc.target, tc.token).Code)
		})
	}
}

func TestRegisterRoutesLanguageNegotiation(t *testing.T) {
	r := buildTestRouter()

	rec := serve(r, http.MethodGet, "/api/v1/i18n/languages?lang=tamil", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "tamil", rec.Header().Get("Content-Language"))
}

func TestRegisterRoutesTable(t *testing.T) {
	r := buildTestRouter()

	registered := map[string]bool{}
	for _, route := range r.Routes() {
		registered[route.Method+" "+route.Path] = true
	}
	for _, want := range []string{
		"POST /api/v1/auth/login",
		"POST /api/v1/auth/refresh",
		"POST /api/v1/auth/logout",
		"POST /api/v1/auth/change-password",
		"GET /api/v1/auth/me",
		"GET /api/v1/students",
		"POST /api/v1/students",
		"GET /api/v1/students/export",
		"GET /api/v1/students/:id",
		"PATCH /api/v1/students/:id",
		"DELETE /api/v1/students/:id",
		"GET /api/v1/exports/download",
		"GET /api/v1/dashboard/stats",
		"GET /api/v1/dashboard/activities",
		"GET /api/v1/agents",
		"GET /api/v1/workflows",
		"POST /api/v1/workflows",
		"GET /api/v1/workflows/templates",
		"POST /api/v1/workflows/templates/:name",
		"GET /api/v1/workflows/:id",
		"GET /metrics",
	} {
		assert.True(t, registered[want], want)
	}
}
