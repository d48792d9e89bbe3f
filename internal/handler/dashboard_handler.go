package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/ai-saathi-api/internal/dto"
	"github.com/noah-isme/ai-saathi-api/internal/middleware"
	"github.com/noah-isme/ai-saathi-api/internal/models"
	appErrors "github.com/noah-isme/ai-saathi-api/pkg/errors"
	"github.com/noah-isme/ai-saathi-api/pkg/response"
)

type dashboardService interface {
	Stats(ctx context.Context, teacherID, lang string) (*dto.DashboardStatsResponse, bool, error)
	Activities(ctx context.Context, teacherID, lang string, limit int) (*dto.DashboardActivitiesResponse, bool, error)
}

// DashboardHandler wires dashboard service to HTTP endpoints.
type DashboardHandler struct {
	service dashboardService
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(service dashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// Stats godoc
// @Summary Teacher dashboard statistics
// @Tags Dashboard
// @Produce json
// @Param teacherId query string false "Teacher to inspect (admins only)"
// @Param lang query string false "Response language"
// @Success 200 {object} response.Envelope
// @Router /dashboard/stats [get]
func (h *DashboardHandler) Stats(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	teacherID, err := dashboardTeacher(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	start := time.Now()
	stats, cacheHit, err := h.service.Stats(c.Request.Context(), teacherID, languageFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	respondWithMeta(c, stats, cacheHit, start)
}

// Activities godoc
// @Summary Recent teacher activity
// @Tags Dashboard
// @Produce json
// @Param limit query int false "Number of entries (max 50)"
// @Param teacherId query string false "Teacher to inspect (admins only)"
// @Param lang query string false "Response language"
// @Success 200 {object} response.Envelope
// @Router /dashboard/activities [get]
func (h *DashboardHandler) Activities(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	teacherID, err := dashboardTeacher(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	limit := 0
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "limit must be a positive integer"))
			return
		}
		limit = parsed
	}
	start := time.Now()
	feed, cacheHit, err := h.service.Activities(c.Request.Context(), teacherID, languageFromContext(c), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondWithMeta(c, feed, cacheHit, start)
}

// dashboardTeacher resolves whose dashboard is requested. Only admins may
// look at another teacher.
func dashboardTeacher(c *gin.Context) (string, error) {
	claims := claimsFromContext(c)
	if claims == nil {
		return "", appErrors.ErrUnauthorized
	}
	requested := strings.TrimSpace(c.Query("teacherId"))
	if requested == "" || requested == claims.UserID {
		return claims.UserID, nil
	}
	if claims.Role != models.RoleAdmin {
		return "", appErrors.ErrForbidden
	}
	return requested, nil
}

func respondWithMeta(c *gin.Context, data interface{}, cacheHit bool, start time.Time) {
	middleware.SetCacheHit(c, cacheHit)
	meta := middleware.ExtractMeta(c)
	if meta == nil {
		meta = map[string]interface{}{}
	}
	meta["processing_time_ms"] = time.Since(start).Milliseconds()
	response.JSON(c, http.StatusOK, data, nil, meta)
}
