package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ai-saathi-api/internal/dto"
	"github.com/noah-isme/ai-saathi-api/internal/models"
)

type fakeDashboardSrv struct {
	stats      *dto.DashboardStatsResponse
	activities *dto.DashboardActivitiesResponse
	cacheHit   bool
	err        error

	lastTeacher string
	lastLang    string
	lastLimit   int
}

func (f *fakeDashboardSrv) Stats(_ context.Context, teacherID, lang string) (*dto.DashboardStatsResponse, bool, error) {
	f.lastTeacher, f.lastLang = teacherID, lang
	return f.stats, f.cacheHit, f.err
}

func (f *fakeDashboardSrv) Activities(_ context.Context, teacherID, lang string, limit int) (*dto.DashboardActivitiesResponse, bool, error) {
	f.lastTeacher, f.lastLang, f.lastLimit = teacherID, lang, limit
	return f.activities, f.cacheHit, f.err
}

func TestDashboardHandlerStats(t *testing.T) {
	srv := &fakeDashboardSrv{
		stats:    &dto.DashboardStatsResponse{Language: "tamil", Stats: models.DashboardStats{}},
		cacheHit: true,
	}
	handler := NewDashboardHandler(srv)

	c, rec := newTestContext(http.MethodGet, "/dashboard/stats", nil)
	withClaims(c, teacherClaims)
	withLanguage(c, "tamil")
	handler.Stats(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "teacher-1", srv.lastTeacher)
	assert.Equal(t, "tamil", srv.lastLang)
	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, true, envelope.Meta["cache_hit"])
	assert.Contains(t, envelope.Meta, "processing_time_ms")
}

func TestDashboardHandlerStatsRequiresClaims(t *testing.T) {
	handler := NewDashboardHandler(&fakeDashboardSrv{})

	c, rec := newTestContext(http.MethodGet, "/dashboard/stats", nil)
	handler.Stats(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDashboardHandlerTeacherOverride(t *testing.T) {
	srv := &fakeDashboardSrv{stats: &dto.DashboardStatsResponse{}}
	handler := NewDashboardHandler(srv)

	c, rec := newTestContext(http.MethodGet, "/dashboard/stats?teacherId=teacher-2", nil)
	withClaims(c, teacherClaims)
	handler.Stats(c)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	c, rec = newTestContext(http.MethodGet, "/dashboard/stats?teacherId=teacher-2", nil)
	withClaims(c, adminClaims)
	handler.Stats(c)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "teacher-2", srv.lastTeacher)
}

func TestDashboardHandlerActivitiesLimit(t *testing.T) {
	srv := &fakeDashboardSrv{activities: &dto.DashboardActivitiesResponse{Language: "english", Activities: []models.ActivityView{}}}
	handler := NewDashboardHandler(srv)

	c, rec := newTestContext(http.MethodGet, "/dashboard/activities?limit=5", nil)
	withClaims(c, teacherClaims)
	handler.Activities(c)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, srv.lastLimit)

	c, rec = newTestContext(http.MethodGet, "/dashboard/activities", nil)
	withClaims(c, teacherClaims)
	handler.Activities(c)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, srv.lastLimit)

	for _, raw := range []string{"0", "x", "-1"} {
		c, rec = newTestContext(http.MethodGet, "/dashboard/activities?limit="+raw, nil)
		withClaims(c, teacherClaims)
		handler.Activities(c)
		assert.Equal(t, http.StatusBadRequest, rec.Code, raw)
	}
}
