package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ai-saathi-api/internal/dto"
	"github.com/noah-isme/ai-saathi-api/internal/models"
	"github.com/noah-isme/ai-saathi-api/internal/service"
	appErrors "github.com/noah-isme/ai-saathi-api/pkg/errors"
)

type fakeStudentService struct {
	view       *models.StudentProfileView
	list       []models.StudentProfileView
	pagination *models.Pagination
	cacheHit   bool
	err        error

	lastQuery  dto.StudentListQuery
	lastLang   string
	lastID     int64
	lastActor  service.Actor
	lastCreate dto.CreateStudentProfileRequest
	lastUpdate dto.UpdateStudentProfileRequest
	deleted    bool
}

func (f *fakeStudentService) List(_ context.Context, query dto.StudentListQuery, lang string) ([]models.StudentProfileView, *models.Pagination, error) {
	f.lastQuery, f.lastLang = query, lang
	return f.list, f.pagination, f.err
}

func (f *fakeStudentService) Get(_ context.Context, id int64, lang string) (*models.StudentProfileView, bool, error) {
	f.lastID, f.lastLang = id, lang
	return f.view, f.cacheHit, f.err
}

func (f *fakeStudentService) Create(_ context.Context, actor service.Actor, req dto.CreateStudentProfileRequest, lang string) (*models.StudentProfileView, error) {
	f.lastActor, f.lastCreate, f.lastLang = actor, req, lang
	return f.view, f.err
}

func (f *fakeStudentService) Update(_ context.Context, actor service.Actor, id int64, req dto.UpdateStudentProfileRequest, lang string) (*models.StudentProfileView, error) {
	f.lastActor, f.lastID, f.lastUpdate, f.lastLang = actor, id, req, lang
	return f.view, f.err
}

func (f *fakeStudentService) Delete(_ context.Context, actor service.Actor, id int64) error {
	f.lastActor, f.lastID = actor, id
	if f.err == nil {
		f.deleted = true
	}
	return f.err
}

type fakeExporter struct {
	resp      *dto.ExportResponse
	err       error
	lastQuery dto.StudentExportQuery
}

func (f *fakeExporter) ExportRoster(_ context.Context, query dto.StudentExportQuery, _ string) (*dto.ExportResponse, error) {
	f.lastQuery = query
	return f.resp, f.err
}

func sampleView() *models.StudentProfileView {
	return &models.StudentProfileView{
		StudentProfile: models.StudentProfile{ID: 7, Name: "Asha", Class: "5A", Gender: models.GenderFemale},
		Age:            10,
		Accessibility:  models.ClassifyAccessibility("none"),
	}
}

func TestStudentHandlerListPassesQueryAndLanguage(t *testing.T) {
	svc := &fakeStudentService{
		list:       []models.StudentProfileView{*sampleView()},
		pagination: &models.Pagination{Page: 2, PageSize: 5, TotalCount: 6},
	}
	handler := NewStudentHandler(svc, nil)

	c, rec := newTestContext(http.MethodGet, "/students?class=5A&specialStatus=Blind&page=2&limit=5&sort=name&order=desc&search=as", nil)
	withLanguage(c, "hindi")
	handler.List(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, dto.StudentListQuery{Search: "as", Class: "5A", SpecialStatus: "Blind", Page: 2, Limit: 5, Sort: "name", Order: "desc"}, svc.lastQuery)
	assert.Equal(t, "hindi", svc.lastLang)

	var views []models.StudentProfileView
	decodeData(t, rec, &views)
	require.Len(t, views, 1)
	assert.Equal(t, "Asha", views[0].Name)
	assert.NotNil(t, decodeEnvelope(t, rec).Pagination)
}

func TestStudentHandlerListRejectsBadPage(t *testing.T) {
	handler := NewStudentHandler(&fakeStudentService{}, nil)

	c, rec := newTestContext(http.MethodGet, "/students?page=abc", nil)
	handler.List(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, appErrors.ErrValidation.Code, decodeEnvelope(t, rec).Error.Code)
}

func TestStudentHandlerGet(t *testing.T) {
	svc := &fakeStudentService{view: sampleView(), cacheHit: true}
	handler := NewStudentHandler(svc, nil)

	c, rec := newTestContext(http.MethodGet, "/students/7", nil)
	c.AddParam("id", "7")
	handler.Get(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(7), svc.lastID)
	assert.Equal(t, defaultLanguage, svc.lastLang)
	assert.Equal(t, true, decodeEnvelope(t, rec).Meta["cache_hit"])
}

func TestStudentHandlerGetInvalidID(t *testing.T) {
	handler := NewStudentHandler(&fakeStudentService{}, nil)

	for _, raw := range []string{"abc", "0", "-3"} {
		c, rec := newTestContext(http.MethodGet, "/students/"+raw, nil)
		c.AddParam("id", raw)
		handler.Get(c)
		assert.Equal(t, http.StatusBadRequest, rec.Code, raw)
	}
}

func TestStudentHandlerGetNotFound(t *testing.T) {
	handler := NewStudentHandler(&fakeStudentService{err: appErrors.Clone(appErrors.ErrNotFound, "student not found")}, nil)

	c, rec := newTestContext(http.MethodGet, "/students/99", nil)
	c.AddParam("id", "99")
	handler.Get(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "student not found", decodeEnvelope(t, rec).Error.Message)
}

func TestStudentHandlerCreate(t *testing.T) {
	svc := &fakeStudentService{view: sampleView()}
	handler := NewStudentHandler(svc, nil)

	c, rec := newTestContext(http.MethodPost, "/students", map[string]interface{}{
		"name":        "Asha",
		"dateOfBirth": "2015-04-01",
		"gender":      "Female",
		"class":       "5A",
		"unknown":     "ignored",
	})
	c.Request.Header.Set("User-Agent", "handler-test")
	withClaims(c, teacherClaims)
	handler.Create(c)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Asha", svc.lastCreate.Name)
	assert.Equal(t, "teacher-1", svc.lastActor.UserID)
	assert.Equal(t, "handler-test", svc.lastActor.UserAgent)
}

func TestStudentHandlerCreateRequiresClaims(t *testing.T) {
	handler := NewStudentHandler(&fakeStudentService{}, nil)

	c, rec := newTestContext(http.MethodPost, "/students", map[string]string{"name": "Asha"})
	handler.Create(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestStudentHandlerCreateMalformedJSON(t *testing.T) {
	handler := NewStudentHandler(&fakeStudentService{}, nil)

	c, rec := newTestContext(http.MethodPost, "/students", `{"name":`)
	withClaims(c, teacherClaims)
	handler.Create(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStudentHandlerUpdate(t *testing.T) {
	svc := &fakeStudentService{view: sampleView()}
	handler := NewStudentHandler(svc, nil)

	c, rec := newTestContext(http.MethodPatch, "/students/7", `{"class":"6B","photo":null}`)
	c.AddParam("id", "7")
	withClaims(c, teacherClaims)
	handler.Update(c)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.lastUpdate.Class)
	assert.Equal(t, "6B", *svc.lastUpdate.Class)
	assert.Nil(t, svc.lastUpdate.Photo)
	assert.Nil(t, svc.lastUpdate.Name)
}

func TestStudentHandlerDelete(t *testing.T) {
	svc := &fakeStudentService{}
	handler := NewStudentHandler(svc, nil)

	c, rec := newTestContext(http.MethodDelete, "/students/7", nil)
	c.AddParam("id", "7")
	withClaims(c, adminClaims)
	handler.Delete(c)
	c.Writer.WriteHeaderNow()

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.True(t, svc.deleted)
	assert.Equal(t, "admin-1", svc.lastActor.UserID)
}

func TestStudentHandlerExport(t *testing.T) {
	exporter := &fakeExporter{resp: &dto.ExportResponse{Format: "pdf", Rows: 3, Token: "tok", DownloadURL: "/api/v1/exports/download?token=tok"}}
	handler := NewStudentHandler(&fakeStudentService{}, exporter)

	c, rec := newTestContext(http.MethodGet, "/students/export?format=pdf&class=5A", nil)
	handler.Export(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pdf", exporter.lastQuery.Format)
	assert.Equal(t, "5A", exporter.lastQuery.Class)
}

func TestStudentHandlerExportWithoutExporter(t *testing.T) {
	handler := NewStudentHandler(&fakeStudentService{}, nil)

	c, rec := newTestContext(http.MethodGet, "/students/export", nil)
	handler.Export(c)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
