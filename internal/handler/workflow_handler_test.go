package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ai-saathi-api/internal/dto"
	"github.com/noah-isme/ai-saathi-api/internal/models"
	appErrors "github.com/noah-isme/ai-saathi-api/pkg/errors"
)

type fakeWorkflowService struct {
	err error

	syncCalls    int
	asyncCalls   int
	lastTeacher  string
	lastRequest  dto.ExecuteWorkflowRequest
	lastTemplate string
	lastAsync    bool
	lastID       string
	lastQuery    dto.WorkflowListQuery
}

func (f *fakeWorkflowService) workflow(status models.WorkflowStatus) (*models.Workflow, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.Workflow{ID: "wf-1", TeacherID: f.lastTeacher, Status: status}, nil
}

func (f *fakeWorkflowService) Execute(_ context.Context, teacherID string, req dto.ExecuteWorkflowRequest) (*models.Workflow, error) {
	f.syncCalls++
	f.lastTeacher, f.lastRequest = teacherID, req
	return f.workflow(models.WorkflowCompleted)
}

func (f *fakeWorkflowService) ExecuteAsync(_ context.Context, teacherID string, req dto.ExecuteWorkflowRequest) (*models.Workflow, error) {
	f.asyncCalls++
	f.lastTeacher, f.lastRequest = teacherID, req
	return f.workflow(models.WorkflowPending)
}

func (f *fakeWorkflowService) ExecuteTemplate(_ context.Context, teacherID, name string, async bool) (*models.Workflow, error) {
	f.lastTeacher, f.lastTemplate, f.lastAsync = teacherID, name, async
	return f.workflow(models.WorkflowCompleted)
}

func (f *fakeWorkflowService) Templates() []dto.WorkflowTemplate {
	return []dto.WorkflowTemplate{{Name: "complete_lesson"}, {Name: "multilingual_content"}}
}

func (f *fakeWorkflowService) Get(_ context.Context, teacherID, id string) (*models.Workflow, error) {
	f.lastTeacher, f.lastID = teacherID, id
	return f.workflow(models.WorkflowCompleted)
}

func (f *fakeWorkflowService) List(_ context.Context, teacherID string, query dto.WorkflowListQuery) ([]models.Workflow, *models.Pagination, error) {
	f.lastTeacher, f.lastQuery = teacherID, query
	if f.err != nil {
		return nil, nil, f.err
	}
	return []models.Workflow{}, &models.Pagination{Page: 1, PageSize: 20}, nil
}

type fakeAgentCatalog struct{}

func (fakeAgentCatalog) Agents() []models.AgentInfo {
	return []models.AgentInfo{{Name: models.AgentLessonPlan, DisplayName: "Lesson Plan"}}
}

func (fakeAgentCatalog) Demo() bool { return true }

func TestWorkflowHandlerAgents(t *testing.T) {
	handler := NewWorkflowHandler(&fakeWorkflowService{}, fakeAgentCatalog{})

	c, rec := newTestContext(http.MethodGet, "/agents", nil)
	handler.Agents(c)

	require.Equal(t, http.StatusOK, rec.Code)
	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, true, envelope.Meta["demo"])
	var agents []map[string]interface{}
	decodeData(t, rec, &agents)
	require.Len(t, agents, 1)
	assert.Equal(t, "lesson_plan", agents[0]["id"])
}

func TestWorkflowHandlerExecuteSync(t *testing.T) {
	svc := &fakeWorkflowService{}
	handler := NewWorkflowHandler(svc, fakeAgentCatalog{})

	c, rec := newTestContext(http.MethodPost, "/workflows", map[string]interface{}{
		"tasks": []map[string]interface{}{
			{"id": "lesson", "agent": "lesson_plan", "input_data": map[string]string{"topic": "Water"}},
		},
	})
	withClaims(c, teacherClaims)
	handler.Execute(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, svc.syncCalls)
	assert.Equal(t, "teacher-1", svc.lastTeacher)
	require.Len(t, svc.lastRequest.Tasks, 1)
	assert.Equal(t, "lesson", svc.lastRequest.Tasks[0].ID)
}

func TestWorkflowHandlerExecuteAsync(t *testing.T) {
	svc := &fakeWorkflowService{}
	handler := NewWorkflowHandler(svc, fakeAgentCatalog{})

	c, rec := newTestContext(http.MethodPost, "/workflows", map[string]interface{}{
		"async": true,
		"tasks": []map[string]interface{}{{"agent": "lesson_plan"}},
	})
	withClaims(c, teacherClaims)
	handler.Execute(c)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, 1, svc.asyncCalls)
	assert.Equal(t, 0, svc.syncCalls)
}

func TestWorkflowHandlerExecuteErrors(t *testing.T) {
	handler := NewWorkflowHandler(&fakeWorkflowService{}, fakeAgentCatalog{})
	c, rec := newTestContext(http.MethodPost, "/workflows", map[string]interface{}{"tasks": []interface{}{}})
	handler.Execute(c)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	c, rec = newTestContext(http.MethodPost, "/workflows", `{"tasks":`)
	withClaims(c, teacherClaims)
	handler.Execute(c)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	handler = NewWorkflowHandler(&fakeWorkflowService{err: appErrors.Clone(appErrors.ErrValidation, "invalid workflow payload")}, fakeAgentCatalog{})
	c, rec = newTestContext(http.MethodPost, "/workflows", map[string]interface{}{"tasks": []interface{}{}})
	withClaims(c, teacherClaims)
	handler.Execute(c)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid workflow payload", decodeEnvelope(t, rec).Error.Message)
}

func TestWorkflowHandlerTemplates(t *testing.T) {
	handler := NewWorkflowHandler(&fakeWorkflowService{}, fakeAgentCatalog{})

	c, rec := newTestContext(http.MethodGet, "/workflows/templates", nil)
	handler.Templates(c)

	require.Equal(t, http.StatusOK, rec.Code)
	var templates []dto.WorkflowTemplate
	decodeData(t, rec, &templates)
	assert.Len(t, templates, 2)
}

func TestWorkflowHandlerExecuteTemplate(t *testing.T) {
	svc := &fakeWorkflowService{}
	handler := NewWorkflowHandler(svc, fakeAgentCatalog{})

	c, rec := newTestContext(http.MethodPost, "/workflows/templates/complete_lesson?async=true", nil)
	c.AddParam("name", "complete_lesson")
	withClaims(c, teacherClaims)
	handler.ExecuteTemplate(c)
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "complete_lesson", svc.lastTemplate)
	assert.True(t, svc.lastAsync)

	c, rec = newTestContext(http.MethodPost, "/workflows/templates/complete_lesson?async=maybe", nil)
	c.AddParam("name", "complete_lesson")
	withClaims(c, teacherClaims)
	handler.ExecuteTemplate(c)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	handler = NewWorkflowHandler(&fakeWorkflowService{err: appErrors.Clone(appErrors.ErrNotFound, "workflow template not found")}, fakeAgentCatalog{})
	c, rec = newTestContext(http.MethodPost, "/workflows/templates/unknown", nil)
	c.AddParam("name", "unknown")
	withClaims(c, teacherClaims)
	handler.ExecuteTemplate(c)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWorkflowHandlerGetScopesByRole(t *testing.T) {
	svc := &fakeWorkflowService{}
	handler := NewWorkflowHandler(svc, fakeAgentCatalog{})

	c, rec := newTestContext(http.MethodGet, "/workflows/wf-1", nil)
	c.AddParam("id", "wf-1")
	withClaims(c, teacherClaims)
	handler.Get(c)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "teacher-1", svc.lastTeacher)
	assert.Equal(t, "wf-1", svc.lastID)

	c, rec = newTestContext(http.MethodGet, "/workflows/wf-1", nil)
	c.AddParam("id", "wf-1")
	withClaims(c, adminClaims)
	handler.Get(c)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "", svc.lastTeacher)
}

func TestWorkflowHandlerList(t *testing.T) {
	svc := &fakeWorkflowService{}
	handler := NewWorkflowHandler(svc, fakeAgentCatalog{})

	c, rec := newTestContext(http.MethodGet, "/workflows?status=completed&page=2&limit=10", nil)
	withClaims(c, teacherClaims)
	handler.List(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, dto.WorkflowListQuery{Status: "completed", Page: 2, Limit: 10}, svc.lastQuery)
	assert.NotNil(t, decodeEnvelope(t, rec).Pagination)
}
