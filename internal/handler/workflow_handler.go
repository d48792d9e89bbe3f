package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/ai-saathi-api/internal/dto"
	"github.com/noah-isme/ai-saathi-api/internal/models"
	appErrors "github.com/noah-isme/ai-saathi-api/pkg/errors"
	"github.com/noah-isme/ai-saathi-api/pkg/response"
)

type workflowService interface {
	Execute(ctx context.Context, teacherID string, req dto.ExecuteWorkflowRequest) (*models.Workflow, error)
	ExecuteAsync(ctx context.Context, teacherID string, req dto.ExecuteWorkflowRequest) (*models.Workflow, error)
	ExecuteTemplate(ctx context.Context, teacherID, name string, async bool) (*models.Workflow, error)
	Templates() []dto.WorkflowTemplate
	Get(ctx context.Context, teacherID, id string) (*models.Workflow, error)
	List(ctx context.Context, teacherID string, query dto.WorkflowListQuery) ([]models.Workflow, *models.Pagination, error)
}

type agentCatalog interface {
	Agents() []models.AgentInfo
	Demo() bool
}

// WorkflowHandler exposes agent discovery and workflow execution.
type WorkflowHandler struct {
	workflows workflowService
	agents    agentCatalog
}

// NewWorkflowHandler constructs WorkflowHandler.
func NewWorkflowHandler(workflows workflowService, agents agentCatalog) *WorkflowHandler {
	return &WorkflowHandler{workflows: workflows, agents: agents}
}

// Agents godoc
// @Summary List available AI agents
// @Tags Agents
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /agents [get]
func (h *WorkflowHandler) Agents(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.agents.Agents(), nil, map[string]interface{}{"demo": h.agents.Demo()})
}

// Execute godoc
// @Summary Execute a multi-agent workflow
// @Description Runs synchronously unless async is true, in which case the workflow is queued and 202 is returned.
// @Tags Workflows
// @Accept json
// @Produce json
// @Param payload body dto.ExecuteWorkflowRequest true "Workflow definition"
// @Success 200 {object} response.Envelope
// @Success 202 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /workflows [post]
func (h *WorkflowHandler) Execute(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.ExecuteWorkflowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid workflow payload"))
		return
	}
	if req.Async {
		wf, err := h.workflows.ExecuteAsync(c.Request.Context(), claims.UserID, req)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Accepted(c, wf)
		return
	}
	wf, err := h.workflows.Execute(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, wf, nil)
}

// Templates godoc
// @Summary List workflow templates
// @Tags Workflows
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /workflows/templates [get]
func (h *WorkflowHandler) Templates(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.workflows.Templates(), nil)
}

// ExecuteTemplate godoc
// @Summary Execute a workflow template
// @Tags Workflows
// @Produce json
// @Param name path string true "Template name (complete_lesson, multilingual_content)"
// @Param async query bool false "Queue instead of waiting"
// @Success 200 {object} response.Envelope
// @Success 202 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /workflows/templates/{name} [post]
func (h *WorkflowHandler) ExecuteTemplate(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	async := false
	if raw := c.Query("async"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "async must be a boolean"))
			return
		}
		async = parsed
	}
	wf, err := h.workflows.ExecuteTemplate(c.Request.Context(), claims.UserID, c.Param("name"), async)
	if err != nil {
		response.Error(c, err)
		return
	}
	status := http.StatusOK
	if async {
		status = http.StatusAccepted
	}
	response.JSON(c, status, wf, nil)
}

// Get godoc
// @Summary Get workflow status and results
// @Tags Workflows
// @Produce json
// @Param id path string true "Workflow ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /workflows/{id} [get]
func (h *WorkflowHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	wf, err := h.workflows.Get(c.Request.Context(), teacherScope(claims), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, wf, nil)
}

// List godoc
// @Summary Workflow history
// @Tags Workflows
// @Produce json
// @Param status query string false "pending, running, completed or failed"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /workflows [get]
func (h *WorkflowHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var query dto.WorkflowListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query parameters"))
		return
	}
	items, pagination, err := h.workflows.List(c.Request.Context(), teacherScope(claims), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}
