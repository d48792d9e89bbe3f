package dto

import "github.com/noah-isme/ai-saathi-api/internal/models"

// WorkflowTaskRequest describes one task of a submitted workflow.
type WorkflowTaskRequest struct {
	ID           string                 `json:"id"`
	Type         string                 `json:"type"`
	Agent        models.AgentName       `json:"agent" validate:"required"`
	InputData    map[string]interface{} `json:"input_data"`
	Dependencies []string               `json:"dependencies"`
}

// ExecuteWorkflowRequest is the payload accepted by POST /workflows.
type ExecuteWorkflowRequest struct {
	WorkflowID string                `json:"workflow_id"`
	Async      bool                  `json:"async"`
	Tasks      []WorkflowTaskRequest `json:"tasks" validate:"required,min=1,dive"`
}

// WorkflowListQuery binds the GET /workflows query string.
type WorkflowListQuery struct {
	Status string `form:"status"`
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
}

// WorkflowTemplate is a named, ready-to-run workflow.
type WorkflowTemplate struct {
	Name        string                `json:"name"`
	Description string                `json:"description"`
	Tasks       []WorkflowTaskRequest `json:"tasks"`
}
