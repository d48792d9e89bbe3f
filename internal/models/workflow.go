package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// WorkflowStatus tracks the lifecycle of workflows and their tasks.
type WorkflowStatus string

const (
	WorkflowPending   WorkflowStatus = "pending"
	WorkflowRunning   WorkflowStatus = "running"
	WorkflowCompleted WorkflowStatus = "completed"
	WorkflowFailed    WorkflowStatus = "failed"
)

// AgentName identifies an AI agent.
type AgentName string

const (
	AgentTeachingAids  AgentName = "teaching_aids"
	AgentLessonPlan    AgentName = "lesson_plan"
	AgentAssessment    AgentName = "assessment"
	AgentTranslation   AgentName = "translation"
	AgentStoryteller   AgentName = "storyteller"
	AgentImageAnalysis AgentName = "image_analysis"
	AgentEvaluation    AgentName = "evaluation"
)

// AgentInfo describes an agent for discovery.
type AgentInfo struct {
	Name         AgentName    `json:"id"`
	DisplayName  string       `json:"name"`
	Description  string       `json:"description"`
	Inputs       []string     `json:"inputs"`
	Path         string       `json:"-"`
	ActivityType ActivityType `json:"activityType"`
}

// Agents is the catalog of supported agents in display order.
var Agents = []AgentInfo{
	{
		Name:         AgentTeachingAids,
		DisplayName:  "Teaching Aids Agent",
		Description:  "Generate worksheets, flashcards, and educational materials",
		Inputs:       []string{"subject", "topic", "grade", "language", "aid_type"},
		Path:         "/api/teaching-aid",
		ActivityType: ActivityTeachingAid,
	},
	{
		Name:         AgentLessonPlan,
		DisplayName:  "Lesson Plan Agent",
		Description:  "Create detailed lesson plans with activities",
		Inputs:       []string{"subject", "topic", "grade", "duration", "language"},
		Path:         "/api/lesson-plan",
		ActivityType: ActivityLessonPlan,
	},
	{
		Name:         AgentAssessment,
		DisplayName:  "Assessment Agent",
		Description:  "Generate quizzes, tests, and assignments",
		Inputs:       []string{"subject", "topic", "grade", "language", "assessment_type"},
		Path:         "/api/assessment",
		ActivityType: ActivityAssessment,
	},
	{
		Name:         AgentTranslation,
		DisplayName:  "Translation Agent",
		Description:  "Translate content between languages",
		Inputs:       []string{"text", "source_language", "target_language"},
		Path:         "/api/translate",
		ActivityType: ActivityTranslation,
	},
	{
		Name:         AgentStoryteller,
		DisplayName:  "Storyteller Agent",
		Description:  "Create educational stories with moral lessons",
		Inputs:       []string{"topic", "grade", "language", "moral"},
		Path:         "/api/story",
		ActivityType: ActivityStory,
	},
	{
		Name:         AgentImageAnalysis,
		DisplayName:  "Image Analysis Agent",
		Description:  "Analyze educational images and extract content",
		Inputs:       []string{"image_path"},
		Path:         "/api/analyze-image",
		ActivityType: ActivityImageAnalysis,
	},
	{
		Name:         AgentEvaluation,
		DisplayName:  "Evaluation Agent",
		Description:  "Evaluate student worksheets from images with scores and feedback",
		Inputs:       []string{"image_data", "subject", "grade", "topic", "language", "student_name"},
		Path:         "/api/evaluate",
		ActivityType: ActivityAssessment,
	},
}

// LookupAgent finds an agent by name.
func LookupAgent(name AgentName) (AgentInfo, bool) {
	for _, a := range Agents {
		if a.Name == name {
			return a, true
		}
	}
	return AgentInfo{}, false
}

// WorkflowTask is one agent invocation inside a workflow.
type WorkflowTask struct {
	ID           string                 `json:"id"`
	Type         string                 `json:"type"`
	Agent        AgentName              `json:"agent"`
	InputData    map[string]interface{} `json:"input_data"`
	Dependencies []string               `json:"dependencies"`
	Status       WorkflowStatus         `json:"status"`
	Result       map[string]interface{} `json:"result,omitempty"`
	Error        string                 `json:"error,omitempty"`
	CreatedAt    time.Time              `json:"created_at"`
	CompletedAt  *time.Time             `json:"completed_at,omitempty"`
}

// WorkflowOutput is the compiled result of a finished workflow.
type WorkflowOutput struct {
	Summary         string                            `json:"summary"`
	TotalTasks      int                               `json:"total_tasks"`
	SuccessfulTasks int                               `json:"successful_tasks"`
	FailedTasks     int                               `json:"failed_tasks"`
	Results         map[string]map[string]interface{} `json:"results"`
}

// Workflow is the persisted agent_workflows row.
type Workflow struct {
	ID            string             `db:"id" json:"workflow_id"`
	TeacherID     string             `db:"teacher_id" json:"teacher_id"`
	Status        WorkflowStatus     `db:"status" json:"status"`
	Tasks         types.JSONText     `db:"tasks" json:"tasks"`
	FinalOutput   types.NullJSONText `db:"final_output" json:"final_output"`
	ExecutionTime *float64           `db:"execution_time" json:"execution_time"`
	Error         *string            `db:"error" json:"error,omitempty"`
	CreatedAt     time.Time          `db:"created_at" json:"created_at"`
	CompletedAt   *time.Time         `db:"completed_at" json:"completed_at,omitempty"`
}

// WorkflowFilter captures history list parameters.
type WorkflowFilter struct {
	TeacherID string
	Status    string
	Page      int
	PageSize  int
}
