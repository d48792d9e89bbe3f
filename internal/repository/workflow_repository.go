package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/ai-saathi-api/internal/models"
)

const workflowColumns = "id, teacher_id, status, tasks, final_output, execution_time, error, created_at, completed_at"

// WorkflowRepository persists agent workflow runs.
type WorkflowRepository struct {
	db *sqlx.DB
}

// NewWorkflowRepository constructs a WorkflowRepository.
func NewWorkflowRepository(db *sqlx.DB) *WorkflowRepository {
	return &WorkflowRepository{db: db}
}

// Create stores a new workflow row.
func (r *WorkflowRepository) Create(ctx context.Context, wf *models.Workflow) error {
	const query = `INSERT INTO agent_workflows (id, teacher_id, status, tasks, final_output, execution_time, error, created_at, completed_at)
        VALUES (:id, :teacher_id, :status, :tasks, :final_output, :execution_time, :error, :created_at, :completed_at)`
	if _, err := r.db.NamedExecContext(ctx, query, wf); err != nil {
		return fmt.Errorf("create workflow: %w", err)
	}
	return nil
}

// Save overwrites the mutable state of a workflow.
func (r *WorkflowRepository) Save(ctx context.Context, wf *models.Workflow) error {
	const query = `UPDATE agent_workflows SET status = :status, tasks = :tasks, final_output = :final_output,
        execution_time = :execution_time, error = :error, completed_at = :completed_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, wf)
	if err != nil {
		return fmt.Errorf("save workflow: %w", err)
	}
	return requireAffected(res)
}

// FindByID loads a workflow.
func (r *WorkflowRepository) FindByID(ctx context.Context, id string) (*models.Workflow, error) {
	query := fmt.Sprintf("SELECT %s FROM agent_workflows WHERE id = $1", workflowColumns)
	var wf models.Workflow
	if err := r.db.GetContext(ctx, &wf, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find workflow: %w", err)
	}
	return &wf, nil
}

// List returns workflow history, newest first.
func (r *WorkflowRepository) List(ctx context.Context, filter models.WorkflowFilter) ([]models.Workflow, int, error) {
	var conditions []string
	var args []interface{}
	if filter.TeacherID != "" {
		conditions = append(conditions, fmt.Sprintf("teacher_id = $%d", len(args)+1))
		args = append(args, filter.TeacherID)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	page, size := models.NormalizePage(filter.Page, filter.PageSize)
	query := fmt.Sprintf("SELECT %s FROM agent_workflows %s ORDER BY created_at DESC LIMIT %d OFFSET %d", workflowColumns, where, size, (page-1)*size)
	var workflows []models.Workflow
	if err := r.db.SelectContext(ctx, &workflows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list workflows: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, fmt.Sprintf("SELECT COUNT(*) FROM agent_workflows %s", where), args...); err != nil {
		return nil, 0, fmt.Errorf("count workflows: %w", err)
	}
	return workflows, total, nil
}
