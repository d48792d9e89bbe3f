package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ai-saathi-api/internal/models"
)

var workflowRowColumns = []string{"id", "teacher_id", "status", "tasks", "final_output", "execution_time", "error", "created_at", "completed_at"}

func TestWorkflowRepositoryCreateAndSave(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewWorkflowRepository(db)

	mock.ExpectExec("INSERT INTO agent_workflows").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE agent_workflows SET status").WillReturnResult(sqlmock.NewResult(0, 1))

	wf := &models.Workflow{ID: "wf-1", TeacherID: "t1", Status: models.WorkflowPending, Tasks: types.JSONText(`[]`), CreatedAt: time.Now()}
	require.NoError(t, repo.Create(context.Background(), wf))

	wf.Status = models.WorkflowCompleted
	wf.FinalOutput = types.NullJSONText{JSONText: types.JSONText(`{"total_tasks":0}`), Valid: true}
	require.NoError(t, repo.Save(context.Background(), wf))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWorkflowRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewWorkflowRepository(db)
	now := time.Now()

	rows := sqlmock.NewRows(workflowRowColumns).
		AddRow("wf-1", "t1", "completed", []byte(`[{"id":"a"}]`), []byte(`{"total_tasks":1}`), 1.25, nil, now, now)
	mock.ExpectQuery(`FROM agent_workflows WHERE id = \$1`).WithArgs("wf-1").WillReturnRows(rows)
	mock.ExpectQuery(`FROM agent_workflows WHERE id = \$1`).WithArgs("missing").WillReturnError(sql.ErrNoRows)

	wf, err := repo.FindByID(context.Background(), "wf-1")
	require.NoError(t, err)
	assert.Equal(t, models.WorkflowCompleted, wf.Status)
	assert.True(t, wf.FinalOutput.Valid)
	assert.JSONEq(t, `[{"id":"a"}]`, string(wf.Tasks))
	require.NotNil(t, wf.ExecutionTime)
	assert.Equal(t, 1.25, *wf.ExecutionTime)

	_, err = repo.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestWorkflowRepositoryListFilters(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewWorkflowRepository(db)

	mock.ExpectQuery(`FROM agent_workflows WHERE teacher_id = \$1 AND status = \$2 ORDER BY created_at DESC LIMIT 20 OFFSET 0`).
		WithArgs("t1", "failed").
		WillReturnRows(sqlmock.NewRows(workflowRowColumns))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM agent_workflows WHERE teacher_id = \$1 AND status = \$2`).
		WithArgs("t1", "failed").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	workflows, total, err := repo.List(context.Background(), models.WorkflowFilter{TeacherID: "t1", Status: "failed"})
	require.NoError(t, err)
	assert.Empty(t, workflows)
	assert.Equal(t, 0, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}
