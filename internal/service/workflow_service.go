package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/ai-saathi-api/internal/dto"
	"github.com/noah-isme/ai-saathi-api/internal/models"
	appErrors "github.com/noah-isme/ai-saathi-api/pkg/errors"
	"github.com/noah-isme/ai-saathi-api/pkg/jobs"
)

const (
	// WorkflowJobType tags queued workflow executions.
	WorkflowJobType = "workflow.execute"

	TemplateCompleteLesson      = "complete_lesson"
	TemplateMultilingualContent = "multilingual_content"

	defaultTaskType       = "custom"
	maxParallelTasks      = 4
	workflowDependencyMsg = "circular or missing dependency detected in tasks: %v"
)

type workflowRepository interface {
	Create(ctx context.Context, wf *models.Workflow) error
	Save(ctx context.Context, wf *models.Workflow) error
	FindByID(ctx context.Context, id string) (*models.Workflow, error)
	List(ctx context.Context, filter models.WorkflowFilter) ([]models.Workflow, int, error)
}

type workflowEnqueuer interface {
	Enqueue(job jobs.Job) error
}

// WorkflowServiceParams groups the collaborators of WorkflowService.
type WorkflowServiceParams struct {
	Repo       workflowRepository
	Agents     agentRunner
	Activities *ActivityService
	Translator *TranslationService
	Cache      *CacheService
	Metrics    *MetricsService
	Validator  *validator.Validate
	Logger     *zap.Logger
}

// WorkflowService runs multi-agent workflows and keeps their history.
type WorkflowService struct {
	repo       workflowRepository
	agents     agentRunner
	activities *ActivityService
	translator *TranslationService
	cache      *CacheService
	metrics    *MetricsService
	validator  *validator.Validate
	logger     *zap.Logger
	queue      workflowEnqueuer
	now        func() time.Time
	newID      func() string
}

// NewWorkflowService constructs a WorkflowService.
func NewWorkflowService(params WorkflowServiceParams) *WorkflowService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	validate := params.Validator
	if validate == nil {
		validate = newJSONValidator()
	}
	translator := params.Translator
	if translator == nil {
		translator = NewTranslationService(nil, nil, nil, logger, TranslationServiceConfig{})
	}
	return &WorkflowService{
		repo:       params.Repo,
		agents:     params.Agents,
		activities: params.Activities,
		translator: translator,
		cache:      params.Cache,
		metrics:    params.Metrics,
		validator:  validate,
		logger:     logger,
		now:        time.Now,
		newID:      uuid.NewString,
	}
}

// AttachQueue sets the queue used by ExecuteAsync.
func (s *WorkflowService) AttachQueue(queue workflowEnqueuer) {
	s.queue = queue
}

// Execute runs a workflow to completion and returns its final state. A workflow
// that fails is still returned; its status and error describe the failure.
func (s *WorkflowService) Execute(ctx context.Context, teacherID string, req dto.ExecuteWorkflowRequest) (*models.Workflow, error) {
	wf, tasks, err := s.prepare(ctx, teacherID, req)
	if err != nil {
		return nil, err
	}
	wf.Status = models.WorkflowRunning
	if err := s.encodeTasks(wf, tasks); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, wf); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create workflow")
	}
	if err := s.run(ctx, wf, tasks); err != nil {
		return nil, err
	}
	return wf, nil
}

// ExecuteAsync stores a pending workflow and hands it to the worker queue.
func (s *WorkflowService) ExecuteAsync(ctx context.Context, teacherID string, req dto.ExecuteWorkflowRequest) (*models.Workflow, error) {
	if s.queue == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "workflow queue not configured")
	}
	wf, tasks, err := s.prepare(ctx, teacherID, req)
	if err != nil {
		return nil, err
	}
	if err := s.encodeTasks(wf, tasks); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, wf); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create workflow")
	}
	if err := s.queue.Enqueue(jobs.Job{ID: wf.ID, Type: WorkflowJobType, Payload: wf.ID}); err != nil {
		s.fail(context.WithoutCancel(ctx), wf, fmt.Sprintf("enqueue workflow: %v", err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue workflow")
	}
	s.logger.Info("workflow enqueued", zap.String("workflow_id", wf.ID), zap.String("teacher_id", teacherID))
	return wf, nil
}

// HandleJob executes a queued workflow. Finished workflows are skipped so a
// redelivered job is harmless.
func (s *WorkflowService) HandleJob(ctx context.Context, job jobs.Job) error {
	id, ok := job.Payload.(string)
	if !ok || id == "" {
		return fmt.Errorf("workflow job %s: unexpected payload %T", job.ID, job.Payload)
	}
	wf, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("load workflow %s: %w", id, err)
	}
	if wf.Status == models.WorkflowCompleted || wf.Status == models.WorkflowFailed {
		return nil
	}

	var tasks []*models.WorkflowTask
	if err := json.Unmarshal(wf.Tasks, &tasks); err != nil {
		s.fail(ctx, wf, fmt.Sprintf("decode tasks: %v", err))
		return nil
	}
	for _, task := range tasks {
		if task.Status == models.WorkflowRunning {
			task.Status = models.WorkflowPending
		}
	}
	wf.Status = models.WorkflowRunning
	return s.run(ctx, wf, tasks)
}

// GiveUp marks a workflow failed once its job has exhausted the queue retries.
func (s *WorkflowService) GiveUp(job jobs.Job, cause error) {
	id, _ := job.Payload.(string)
	ctx := context.Background()
	wf, err := s.repo.FindByID(ctx, id)
	if err != nil {
		s.logger.Error("failed to load abandoned workflow", zap.String("workflow_id", id), zap.Error(err))
		return
	}
	s.fail(ctx, wf, fmt.Sprintf("workflow abandoned after retries: %v", cause))
}

// Templates lists the built-in workflow templates ordered by name.
func (s *WorkflowService) Templates() []dto.WorkflowTemplate {
	names := make([]string, 0, len(workflowTemplates))
	for name := range workflowTemplates {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]dto.WorkflowTemplate, 0, len(names))
	for _, name := range names {
		out = append(out, workflowTemplates[name]())
	}
	return out
}

// ExecuteTemplate runs the named template for a teacher.
func (s *WorkflowService) ExecuteTemplate(ctx context.Context, teacherID, name string, async bool) (*models.Workflow, error) {
	build, ok := workflowTemplates[name]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("workflow template %q not found", name))
	}
	req := dto.ExecuteWorkflowRequest{Tasks: build().Tasks}
	if async {
		return s.ExecuteAsync(ctx, teacherID, req)
	}
	return s.Execute(ctx, teacherID, req)
}

// Get loads a workflow. A non-empty teacherID restricts the lookup to that
// teacher's workflows.
func (s *WorkflowService) Get(ctx context.Context, teacherID, id string) (*models.Workflow, error) {
	wf, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "workflow not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load workflow")
	}
	if teacherID != "" && wf.TeacherID != teacherID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "workflow not found")
	}
	return wf, nil
}

// List returns workflow history, newest first.
func (s *WorkflowService) List(ctx context.Context, teacherID string, query dto.WorkflowListQuery) ([]models.Workflow, *models.Pagination, error) {
	status := strings.ToLower(strings.TrimSpace(query.Status))
	switch models.WorkflowStatus(status) {
	case "", models.WorkflowPending, models.WorkflowRunning, models.WorkflowCompleted, models.WorkflowFailed:
	default:
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "status must be one of pending, running, completed, failed")
	}

	page, size := models.NormalizePage(query.Page, query.Limit)
	workflows, total, err := s.repo.List(ctx, models.WorkflowFilter{
		TeacherID: teacherID,
		Status:    status,
		Page:      page,
		PageSize:  size,
	})
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list workflows")
	}
	if workflows == nil {
		workflows = []models.Workflow{}
	}
	return workflows, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

func (s *WorkflowService) prepare(ctx context.Context, teacherID string, req dto.ExecuteWorkflowRequest) (*models.Workflow, []*models.WorkflowTask, error) {
	if strings.TrimSpace(teacherID) == "" {
		return nil, nil, appErrors.Clone(appErrors.ErrUnauthorized, "teacher is required")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, nil, validationError(err, "invalid workflow payload", nil)
	}

	now := s.now().UTC()
	seen := make(map[string]struct{}, len(req.Tasks))
	tasks := make([]*models.WorkflowTask, 0, len(req.Tasks))
	for i, in := range req.Tasks {
		id := strings.TrimSpace(in.ID)
		if id == "" {
			id = fmt.Sprintf("task_%d", i+1)
		}
		if _, dup := seen[id]; dup {
			return nil, nil, appErrors.WithDetails(appErrors.ErrValidation, "invalid workflow payload", []appErrors.FieldError{{
				Field:   fmt.Sprintf("tasks[%d].id", i),
				Rule:    "unique",
				Message: fmt.Sprintf("duplicate task id %q", id),
			}})
		}
		seen[id] = struct{}{}

		taskType := strings.TrimSpace(in.Type)
		if taskType == "" {
			taskType = defaultTaskType
		}
		input := in.InputData
		if input == nil {
			input = map[string]interface{}{}
		}
		deps := append([]string{}, in.Dependencies...)
		tasks = append(tasks, &models.WorkflowTask{
			ID:           id,
			Type:         taskType,
			Agent:        in.Agent,
			InputData:    input,
			Dependencies: deps,
			Status:       models.WorkflowPending,
			CreatedAt:    now,
		})
	}

	id := strings.TrimSpace(req.WorkflowID)
	if id == "" {
		id = s.newID()
	} else if _, err := s.repo.FindByID(ctx, id); err == nil {
		return nil, nil, appErrors.Clone(appErrors.ErrConflict, "workflow id already exists")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check workflow id")
	}

	return &models.Workflow{
		ID:        id,
		TeacherID: teacherID,
		Status:    models.WorkflowPending,
		CreatedAt: now,
	}, tasks, nil
}

// run executes tasks in dependency rounds. Ready tasks of a round run in
// parallel; the round ends when all of them have finished.
func (s *WorkflowService) run(ctx context.Context, wf *models.Workflow, tasks []*models.WorkflowTask) error {
	start := s.now()
	var runErr error
	completedAny := false

	for {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}
		pending := tasksWithStatus(tasks, models.WorkflowPending)
		if len(pending) == 0 {
			break
		}
		ready := readyTasks(tasks, pending)
		if len(ready) == 0 {
			ids := make([]string, 0, len(pending))
			for _, task := range pending {
				ids = append(ids, task.ID)
			}
			runErr = fmt.Errorf(workflowDependencyMsg, ids)
			break
		}

		var g errgroup.Group
		g.SetLimit(maxParallelTasks)
		for _, task := range ready {
			task := task
			task.Status = models.WorkflowRunning
			g.Go(func() error {
				s.runTask(ctx, wf, task)
				return nil
			})
		}
		_ = g.Wait()

		for _, task := range ready {
			if task.Status == models.WorkflowCompleted {
				completedAny = true
				s.recordTaskActivity(ctx, wf, task)
			}
		}
	}

	finished := s.now()
	elapsed := finished.Sub(start).Seconds()
	completedAt := finished.UTC()
	wf.ExecutionTime = &elapsed
	wf.CompletedAt = &completedAt
	if runErr != nil {
		msg := runErr.Error()
		wf.Status = models.WorkflowFailed
		wf.Error = &msg
	} else {
		output, err := json.Marshal(compileWorkflowOutput(tasks))
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode workflow output")
		}
		wf.Status = models.WorkflowCompleted
		wf.FinalOutput = types.NullJSONText{JSONText: types.JSONText(output), Valid: true}
	}
	if err := s.encodeTasks(wf, tasks); err != nil {
		return err
	}

	saveCtx := context.WithoutCancel(ctx)
	if err := s.repo.Save(saveCtx, wf); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save workflow")
	}
	if completedAny {
		if err := s.cache.Invalidate(saveCtx, CacheNamespaceDashboard); err != nil {
			s.logger.Warn("failed to invalidate dashboard cache", zap.String("workflow_id", wf.ID), zap.Error(err))
		}
	}
	s.metrics.ObserveWorkflow(string(wf.Status))

	fields := []zap.Field{
		zap.String("workflow_id", wf.ID),
		zap.String("status", string(wf.Status)),
		zap.Float64("execution_time", elapsed),
	}
	if wf.Error != nil {
		s.logger.Warn("workflow failed", append(fields, zap.String("error", *wf.Error))...)
	} else {
		s.logger.Info("workflow completed", fields...)
	}
	return nil
}

func (s *WorkflowService) runTask(ctx context.Context, wf *models.Workflow, task *models.WorkflowTask) {
	result, err := s.agents.Run(ctx, task.Agent, task.InputData)
	completedAt := s.now().UTC()
	task.CompletedAt = &completedAt
	if err != nil {
		task.Status = models.WorkflowFailed
		task.Error = err.Error()
		s.logger.Warn("workflow task failed",
			zap.String("workflow_id", wf.ID),
			zap.String("task_id", task.ID),
			zap.String("agent", string(task.Agent)),
			zap.Error(err))
		return
	}
	task.Status = models.WorkflowCompleted
	task.Result = result
}

func (s *WorkflowService) recordTaskActivity(ctx context.Context, wf *models.Workflow, task *models.WorkflowTask) {
	info, ok := models.LookupAgent(task.Agent)
	if !ok {
		return
	}
	description := task.Type
	if topic, ok := task.InputData["topic"].(string); ok && topic != "" {
		description = topic
	}
	reference := fmt.Sprintf("workflow:%s/%s", wf.ID, task.ID)
	s.activities.RecordQuietly(context.WithoutCancel(ctx), models.Activity{
		TeacherID:   wf.TeacherID,
		Type:        info.ActivityType,
		Title:       s.translator.TranslateWith("activity.agent_completed", LanguageEnglish, info.DisplayName),
		TitleKey:    "activity.agent_completed",
		TitleArgs:   pq.StringArray{info.DisplayName},
		Description: description,
		Reference:   &reference,
	})
}

func (s *WorkflowService) fail(ctx context.Context, wf *models.Workflow, reason string) {
	now := s.now().UTC()
	wf.Status = models.WorkflowFailed
	wf.Error = &reason
	wf.CompletedAt = &now
	if err := s.repo.Save(ctx, wf); err != nil {
		s.logger.Error("failed to mark workflow failed", zap.String("workflow_id", wf.ID), zap.Error(err))
	}
	s.metrics.ObserveWorkflow(string(models.WorkflowFailed))
}

func (s *WorkflowService) encodeTasks(wf *models.Workflow, tasks []*models.WorkflowTask) error {
	raw, err := json.Marshal(tasks)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode workflow tasks")
	}
	wf.Tasks = types.JSONText(raw)
	return nil
}

func tasksWithStatus(tasks []*models.WorkflowTask, status models.WorkflowStatus) []*models.WorkflowTask {
	var out []*models.WorkflowTask
	for _, task := range tasks {
		if task.Status == status {
			out = append(out, task)
		}
	}
	return out
}

// readyTasks returns the pending tasks whose dependencies have all completed.
func readyTasks(tasks, pending []*models.WorkflowTask) []*models.WorkflowTask {
	completed := make(map[string]bool, len(tasks))
	for _, task := range tasks {
		if task.Status == models.WorkflowCompleted {
			completed[task.ID] = true
		}
	}
	var ready []*models.WorkflowTask
	for _, task := range pending {
		ok := true
		for _, dep := range task.Dependencies {
			if !completed[dep] {
				ok = false
				break
			}
		}
		if ok {
			ready = append(ready, task)
		}
	}
	return ready
}

func compileWorkflowOutput(tasks []*models.WorkflowTask) models.WorkflowOutput {
	out := models.WorkflowOutput{
		TotalTasks: len(tasks),
		Results:    make(map[string]map[string]interface{}),
	}
	for _, task := range tasks {
		switch task.Status {
		case models.WorkflowCompleted:
			out.SuccessfulTasks++
		case models.WorkflowFailed:
			out.FailedTasks++
		}
		if task.Result != nil {
			out.Results[task.ID] = task.Result
		}
	}
	out.Summary = fmt.Sprintf("Workflow completed with %d successful tasks", out.SuccessfulTasks)
	return out
}

var workflowTemplates = map[string]func() dto.WorkflowTemplate{
	TemplateCompleteLesson: func() dto.WorkflowTemplate {
		return dto.WorkflowTemplate{
			Name:        TemplateCompleteLesson,
			Description: "Lesson plan followed by matching teaching materials and an assessment",
			Tasks: []dto.WorkflowTaskRequest{
				{
					ID:    "lesson_plan",
					Type:  "education",
					Agent: models.AgentLessonPlan,
					InputData: map[string]interface{}{
						"subject":  "Mathematics",
						"topic":    "Fractions",
						"grade":    "5",
						"duration": 45,
						"language": LanguageEnglish,
					},
				},
				{
					ID:    "teaching_materials",
					Type:  "education",
					Agent: models.AgentTeachingAids,
					InputData: map[string]interface{}{
						"subject":  "Mathematics",
						"topic":    "Fractions",
						"grade":    "5",
						"language": LanguageEnglish,
						"aid_type": "worksheet",
					},
					Dependencies: []string{"lesson_plan"},
				},
				{
					ID:    "assessment",
					Type:  "education",
					Agent: models.AgentAssessment,
					InputData: map[string]interface{}{
						"subject":         "Mathematics",
						"topic":           "Fractions",
						"grade":           "5",
						"language":        LanguageEnglish,
						"assessment_type": "quiz",
					},
					Dependencies: []string{"lesson_plan"},
				},
			},
		}
	},
	TemplateMultilingualContent: func() dto.WorkflowTemplate {
		return dto.WorkflowTemplate{
			Name:        TemplateMultilingualContent,
			Description: "Educational story translated into Hindi",
			Tasks: []dto.WorkflowTaskRequest{
				{
					ID:    "story_creation",
					Type:  "education",
					Agent: models.AgentStoryteller,
					InputData: map[string]interface{}{
						"topic":    "Environmental Conservation",
						"grade":    "4",
						"language": LanguageEnglish,
						"moral":    "Protect our environment",
					},
				},
				{
					ID:    "translate_hindi",
					Type:  "translation",
					Agent: models.AgentTranslation,
					InputData: map[string]interface{}{
						"text":            "Story content",
						"source_language": LanguageEnglish,
						"target_language": LanguageHindi,
					},
					Dependencies: []string{"story_creation"},
				},
			},
		}
	},
}
