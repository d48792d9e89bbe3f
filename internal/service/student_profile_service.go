package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/ai-saathi-api/internal/dto"
	"github.com/noah-isme/ai-saathi-api/internal/models"
	appErrors "github.com/noah-isme/ai-saathi-api/pkg/errors"
)

const auditResourceStudent = "student_profile"

type studentProfileRepository interface {
	List(ctx context.Context, filter models.StudentProfileFilter) ([]models.StudentProfile, int, error)
	ListAll(ctx context.Context, filter models.StudentProfileFilter) ([]models.StudentProfile, error)
	FindByID(ctx context.Context, id int64) (*models.StudentProfile, error)
	Create(ctx context.Context, profile *models.StudentProfile) error
	Patch(ctx context.Context, id int64, patch models.StudentProfilePatch) (*models.StudentProfile, error)
	Delete(ctx context.Context, id int64) error
}

type auditLogWriter interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// Actor identifies the authenticated user behind a mutation.
type Actor struct {
	UserID    string
	IP        string
	UserAgent string
}

// StudentProfileServiceParams groups constructor dependencies.
type StudentProfileServiceParams struct {
	Repo       studentProfileRepository
	Validator  *StudentValidator
	Cache      *CacheService
	Activities *ActivityService
	Audit      auditLogWriter
	Translator *TranslationService
	Logger     *zap.Logger
	CacheTTL   time.Duration
}

// StudentProfileService handles the student profile use cases.
type StudentProfileService struct {
	repo       studentProfileRepository
	validator  *StudentValidator
	cache      *CacheService
	activities *ActivityService
	audit      auditLogWriter
	translator *TranslationService
	logger     *zap.Logger
	cacheTTL   time.Duration
	now        func() time.Time
}

// NewStudentProfileService constructs the student profile service.
func NewStudentProfileService(params StudentProfileServiceParams) *StudentProfileService {
	validator := params.Validator
	if validator == nil {
		validator = NewStudentValidator()
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	translator := params.Translator
	if translator == nil {
		translator = NewTranslationService(nil, nil, nil, logger, TranslationServiceConfig{})
	}
	return &StudentProfileService{
		repo:       params.Repo,
		validator:  validator,
		cache:      params.Cache,
		activities: params.Activities,
		audit:      params.Audit,
		translator: translator,
		logger:     logger,
		cacheTTL:   params.CacheTTL,
		now:        time.Now,
	}
}

// List returns a page of profiles with derived fields.
func (s *StudentProfileService) List(ctx context.Context, query dto.StudentListQuery, lang string) ([]models.StudentProfileView, *models.Pagination, error) {
	filter, err := s.filterFromQuery(query.Search, query.Class, query.SpecialStatus)
	if err != nil {
		return nil, nil, err
	}
	filter.Page, filter.PageSize = models.NormalizePage(query.Page, query.Limit)
	filter.SortBy = query.Sort
	filter.SortOrder = query.Order

	profiles, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	views := make([]models.StudentProfileView, 0, len(profiles))
	for _, profile := range profiles {
		views = append(views, s.view(profile, lang))
	}
	return views, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}, nil
}

// Roster returns every profile matching the filter, ordered by class then name.
func (s *StudentProfileService) Roster(ctx context.Context, class, specialStatus, lang string) ([]models.StudentProfileView, error) {
	filter, err := s.filterFromQuery("", class, specialStatus)
	if err != nil {
		return nil, err
	}
	profiles, err := s.repo.ListAll(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roster")
	}
	views := make([]models.StudentProfileView, 0, len(profiles))
	for _, profile := range profiles {
		views = append(views, s.view(profile, lang))
	}
	return views, nil
}

// Get returns one profile with derived fields and reports whether it came from cache.
func (s *StudentProfileService) Get(ctx context.Context, id int64, lang string) (*models.StudentProfileView, bool, error) {
	key := StudentKey(id)
	var cached models.StudentProfile
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
		view := s.view(cached, lang)
		return &view, true, nil
	}

	profile, err := s.find(ctx, id)
	if err != nil {
		return nil, false, err
	}
	if err := s.cache.Set(ctx, key, profile, s.cacheTTL); err != nil {
		s.logger.Debug("student cache write failed", zap.Int64("id", id), zap.Error(err))
	}
	view := s.view(*profile, lang)
	return &view, false, nil
}

// Create validates and stores a new profile.
func (s *StudentProfileService) Create(ctx context.Context, actor Actor, req dto.CreateStudentProfileRequest, lang string) (*models.StudentProfileView, error) {
	input, err := s.validator.ValidateCreate(req)
	if err != nil {
		return nil, err
	}
	profile := input.NewProfile()
	if err := s.repo.Create(ctx, profile); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
	}

	s.afterMutation(ctx, actor, models.AuditActionStudentCreate, "activity.student_created", profile.ID, profile.Name, nil, profile)
	view := s.view(*profile, lang)
	return &view, nil
}

// Update applies a validated partial update. Fields absent from the request are untouched.
func (s *StudentProfileService) Update(ctx context.Context, actor Actor, id int64, req dto.UpdateStudentProfileRequest, lang string) (*models.StudentProfileView, error) {
	patch, err := s.validator.ValidateUpdate(req)
	if err != nil {
		return nil, err
	}
	profile, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		view := s.view(*profile, lang)
		return &view, nil
	}

	updated, err := s.repo.Patch(ctx, id, patch)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student")
	}

	s.afterMutation(ctx, actor, models.AuditActionStudentUpdate, "activity.student_updated", updated.ID, updated.Name, profile, updated)
	view := s.view(*updated, lang)
	return &view, nil
}

// Delete removes a profile.
func (s *StudentProfileService) Delete(ctx context.Context, actor Actor, id int64) error {
	profile, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete student")
	}
	s.afterMutation(ctx, actor, models.AuditActionStudentDelete, "activity.student_deleted", id, profile.Name, profile, nil)
	return nil
}

func (s *StudentProfileService) find(ctx context.Context, id int64) (*models.StudentProfile, error) {
	profile, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return profile, nil
}

func (s *StudentProfileService) filterFromQuery(search, class, specialStatus string) (models.StudentProfileFilter, error) {
	filter := models.StudentProfileFilter{
		Search: strings.TrimSpace(search),
		Class:  strings.TrimSpace(class),
	}
	if specialStatus != "" {
		status, err := models.ParseSpecialStatus(specialStatus)
		if err != nil {
			return filter, appErrors.WithDetails(appErrors.ErrValidation, "invalid student filter", []appErrors.FieldError{{
				Field:   "specialStatus",
				Rule:    "special_status",
				Message: strings.Replace(studentTagMessages["special_status"], "{0}", "specialStatus", 1),
			}})
		}
		filter.SpecialStatus = string(status)
	}
	return filter, nil
}

func (s *StudentProfileService) view(profile models.StudentProfile, lang string) models.StudentProfileView {
	view := models.NewStudentProfileView(profile, s.now())
	view.Accessibility.Label = s.translator.Translate("accessibility."+string(view.Accessibility.Level), lang)
	return view
}

// afterMutation runs the side effects of a committed write. Failures are logged, never returned.
func (s *StudentProfileService) afterMutation(ctx context.Context, actor Actor, action, titleKey string, id int64, name string, before, after *models.StudentProfile) {
	if err := s.cache.Invalidate(ctx, CacheNamespaceStudents, CacheNamespaceDashboard); err != nil {
		s.logger.Warn("student cache invalidation incomplete", zap.Int64("id", id), zap.Error(err))
	}

	if actor.UserID != "" {
		reference := fmt.Sprintf("student:%d", id)
		s.activities.RecordQuietly(ctx, models.Activity{
			TeacherID:   actor.UserID,
			Type:        models.ActivityStudentProfile,
			Title:       s.translator.Translate(titleKey, LanguageEnglish),
			TitleKey:    titleKey,
			Description: name,
			Reference:   &reference,
		})
	}

	if s.audit == nil {
		return
	}
	resourceID := strconv.FormatInt(id, 10)
	entry := &models.AuditLog{
		Action:     action,
		Resource:   auditResourceStudent,
		ResourceID: &resourceID,
		OldValues:  marshalAudit(before),
		NewValues:  marshalAudit(after),
		IPAddress:  actor.IP,
		UserAgent:  actor.UserAgent,
	}
	if actor.UserID != "" {
		userID := actor.UserID
		entry.UserID = &userID
	}
	if err := s.audit.CreateAuditLog(ctx, entry); err != nil {
		s.logger.Warn("failed to record audit log", zap.String("action", action), zap.Error(err))
	}
}

func marshalAudit(profile *models.StudentProfile) []byte {
	if profile == nil {
		return nil
	}
	payload, err := json.Marshal(profile)
	if err != nil {
		return nil
	}
	return payload
}
