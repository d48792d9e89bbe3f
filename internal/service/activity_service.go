package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/ai-saathi-api/internal/models"
	appErrors "github.com/noah-isme/ai-saathi-api/pkg/errors"
)

const (
	defaultActivityLimit = 10
	maxActivityLimit     = 50
)

type activityRepository interface {
	Create(ctx context.Context, activity *models.Activity) error
	ListRecent(ctx context.Context, teacherID string, limit int) ([]models.Activity, error)
	CountByType(ctx context.Context, teacherID string) ([]models.ActivityTypeCount, error)
}

// ActivityService records and presents the teacher activity feed.
type ActivityService struct {
	repo       activityRepository
	translator *TranslationService
	logger     *zap.Logger
	now        func() time.Time
}

// NewActivityService constructs an ActivityService.
func NewActivityService(repo activityRepository, translator *TranslationService, logger *zap.Logger) *ActivityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if translator == nil {
		translator = NewTranslationService(nil, nil, nil, logger, TranslationServiceConfig{})
	}
	return &ActivityService{repo: repo, translator: translator, logger: logger, now: time.Now}
}

// Record appends an activity to a teacher's feed.
func (s *ActivityService) Record(ctx context.Context, activity models.Activity) (*models.Activity, error) {
	activity.TeacherID = strings.TrimSpace(activity.TeacherID)
	activity.Title = strings.TrimSpace(activity.Title)
	if activity.TeacherID == "" || activity.Type == "" || activity.Title == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "activity requires teacher, type and title")
	}
	if activity.CreatedAt.IsZero() {
		activity.CreatedAt = s.now().UTC()
	}
	if err := s.repo.Create(ctx, &activity); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record activity")
	}
	return &activity, nil
}

// RecordQuietly records an activity and only logs failures. Used for side
// effects of operations that already succeeded.
func (s *ActivityService) RecordQuietly(ctx context.Context, activity models.Activity) {
	if s == nil {
		return
	}
	if _, err := s.Record(ctx, activity); err != nil {
		s.logger.Warn("failed to record activity",
			zap.String("teacher_id", activity.TeacherID),
			zap.String("type", string(activity.Type)),
			zap.Error(err))
	}
}

// Recent returns the newest activities of a teacher decorated for display in lang.
func (s *ActivityService) Recent(ctx context.Context, teacherID, lang string, limit int) ([]models.ActivityView, error) {
	if teacherID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "teacherId is required")
	}
	if limit <= 0 {
		limit = defaultActivityLimit
	}
	if limit > maxActivityLimit {
		limit = maxActivityLimit
	}
	activities, err := s.repo.ListRecent(ctx, teacherID, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load activities")
	}
	now := s.now()
	views := make([]models.ActivityView, 0, len(activities))
	for _, activity := range activities {
		activity.Title = s.title(ctx, activity, lang)
		views = append(views, s.decorate(activity, lang, now))
	}
	return views, nil
}

// title renders catalog titles locally; only free text goes to the
// translation agent.
func (s *ActivityService) title(ctx context.Context, activity models.Activity, lang string) string {
	if activity.TitleKey == "" {
		return s.translator.TranslateDynamicOrOriginal(ctx, activity.Title, lang)
	}
	args := make([]interface{}, len(activity.TitleArgs))
	for i, arg := range activity.TitleArgs {
		args[i] = arg
	}
	return s.translator.TranslateWith(activity.TitleKey, lang, args...)
}


// CountByType returns the teacher's activity counts keyed by type.
func (s *ActivityService) CountByType(ctx context.Context, teacherID string) (map[models.ActivityType]int, error) {
	rows, err := s.repo.CountByType(ctx, teacherID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count activities")
	}
	counts := make(map[models.ActivityType]int, len(rows))
	for _, row := range rows {
		counts[row.Type] += row.Total
	}
	return counts, nil
}

// TimeAgo renders the distance between then and now in lang.
func (s *ActivityService) TimeAgo(then, now time.Time, lang string) string {
	elapsed := now.Sub(then)
	switch {
	case elapsed < time.Minute:
		return s.translator.Translate("time.just_now", lang)
	case elapsed < time.Hour:
		return s.plural("time.minute_ago", "time.minutes_ago", int(elapsed/time.Minute), lang)
	case elapsed < 24*time.Hour:
		return s.plural("time.hour_ago", "time.hours_ago", int(elapsed/time.Hour), lang)
	default:
		return s.plural("time.day_ago", "time.days_ago", int(elapsed/(24*time.Hour)), lang)
	}
}

func (s *ActivityService) plural(one, many string, n int, lang string) string {
	if n == 1 {
		return s.translator.TranslateWith(one, lang, n)
	}
	return s.translator.TranslateWith(many, lang, n)
}

func (s *ActivityService) decorate(activity models.Activity, lang string, now time.Time) models.ActivityView {
	icon, color := ActivityIcon(activity.Type)
	return models.ActivityView{
		Activity: activity,
		TimeAgo:  s.TimeAgo(activity.CreatedAt, now, lang),
		Icon:     icon,
		Color:    color,
	}
}

// ActivityIcon maps an activity type to its icon name and colour.
func ActivityIcon(t models.ActivityType) (icon, color string) {
	switch t {
	case models.ActivityLessonPlan:
		return "BookOpen", "blue"
	case models.ActivityTeachingAid:
		return "FileText", "green"
	case models.ActivityAssessment:
		return "ClipboardCheck", "purple"
	case models.ActivityStory:
		return "BookHeart", "orange"
	case models.ActivityTranslation:
		return "Languages", "teal"
	case models.ActivityImageAnalysis:
		return "Image", "pink"
	case models.ActivityStudentProfile:
		return "UserRound", "indigo"
	default:
		return "Activity", "gray"
	}
}
