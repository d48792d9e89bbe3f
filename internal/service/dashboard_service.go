package service

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/ai-saathi-api/internal/dto"
	"github.com/noah-isme/ai-saathi-api/internal/models"
	appErrors "github.com/noah-isme/ai-saathi-api/pkg/errors"
)

type studentStatsProvider interface {
	Stats(ctx context.Context) (*models.StudentProfileStats, error)
}

type activityFeed interface {
	Recent(ctx context.Context, teacherID, lang string, limit int) ([]models.ActivityView, error)
	CountByType(ctx context.Context, teacherID string) (map[models.ActivityType]int, error)
}

var dashboardLabelKeys = []string{
	"dashboard.title",
	"dashboard.teaching_aids",
	"dashboard.lesson_plans",
	"dashboard.assessments",
	"dashboard.stories",
	"dashboard.translations",
	"dashboard.image_analyses",
	"dashboard.students",
	"dashboard.recent",
	"accessibility.high",
	"accessibility.medium",
	"accessibility.none",
}

// DashboardServiceConfig tunes dashboard behaviour.
type DashboardServiceConfig struct {
	CacheTTL            time.Duration
	RecentActivityLimit int
}

// DashboardService composes the teacher dashboard payloads.
type DashboardService struct {
	students   studentStatsProvider
	activities activityFeed
	translator *TranslationService
	cache      *CacheService
	logger     *zap.Logger
	now        func() time.Time
	cfg        DashboardServiceConfig
}

// DashboardServiceParams groups constructor dependencies.
type DashboardServiceParams struct {
	Students   studentStatsProvider
	Activities activityFeed
	Translator *TranslationService
	Cache      *CacheService
	Logger     *zap.Logger
	Config     DashboardServiceConfig
}

// NewDashboardService constructs a DashboardService with sane defaults.
func NewDashboardService(params DashboardServiceParams) *DashboardService {
	cfg := params.Config
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if cfg.RecentActivityLimit <= 0 {
		cfg.RecentActivityLimit = defaultActivityLimit
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	translator := params.Translator
	if translator == nil {
		translator = NewTranslationService(nil, nil, nil, logger, TranslationServiceConfig{})
	}
	return &DashboardService{
		students:   params.Students,
		activities: params.Activities,
		translator: translator,
		cache:      params.Cache,
		logger:     logger,
		now:        time.Now,
		cfg:        cfg,
	}
}

// Stats returns the teacher's content and roster counts and indicates cache utilisation.
func (s *DashboardService) Stats(ctx context.Context, teacherID, lang string) (*dto.DashboardStatsResponse, bool, error) {
	if teacherID == "" {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "teacherId is required")
	}
	cacheKey := DashboardStatsKey(teacherID, lang)
	var cached dto.DashboardStatsResponse
	if s.tryCache(ctx, cacheKey, &cached) {
		return &cached, true, nil
	}

	stats, err := s.composeStats(ctx, teacherID)
	if err != nil {
		return nil, false, err
	}
	labels := make(map[string]string, len(dashboardLabelKeys))
	for _, key := range dashboardLabelKeys {
		labels[key] = s.translator.Translate(key, lang)
	}
	resp := &dto.DashboardStatsResponse{Language: lang, Stats: *stats, Labels: labels}
	s.persistCache(ctx, cacheKey, resp)
	return resp, false, nil
}

// Activities returns the teacher's recent activity feed in lang.
func (s *DashboardService) Activities(ctx context.Context, teacherID, lang string, limit int) (*dto.DashboardActivitiesResponse, bool, error) {
	if teacherID == "" {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "teacherId is required")
	}
	if limit <= 0 {
		limit = s.cfg.RecentActivityLimit
	}
	cacheKey := DashboardActivitiesKey(teacherID, lang, limit)
	var cached dto.DashboardActivitiesResponse
	if s.tryCache(ctx, cacheKey, &cached) {
		return &cached, true, nil
	}

	views, err := s.activities.Recent(ctx, teacherID, lang, limit)
	if err != nil {
		return nil, false, err
	}
	resp := &dto.DashboardActivitiesResponse{Language: lang, Activities: views}
	if len(views) == 0 {
		resp.Activities = []models.ActivityView{}
		resp.EmptyMessage = s.translator.Translate("dashboard.no_activity", lang)
	}
	// time-ago strings age quickly, so the feed is cached for at most a minute
	s.persistCacheFor(ctx, cacheKey, resp, minDuration(s.cfg.CacheTTL, time.Minute))
	return resp, false, nil
}

func (s *DashboardService) composeStats(ctx context.Context, teacherID string) (*models.DashboardStats, error) {
	var (
		counts   map[models.ActivityType]int
		students *models.StudentProfileStats
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		counts, err = s.activities.CountByType(gctx, teacherID)
		return err
	})
	g.Go(func() error {
		var err error
		students, err = s.students.Stats(gctx)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student stats")
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats := &models.DashboardStats{
		TeachingAids:  counts[models.ActivityTeachingAid],
		LessonPlans:   counts[models.ActivityLessonPlan],
		Assessments:   counts[models.ActivityAssessment],
		Stories:       counts[models.ActivityStory],
		Translations:  counts[models.ActivityTranslation],
		ImageAnalyses: counts[models.ActivityImageAnalysis],
		Students:      *students,
		ContentByType: make(map[models.ActivityType]int, len(models.ContentActivityTypes)),
		GeneratedAt:   s.now().UTC(),
	}
	for _, t := range models.ContentActivityTypes {
		stats.ContentByType[t] = counts[t]
		stats.TotalContent += counts[t]
	}
	return stats, nil
}

// tryCache reports a hit; read failures are logged and treated as a miss.
func (s *DashboardService) tryCache(ctx context.Context, key string, dest interface{}) bool {
	if s.cache == nil {
		return false
	}
	hit, err := s.cache.Get(ctx, key, dest)
	if err != nil {
		s.logger.Warn("dashboard cache read failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return hit
}

func (s *DashboardService) persistCache(ctx context.Context, key string, value interface{}) {
	s.persistCacheFor(ctx, key, value, s.cfg.CacheTTL)
}

func (s *DashboardService) persistCacheFor(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value, ttl); err != nil {
		s.logger.Warn("dashboard cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func minDuration(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}
