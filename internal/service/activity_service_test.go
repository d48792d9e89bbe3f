package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/ai-saathi-api/internal/models"
	appErrors "github.com/noah-isme/ai-saathi-api/pkg/errors"
)

type fakeActivityRepo struct {
	created   []models.Activity
	recent    []models.Activity
	counts    []models.ActivityTypeCount
	lastLimit int
	err       error
}

func (f *fakeActivityRepo) Create(_ context.Context, activity *models.Activity) error {
	if f.err != nil {
		return f.err
	}
	activity.ID = int64(len(f.created) + 1)
	f.created = append(f.created, *activity)
	return nil
}

func (f *fakeActivityRepo) ListRecent(_ context.Context, _ string, limit int) ([]models.Activity, error) {
	f.lastLimit = limit
	return f.recent, f.err
}

func (f *fakeActivityRepo) CountByType(_ context.Context, _ string) ([]models.ActivityTypeCount, error) {
	return f.counts, f.err
}

func newTestActivityService(repo *fakeActivityRepo, agents agentRunner, now time.Time) *ActivityService {
	translator := NewTranslationService(nil, agents, nil, zap.NewNop(), TranslationServiceConfig{})
	svc := NewActivityService(repo, translator, zap.NewNop())
	svc.now = func() time.Time { return now }
	return svc
}

func TestActivityServiceTimeAgo(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	svc := newTestActivityService(&fakeActivityRepo{}, nil, now)

	cases := []struct {
		ago  time.Duration
		lang string
		want string
	}{
		{0, "english", "Just now"},
		{59 * time.Second, "english", "Just now"},
		{-time.Hour, "english", "Just now"},
		{time.Minute, "english", "1 minute ago"},
		{59 * time.Minute, "english", "59 minutes ago"},
		{time.Hour, "english", "1 hour ago"},
		{23*time.Hour + 59*time.Minute, "english", "23 hours ago"},
		{24 * time.Hour, "english", "1 day ago"},
		{72 * time.Hour, "english", "3 days ago"},
		{5 * time.Minute, "hindi", "5 मिनट पहले"},
		{2 * time.Hour, "telugu", "2 గంటల క్రితం"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, svc.TimeAgo(now.Add(-tc.ago), now, tc.lang), "ago=%s lang=%s", tc.ago, tc.lang)
	}
}

func TestActivityIcon(t *testing.T) {
	cases := map[models.ActivityType][2]string{
		models.ActivityLessonPlan:     {"BookOpen", "blue"},
		models.ActivityTeachingAid:    {"FileText", "green"},
		models.ActivityAssessment:     {"ClipboardCheck", "purple"},
		models.ActivityStory:          {"BookHeart", "orange"},
		models.ActivityTranslation:    {"Languages", "teal"},
		models.ActivityImageAnalysis:  {"Image", "pink"},
		models.ActivityStudentProfile: {"UserRound", "indigo"},
		models.ActivityType("quiz"):   {"Activity", "gray"},
	}
	for activityType, want := range cases {
		icon, color := ActivityIcon(activityType)
		assert.Equal(t, want[0], icon, activityType)
		assert.Equal(t, want[1], color, activityType)
	}
}

func TestActivityServiceRecord(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	repo := &fakeActivityRepo{}
	svc := newTestActivityService(repo, nil, now)

	saved, err := svc.Record(context.Background(), models.Activity{TeacherID: " t1 ", Type: models.ActivityLessonPlan, Title: "Fractions lesson"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), saved.ID)
	assert.Equal(t, "t1", saved.TeacherID)
	assert.Equal(t, now, saved.CreatedAt)

	_, err = svc.Record(context.Background(), models.Activity{TeacherID: "t1", Type: models.ActivityLessonPlan})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	repo.err = assert.AnError
	svc.RecordQuietly(context.Background(), models.Activity{TeacherID: "t1", Type: models.ActivityStory, Title: "x"})
	assert.Len(t, repo.created, 1)
}

func TestActivityServiceRecentDecorates(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	repo := &fakeActivityRepo{recent: []models.Activity{
		{ID: 2, TeacherID: "t1", Type: models.ActivityStory, Title: "River story", CreatedAt: now.Add(-2 * time.Hour)},
		{ID: 1, TeacherID: "t1", Type: models.ActivityStudentProfile, Title: "Added student profile", CreatedAt: now.Add(-30 * time.Second)},
	}}
	agents := &fakeAgentRunner{}
	svc := newTestActivityService(repo, agents, now)

	views, err := svc.Recent(context.Background(), "t1", "english", 500)
	require.NoError(t, err)
	assert.Equal(t, maxActivityLimit, repo.lastLimit)
	require.Len(t, views, 2)
	assert.Equal(t, "2 hours ago", views[0].TimeAgo)
	assert.Equal(t, "BookHeart", views[0].Icon)
	assert.Equal(t, "orange", views[0].Color)
	assert.Equal(t, "Just now", views[1].TimeAgo)
	assert.Equal(t, "River story", views[0].Title)
	assert.Empty(t, agents.calls)
}

func TestActivityServiceRecentTranslatesTitles(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	repo := &fakeActivityRepo{recent: []models.Activity{
		{ID: 1, TeacherID: "t1", Type: models.ActivityLessonPlan, Title: "Fractions", CreatedAt: now.Add(-48 * time.Hour)},
	}}
	agents := &fakeAgentRunner{results: map[models.AgentName]map[string]interface{}{
		models.AgentTranslation: {"translated_text": "भिन्न"},
	}}
	svc := newTestActivityService(repo, agents, now)

	views, err := svc.Recent(context.Background(), "t1", "hindi", 0)
	require.NoError(t, err)
	assert.Equal(t, defaultActivityLimit, repo.lastLimit)
	require.Len(t, views, 1)
	assert.Equal(t, "भिन्न", views[0].Title)
	assert.Equal(t, "2 दिन पहले", views[0].TimeAgo)
}

func TestActivityServiceRecentRendersCatalogTitlesLocally(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	repo := &fakeActivityRepo{recent: []models.Activity{
		{ID: 2, TeacherID: "t1", Type: models.ActivityLessonPlan, Title: "Lesson Plan Agent completed",
			TitleKey: "activity.agent_completed", TitleArgs: []string{"Lesson Plan Agent"}, CreatedAt: now},
		{ID: 1, TeacherID: "t1", Type: models.ActivityStudentProfile, Title: "Added student profile",
			TitleKey: "activity.student_created", CreatedAt: now},
	}}
	agents := &fakeAgentRunner{}
	svc := newTestActivityService(repo, agents, now)

	views, err := svc.Recent(context.Background(), "t1", "hindi", 10)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, "Lesson Plan Agent पूरा हुआ", views[0].Title)
	assert.Equal(t, "छात्र प्रोफ़ाइल जोड़ी गई", views[1].Title)
	assert.Empty(t, agents.calls)
}

func TestActivityServiceRecentIgnoresDemoAgentForCatalogTitles(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	repo := &fakeActivityRepo{recent: []models.Activity{
		{ID: 1, TeacherID: "t1", Type: models.ActivityStudentProfile, Title: "Added student profile",
			TitleKey: "activity.student_created", CreatedAt: now},
	}}
	svc := newTestActivityService(repo, NewAgentService(AgentServiceConfig{}, nil, nil), now)

	views, err := svc.Recent(context.Background(), "t1", "hindi", 10)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "छात्र प्रोफ़ाइल जोड़ी गई", views[0].Title)
}

func TestActivityServiceCountByType(t *testing.T) {
	repo := &fakeActivityRepo{counts: []models.ActivityTypeCount{
		{Type: models.ActivityLessonPlan, Total: 3},
		{Type: models.ActivityStory, Total: 1},
	}}
	svc := newTestActivityService(repo, nil, time.Now())

	counts, err := svc.CountByType(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, 3, counts[models.ActivityLessonPlan])
	assert.Equal(t, 0, counts[models.ActivityAssessment])
}
