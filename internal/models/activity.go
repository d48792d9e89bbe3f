package models

import (
	"time"

	"github.com/lib/pq"
)

// ActivityType classifies entries of the teacher activity feed.
type ActivityType string

const (
	ActivityLessonPlan     ActivityType = "lesson_plan"
	ActivityTeachingAid    ActivityType = "teaching_aid"
	ActivityAssessment     ActivityType = "assessment"
	ActivityStory          ActivityType = "story"
	ActivityTranslation    ActivityType = "translation"
	ActivityImageAnalysis  ActivityType = "image_analysis"
	ActivityStudentProfile ActivityType = "student_profile"
)

// ContentActivityTypes are the activity types produced by agents.
var ContentActivityTypes = []ActivityType{
	ActivityLessonPlan, ActivityTeachingAid, ActivityAssessment,
	ActivityStory, ActivityTranslation, ActivityImageAnalysis,
}

// Activity is a single feed entry. When TitleKey is set the title is a
// catalog message rendered per language from TitleKey and TitleArgs; Title
// keeps the English rendering.
type Activity struct {
	ID          int64          `db:"id" json:"id"`
	TeacherID   string         `db:"teacher_id" json:"teacherId"`
	Type        ActivityType   `db:"type" json:"type"`
	Title       string         `db:"title" json:"title"`
	TitleKey    string         `db:"title_key" json:"-"`
	TitleArgs   pq.StringArray `db:"title_args" json:"-"`
	Description string         `db:"description" json:"description"`
	Reference   *string        `db:"reference" json:"reference,omitempty"`
	CreatedAt   time.Time      `db:"created_at" json:"createdAt"`
}

// ActivityView is an activity decorated for display.
type ActivityView struct {
	Activity
	TimeAgo string `json:"timeAgo"`
	Icon    string `json:"icon"`
	Color   string `json:"color"`
}

// ActivityTypeCount is a grouped count row.
type ActivityTypeCount struct {
	Type  ActivityType `db:"type"`
	Total int          `db:"total"`
}

// DashboardStats summarises a teacher's workspace.
type DashboardStats struct {
	TeachingAids  int                  `json:"teachingAids"`
	LessonPlans   int                  `json:"lessonPlans"`
	Assessments   int                  `json:"assessments"`
	Stories       int                  `json:"stories"`
	Translations  int                  `json:"translations"`
	ImageAnalyses int                  `json:"imageAnalyses"`
	TotalContent  int                  `json:"totalContent"`
	Students      StudentProfileStats  `json:"students"`
	ContentByType map[ActivityType]int `json:"contentByType"`
	GeneratedAt   time.Time            `json:"generatedAt"`
}
