package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/ai-saathi-api/internal/models"
)

// ActivityRepository persists the teacher activity feed.
type ActivityRepository struct {
	db *sqlx.DB
}

// NewActivityRepository constructs an ActivityRepository.
func NewActivityRepository(db *sqlx.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// Create appends an activity.
func (r *ActivityRepository) Create(ctx context.Context, activity *models.Activity) error {
	if activity.CreatedAt.IsZero() {
		activity.CreatedAt = time.Now().UTC()
	}
	if activity.TitleArgs == nil {
		activity.TitleArgs = pq.StringArray{}
	}
	const query = `INSERT INTO activities (teacher_id, type, title, title_key, title_args, description, reference, created_at)
        VALUES (:teacher_id, :type, :title, :title_key, :title_args, :description, :reference, :created_at) RETURNING id`
	rows, err := r.db.NamedQueryContext(ctx, query, activity)
	if err != nil {
		return fmt.Errorf("create activity: %w", err)
	}
	defer rows.Close()
	if rows.Next() {
		if err := rows.Scan(&activity.ID); err != nil {
			return fmt.Errorf("scan activity id: %w", err)
		}
	}
	return rows.Err()
}

// ListRecent returns the newest activities of a teacher.
func (r *ActivityRepository) ListRecent(ctx context.Context, teacherID string, limit int) ([]models.Activity, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	const query = `SELECT id, teacher_id, type, title, title_key, title_args, description, reference, created_at FROM activities
        WHERE teacher_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2`
	var activities []models.Activity
	if err := r.db.SelectContext(ctx, &activities, query, teacherID, limit); err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	return activities, nil
}

// CountByType groups a teacher's activities by type.
func (r *ActivityRepository) CountByType(ctx context.Context, teacherID string) ([]models.ActivityTypeCount, error) {
	const query = `SELECT type, COUNT(*) AS total FROM activities WHERE teacher_id = $1 GROUP BY type`
	var counts []models.ActivityTypeCount
	if err := r.db.SelectContext(ctx, &counts, query, teacherID); err != nil {
		return nil, fmt.Errorf("count activities: %w", err)
	}
	return counts, nil
}
