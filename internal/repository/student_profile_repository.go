package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/ai-saathi-api/internal/models"
)

const studentProfileColumns = `id, name, date_of_birth, gender, photo, exam_skills, languages, blood_group,
        emergency_contact_name, emergency_contact_mobile, emergency_contact_relation,
        height, weight, attendance_percentage, class, special_status, created_at, updated_at`

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// StudentProfileRepository manages persistence for student profiles.
type StudentProfileRepository struct {
	db *sqlx.DB
}

// NewStudentProfileRepository constructs a StudentProfileRepository.
func NewStudentProfileRepository(db *sqlx.DB) *StudentProfileRepository {
	return &StudentProfileRepository{db: db}
}

// List returns profiles matching the provided filters.
func (r *StudentProfileRepository) List(ctx context.Context, filter models.StudentProfileFilter) ([]models.StudentProfile, int, error) {
	where, args := studentProfileConditions(filter)

	column, order := studentProfileSort(filter)
	page, size := models.NormalizePage(filter.Page, filter.PageSize)
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s FROM student_profiles %s ORDER BY %s %s LIMIT %d OFFSET %d", studentProfileColumns, where, column, order, size, offset)
	var profiles []models.StudentProfile
	if err := r.db.SelectContext(ctx, &profiles, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list student profiles: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, fmt.Sprintf("SELECT COUNT(*) FROM student_profiles %s", where), args...); err != nil {
		return nil, 0, fmt.Errorf("count student profiles: %w", err)
	}
	return profiles, total, nil
}

// ListAll returns every matching profile ordered by class and name.
func (r *StudentProfileRepository) ListAll(ctx context.Context, filter models.StudentProfileFilter) ([]models.StudentProfile, error) {
	where, args := studentProfileConditions(filter)
	query := fmt.Sprintf("SELECT %s FROM student_profiles %s ORDER BY class ASC, name ASC", studentProfileColumns, where)
	var profiles []models.StudentProfile
	if err := r.db.SelectContext(ctx, &profiles, query, args...); err != nil {
		return nil, fmt.Errorf("list all student profiles: %w", err)
	}
	return profiles, nil
}

// FindByID fetches a profile by identifier.
func (r *StudentProfileRepository) FindByID(ctx context.Context, id int64) (*models.StudentProfile, error) {
	query := fmt.Sprintf("SELECT %s FROM student_profiles WHERE id = $1", studentProfileColumns)
	var profile models.StudentProfile
	if err := r.db.GetContext(ctx, &profile, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find student profile: %w", err)
	}
	return &profile, nil
}

// Create inserts a profile and fills the store-assigned fields.
func (r *StudentProfileRepository) Create(ctx context.Context, profile *models.StudentProfile) error {
	now := time.Now().UTC()
	profile.CreatedAt = now
	profile.UpdatedAt = now
	const query = `INSERT INTO student_profiles (name, date_of_birth, gender, photo, exam_skills, languages, blood_group,
        emergency_contact_name, emergency_contact_mobile, emergency_contact_relation, height, weight,
        attendance_percentage, class, special_status, created_at, updated_at)
        VALUES (:name, :date_of_birth, :gender, :photo, :exam_skills, :languages, :blood_group,
        :emergency_contact_name, :emergency_contact_mobile, :emergency_contact_relation, :height, :weight,
        :attendance_percentage, :class, :special_status, :created_at, :updated_at)
        RETURNING id`
	rows, err := r.db.NamedQueryContext(ctx, query, profile)
	if err != nil {
		return fmt.Errorf("create student profile: %w", err)
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return fmt.Errorf("create student profile: %w", err)
		}
		return fmt.Errorf("create student profile: no id returned")
	}
	if err := rows.Scan(&profile.ID); err != nil {
		return fmt.Errorf("scan student profile id: %w", err)
	}
	return nil
}

// Patch writes only the columns set in patch, plus updated_at, and returns
// the stored row. Concurrent patches of different fields do not overwrite
// each other.
func (r *StudentProfileRepository) Patch(ctx context.Context, id int64, patch models.StudentProfilePatch) (*models.StudentProfile, error) {
	set, args := studentProfileAssignments(patch)
	args = append(args, time.Now().UTC())
	set = append(set, fmt.Sprintf("updated_at = $%d", len(args)))
	args = append(args, id)
	query := fmt.Sprintf("UPDATE student_profiles SET %s WHERE id = $%d RETURNING %s",
		strings.Join(set, ", "), len(args), studentProfileColumns)

	var profile models.StudentProfile
	if err := r.db.GetContext(ctx, &profile, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("patch student profile: %w", err)
	}
	return &profile, nil
}

// Delete removes a profile.
func (r *StudentProfileRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM student_profiles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete student profile: %w", err)
	}
	return requireAffected(res)
}

// Stats aggregates roster counts for the dashboard.
func (r *StudentProfileRepository) Stats(ctx context.Context) (*models.StudentProfileStats, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) AS total,
        COUNT(*) FILTER (WHERE special_status IN (%s)) AS high_support,
        COUNT(*) FILTER (WHERE special_status IN (%s)) AS medium_support,
        COALESCE(AVG(attendance_percentage), 0) AS average_attendance
        FROM student_profiles`, quoteStatuses(models.HighSupportStatuses), quoteStatuses(models.MediumSupportStatuses))
	var stats models.StudentProfileStats
	if err := r.db.GetContext(ctx, &stats, query); err != nil {
		return nil, fmt.Errorf("student profile stats: %w", err)
	}
	return &stats, nil
}

func studentProfileConditions(filter models.StudentProfileFilter) (string, []interface{}) {
	var conditions []string
	var args []interface{}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf(`LOWER(name) LIKE $%d ESCAPE '\'`, len(args)+1))
		args = append(args, "%"+likeEscaper.Replace(strings.ToLower(filter.Search))+"%")
	}
	if filter.Class != "" {
		conditions = append(conditions, fmt.Sprintf("class = $%d", len(args)+1))
		args = append(args, filter.Class)
	}
	if filter.SpecialStatus != "" {
		conditions = append(conditions, fmt.Sprintf("special_status = $%d", len(args)+1))
		args = append(args, filter.SpecialStatus)
	}
	if len(conditions) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(conditions, " AND "), args
}

func studentProfileAssignments(p models.StudentProfilePatch) ([]string, []interface{}) {
	var set []string
	var args []interface{}
	assign := func(column string, value interface{}) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if p.Name != nil {
		assign("name", *p.Name)
	}
	if p.DateOfBirth != nil {
		assign("date_of_birth", *p.DateOfBirth)
	}
	if p.Gender != nil {
		assign("gender", string(*p.Gender))
	}
	if p.ClearPhoto {
		set = append(set, "photo = NULL")
	} else if p.Photo != nil {
		assign("photo", *p.Photo)
	}
	if p.ExamSkills != nil {
		assign("exam_skills", pq.StringArray(p.ExamSkills))
	}
	if p.Languages != nil {
		assign("languages", pq.StringArray(p.Languages))
	}
	if p.ClearBloodGroup {
		set = append(set, "blood_group = NULL")
	} else if p.BloodGroup != nil {
		assign("blood_group", string(*p.BloodGroup))
	}
	if p.EmergencyContactName != nil {
		assign("emergency_contact_name", *p.EmergencyContactName)
	}
	if p.EmergencyContactMobile != nil {
		assign("emergency_contact_mobile", *p.EmergencyContactMobile)
	}
	if p.EmergencyContactRelation != nil {
		assign("emergency_contact_relation", *p.EmergencyContactRelation)
	}
	if p.ClearHeight {
		set = append(set, "height = NULL")
	} else if p.Height != nil {
		assign("height", *p.Height)
	}
	if p.ClearWeight {
		set = append(set, "weight = NULL")
	} else if p.Weight != nil {
		assign("weight", *p.Weight)
	}
	if p.AttendancePercentage != nil {
		assign("attendance_percentage", *p.AttendancePercentage)
	}
	if p.Class != nil {
		assign("class", *p.Class)
	}
	if p.SpecialStatus != nil {
		assign("special_status", string(*p.SpecialStatus))
	}
	return set, args
}

func studentProfileSort(filter models.StudentProfileFilter) (string, string) {
	allowedSorts := map[string]string{
		"name":                 "name",
		"class":                "class",
		"dateOfBirth":          "date_of_birth",
		"attendancePercentage": "attendance_percentage",
		"createdAt":            "created_at",
	}
	column, ok := allowedSorts[filter.SortBy]
	if !ok {
		column = "created_at"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}
	return column, order
}

func quoteStatuses(statuses []models.SpecialStatus) string {
	quoted := make([]string, len(statuses))
	for i, s := range statuses {
		quoted[i] = "'" + string(s) + "'"
	}
	return strings.Join(quoted, ", ")
}

func requireAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
