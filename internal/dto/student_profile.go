package dto

import "github.com/noah-isme/ai-saathi-api/internal/models"

// CreateStudentProfileRequest is the payload accepted by POST /students.
// Store-assigned fields (id, createdAt, updatedAt) are not part of the shape.
type CreateStudentProfileRequest struct {
	Name                     string   `json:"name" validate:"notblank"`
	DateOfBirth              string   `json:"dateOfBirth" validate:"required,isodate"`
	Gender                   string   `json:"gender" validate:"required,gender"`
	Photo                    *string  `json:"photo"`
	ExamSkills               []string `json:"examSkills" validate:"omitempty,dive,notblank"`
	Languages                []string `json:"languages" validate:"omitempty,min=1,dive,notblank"`
	BloodGroup               *string  `json:"bloodGroup" validate:"omitempty,blood_group"`
	EmergencyContactName     string   `json:"emergencyContactName" validate:"notblank"`
	EmergencyContactMobile   string   `json:"emergencyContactMobile" validate:"mobile"`
	EmergencyContactRelation string   `json:"emergencyContactRelation" validate:"notblank"`
	Height                   *float64 `json:"height" validate:"omitempty,gte=50,lte=250"`
	Weight                   *float64 `json:"weight" validate:"omitempty,gte=10,lte=150"`
	AttendancePercentage     *float64 `json:"attendancePercentage" validate:"omitempty,gte=0,lte=100"`
	Class                    string   `json:"class" validate:"notblank"`
	SpecialStatus            *string  `json:"specialStatus" validate:"omitempty,special_status"`
}

// UpdateStudentProfileRequest is the payload accepted by PATCH /students/{id}.
// Nil fields are left untouched. Clear names optional fields to reset to null.
type UpdateStudentProfileRequest struct {
	Name                     *string  `json:"name" validate:"omitempty,notblank"`
	DateOfBirth              *string  `json:"dateOfBirth" validate:"omitempty,isodate"`
	Gender                   *string  `json:"gender" validate:"omitempty,gender"`
	Photo                    *string  `json:"photo"`
	ExamSkills               []string `json:"examSkills" validate:"omitempty,dive,notblank"`
	Languages                []string `json:"languages" validate:"omitempty,min=1,dive,notblank"`
	BloodGroup               *string  `json:"bloodGroup" validate:"omitempty,blood_group"`
	EmergencyContactName     *string  `json:"emergencyContactName" validate:"omitempty,notblank"`
	EmergencyContactMobile   *string  `json:"emergencyContactMobile" validate:"omitempty,mobile"`
	EmergencyContactRelation *string  `json:"emergencyContactRelation" validate:"omitempty,notblank"`
	Height                   *float64 `json:"height" validate:"omitempty,gte=50,lte=250"`
	Weight                   *float64 `json:"weight" validate:"omitempty,gte=10,lte=150"`
	AttendancePercentage     *float64 `json:"attendancePercentage" validate:"omitempty,gte=0,lte=100"`
	Class                    *string  `json:"class" validate:"omitempty,notblank"`
	SpecialStatus            *string  `json:"specialStatus" validate:"omitempty,special_status"`
	Clear                    []string `json:"clear" validate:"omitempty,dive,oneof=photo bloodGroup height weight"`
}

// CreateRequestFromProfile rebuilds the create payload of a stored profile.
func CreateRequestFromProfile(p models.StudentProfile) CreateStudentProfileRequest {
	req := CreateStudentProfileRequest{
		Name:                     p.Name,
		DateOfBirth:              p.DateOfBirth.String(),
		Gender:                   string(p.Gender),
		Photo:                    p.Photo,
		ExamSkills:               append([]string{}, p.ExamSkills...),
		Languages:                append([]string{}, p.Languages...),
		EmergencyContactName:     p.EmergencyContactName,
		EmergencyContactMobile:   p.EmergencyContactMobile,
		EmergencyContactRelation: p.EmergencyContactRelation,
		Height:                   p.Height,
		Weight:                   p.Weight,
		Class:                    p.Class,
	}
	if p.BloodGroup != nil {
		group := string(*p.BloodGroup)
		req.BloodGroup = &group
	}
	attendance := p.AttendancePercentage
	req.AttendancePercentage = &attendance
	status := string(p.SpecialStatus)
	req.SpecialStatus = &status
	return req
}

// StudentListQuery binds the GET /students query string.
type StudentListQuery struct {
	Search        string `form:"search"`
	Class         string `form:"class"`
	SpecialStatus string `form:"specialStatus"`
	Page          int    `form:"page"`
	Limit         int    `form:"limit"`
	Sort          string `form:"sort"`
	Order         string `form:"order"`
}

// StudentExportQuery binds the GET /students/export query string.
type StudentExportQuery struct {
	Format        string `form:"format"`
	Class         string `form:"class"`
	SpecialStatus string `form:"specialStatus"`
}

// ExportResponse points at a generated export.
type ExportResponse struct {
	ID          string `json:"id"`
	Format      string `json:"format"`
	Rows        int    `json:"rows"`
	Token       string `json:"token"`
	DownloadURL string `json:"downloadUrl"`
	ExpiresAt   string `json:"expiresAt"`
}
