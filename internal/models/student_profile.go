package models

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
)

// DateLayout is the canonical textual form of a calendar date.
const DateLayout = "2006-01-02"

// Gender is the closed set of genders recorded on a profile.
type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
	GenderOther  Gender = "Other"
)

// Genders lists every accepted gender.
var Genders = []Gender{GenderMale, GenderFemale, GenderOther}

// ParseGender converts untrusted text into a Gender.
func ParseGender(raw string) (Gender, error) {
	for _, g := range Genders {
		if string(g) == raw {
			return g, nil
		}
	}
	return "", fmt.Errorf("unknown gender %q", raw)
}

// Scan implements sql.Scanner.
func (g *Gender) Scan(src interface{}) error {
	raw, err := scanText(src)
	if err != nil {
		return fmt.Errorf("scan gender: %w", err)
	}
	parsed, err := ParseGender(raw)
	if err != nil {
		return err
	}
	*g = parsed
	return nil
}

// Value implements driver.Valuer.
func (g Gender) Value() (driver.Value, error) {
	return string(g), nil
}

// BloodGroup is one of the eight ABO/Rh codes.
type BloodGroup string

const (
	BloodGroupAPos  BloodGroup = "A+"
	BloodGroupBPos  BloodGroup = "B+"
	BloodGroupOPos  BloodGroup = "O+"
	BloodGroupABPos BloodGroup = "AB+"
	BloodGroupANeg  BloodGroup = "A-"
	BloodGroupBNeg  BloodGroup = "B-"
	BloodGroupONeg  BloodGroup = "O-"
	BloodGroupABNeg BloodGroup = "AB-"
)

// BloodGroups lists every accepted blood group.
var BloodGroups = []BloodGroup{
	BloodGroupAPos, BloodGroupBPos, BloodGroupOPos, BloodGroupABPos,
	BloodGroupANeg, BloodGroupBNeg, BloodGroupONeg, BloodGroupABNeg,
}

// ParseBloodGroup converts untrusted text into a BloodGroup.
func ParseBloodGroup(raw string) (BloodGroup, error) {
	for _, b := range BloodGroups {
		if string(b) == raw {
			return b, nil
		}
	}
	return "", fmt.Errorf("unknown blood group %q", raw)
}

// Scan implements sql.Scanner.
func (b *BloodGroup) Scan(src interface{}) error {
	raw, err := scanText(src)
	if err != nil {
		return fmt.Errorf("scan blood group: %w", err)
	}
	parsed, err := ParseBloodGroup(raw)
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}

// Value implements driver.Valuer.
func (b BloodGroup) Value() (driver.Value, error) {
	return string(b), nil
}

// SpecialStatus is the declared accessibility category of a student.
type SpecialStatus string

const (
	SpecialStatusBlind        SpecialStatus = "Blind"
	SpecialStatusDeaf         SpecialStatus = "Deaf"
	SpecialStatusDyslexia     SpecialStatus = "Dyslexia"
	SpecialStatusDownSyndrome SpecialStatus = "Down Syndrome"
	SpecialStatusNone         SpecialStatus = "None"
)

// SpecialStatuses lists every accepted special status.
var SpecialStatuses = []SpecialStatus{
	SpecialStatusBlind, SpecialStatusDeaf, SpecialStatusDyslexia, SpecialStatusDownSyndrome, SpecialStatusNone,
}

// ParseSpecialStatus converts untrusted text into a SpecialStatus.
func ParseSpecialStatus(raw string) (SpecialStatus, error) {
	for _, s := range SpecialStatuses {
		if string(s) == raw {
			return s, nil
		}
	}
	return "", fmt.Errorf("unknown special status %q", raw)
}

// Scan implements sql.Scanner.
func (s *SpecialStatus) Scan(src interface{}) error {
	raw, err := scanText(src)
	if err != nil {
		return fmt.Errorf("scan special status: %w", err)
	}
	parsed, err := ParseSpecialStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Value implements driver.Valuer.
func (s SpecialStatus) Value() (driver.Value, error) {
	return string(s), nil
}

// Date is a calendar date without a time of day, rendered as YYYY-MM-DD.
type Date struct {
	time.Time
}

// ParseDate parses the canonical YYYY-MM-DD form.
func ParseDate(raw string) (Date, error) {
	t, err := time.Parse(DateLayout, raw)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", raw, err)
	}
	return Date{Time: t}, nil
}

// NewDate builds a Date at UTC midnight.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// String returns the canonical form.
func (d Date) String() string {
	return d.Format(DateLayout)
}

// MarshalJSON renders the date as a JSON string.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON accepts the canonical string form.
func (d *Date) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	parsed, err := ParseDate(raw)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Scan implements sql.Scanner for DATE columns.
func (d *Date) Scan(src interface{}) error {
	switch v := src.(type) {
	case time.Time:
		*d = NewDate(v.Year(), v.Month(), v.Day())
		return nil
	case string, []byte:
		raw, _ := scanText(v)
		if len(raw) > len(DateLayout) {
			raw = raw[:len(DateLayout)]
		}
		parsed, err := ParseDate(raw)
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	default:
		return fmt.Errorf("scan date: unsupported type %T", src)
	}
}

// Value implements driver.Valuer.
func (d Date) Value() (driver.Value, error) {
	return d.String(), nil
}

func scanText(src interface{}) (string, error) {
	switch v := src.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	default:
		return "", fmt.Errorf("unsupported type %T", src)
	}
}

// StudentProfile is a persisted student record.
type StudentProfile struct {
	ID                       int64          `db:"id" json:"id"`
	Name                     string         `db:"name" json:"name"`
	DateOfBirth              Date           `db:"date_of_birth" json:"dateOfBirth"`
	Gender                   Gender         `db:"gender" json:"gender"`
	Photo                    *string        `db:"photo" json:"photo"`
	ExamSkills               pq.StringArray `db:"exam_skills" json:"examSkills"`
	Languages                pq.StringArray `db:"languages" json:"languages"`
	BloodGroup               *BloodGroup    `db:"blood_group" json:"bloodGroup"`
	EmergencyContactName     string         `db:"emergency_contact_name" json:"emergencyContactName"`
	EmergencyContactMobile   string         `db:"emergency_contact_mobile" json:"emergencyContactMobile"`
	EmergencyContactRelation string         `db:"emergency_contact_relation" json:"emergencyContactRelation"`
	Height                   *float64       `db:"height" json:"height"`
	Weight                   *float64       `db:"weight" json:"weight"`
	AttendancePercentage     float64        `db:"attendance_percentage" json:"attendancePercentage"`
	Class                    string         `db:"class" json:"class"`
	SpecialStatus            SpecialStatus  `db:"special_status" json:"specialStatus"`
	CreatedAt                time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt                time.Time      `db:"updated_at" json:"updatedAt"`
}

// StudentProfileInput is a validated create payload with defaults applied.
type StudentProfileInput struct {
	Name                     string
	DateOfBirth              Date
	Gender                   Gender
	Photo                    *string
	ExamSkills               []string
	Languages                []string
	BloodGroup               *BloodGroup
	EmergencyContactName     string
	EmergencyContactMobile   string
	EmergencyContactRelation string
	Height                   *float64
	Weight                   *float64
	AttendancePercentage     float64
	Class                    string
	SpecialStatus            SpecialStatus
}

// NewProfile builds an unsaved profile from the input.
func (in StudentProfileInput) NewProfile() *StudentProfile {
	return &StudentProfile{
		Name:                     in.Name,
		DateOfBirth:              in.DateOfBirth,
		Gender:                   in.Gender,
		Photo:                    in.Photo,
		ExamSkills:               pq.StringArray(append([]string{}, in.ExamSkills...)),
		Languages:                pq.StringArray(append([]string{}, in.Languages...)),
		BloodGroup:               in.BloodGroup,
		EmergencyContactName:     in.EmergencyContactName,
		EmergencyContactMobile:   in.EmergencyContactMobile,
		EmergencyContactRelation: in.EmergencyContactRelation,
		Height:                   in.Height,
		Weight:                   in.Weight,
		AttendancePercentage:     in.AttendancePercentage,
		Class:                    in.Class,
		SpecialStatus:            in.SpecialStatus,
	}
}

// StudentProfilePatch is a validated partial update. Nil fields are left
// untouched; the Clear flags reset optional fields to null.
type StudentProfilePatch struct {
	Name                     *string
	DateOfBirth              *Date
	Gender                   *Gender
	Photo                    *string
	ExamSkills               []string
	Languages                []string
	BloodGroup               *BloodGroup
	EmergencyContactName     *string
	EmergencyContactMobile   *string
	EmergencyContactRelation *string
	Height                   *float64
	Weight                   *float64
	AttendancePercentage     *float64
	Class                    *string
	SpecialStatus            *SpecialStatus

	ClearPhoto      bool
	ClearBloodGroup bool
	ClearHeight     bool
	ClearWeight     bool
}

// IsEmpty reports whether the patch changes nothing.
func (p StudentProfilePatch) IsEmpty() bool {
	return p.Name == nil && p.DateOfBirth == nil && p.Gender == nil && p.Photo == nil &&
		p.ExamSkills == nil && p.Languages == nil && p.BloodGroup == nil &&
		p.EmergencyContactName == nil && p.EmergencyContactMobile == nil && p.EmergencyContactRelation == nil &&
		p.Height == nil && p.Weight == nil && p.AttendancePercentage == nil &&
		p.Class == nil && p.SpecialStatus == nil &&
		!p.ClearPhoto && !p.ClearBloodGroup && !p.ClearHeight && !p.ClearWeight
}

// Apply copies every set field onto the profile.
func (p StudentProfilePatch) Apply(profile *StudentProfile) {
	if p.Name != nil {
		profile.Name = *p.Name
	}
	if p.DateOfBirth != nil {
		profile.DateOfBirth = *p.DateOfBirth
	}
	if p.Gender != nil {
		profile.Gender = *p.Gender
	}
	if p.Photo != nil {
		photo := *p.Photo
		profile.Photo = &photo
	}
	if p.ExamSkills != nil {
		profile.ExamSkills = pq.StringArray(append([]string{}, p.ExamSkills...))
	}
	if p.Languages != nil {
		profile.Languages = pq.StringArray(append([]string{}, p.Languages...))
	}
	if p.BloodGroup != nil {
		group := *p.BloodGroup
		profile.BloodGroup = &group
	}
	if p.EmergencyContactName != nil {
		profile.EmergencyContactName = *p.EmergencyContactName
	}
	if p.EmergencyContactMobile != nil {
		profile.EmergencyContactMobile = *p.EmergencyContactMobile
	}
	if p.EmergencyContactRelation != nil {
		profile.EmergencyContactRelation = *p.EmergencyContactRelation
	}
	if p.Height != nil {
		h := *p.Height
		profile.Height = &h
	}
	if p.Weight != nil {
		w := *p.Weight
		profile.Weight = &w
	}
	if p.AttendancePercentage != nil {
		profile.AttendancePercentage = *p.AttendancePercentage
	}
	if p.Class != nil {
		profile.Class = *p.Class
	}
	if p.SpecialStatus != nil {
		profile.SpecialStatus = *p.SpecialStatus
	}
	if p.ClearPhoto {
		profile.Photo = nil
	}
	if p.ClearBloodGroup {
		profile.BloodGroup = nil
	}
	if p.ClearHeight {
		profile.Height = nil
	}
	if p.ClearWeight {
		profile.Weight = nil
	}
}

// StudentProfileFilter captures list parameters.
type StudentProfileFilter struct {
	Search        string
	Class         string
	SpecialStatus string
	Page          int
	PageSize      int
	SortBy        string
	SortOrder     string
}

// Age counts the completed years between dob and ref.
func Age(dob, ref time.Time) int {
	years := ref.Year() - dob.Year()
	if ref.Month() < dob.Month() || (ref.Month() == dob.Month() && ref.Day() < dob.Day()) {
		years--
	}
	return years
}

// AccessibilityLevel is the support tier derived from a special status.
type AccessibilityLevel string

const (
	AccessibilityHigh   AccessibilityLevel = "high"
	AccessibilityMedium AccessibilityLevel = "medium"
	AccessibilityNone   AccessibilityLevel = "none"
)

// AccessibilityInfo is the display form of an accessibility tier.
type AccessibilityInfo struct {
	Level    AccessibilityLevel `json:"level"`
	Label    string             `json:"label"`
	StyleTag string             `json:"styleTag"`
}

var accessibilityTiers = map[AccessibilityLevel]AccessibilityInfo{
	AccessibilityHigh:   {Level: AccessibilityHigh, Label: "High Support", StyleTag: "bg-red-100 text-red-800"},
	AccessibilityMedium: {Level: AccessibilityMedium, Label: "Medium Support", StyleTag: "bg-yellow-100 text-yellow-800"},
	AccessibilityNone:   {Level: AccessibilityNone, Label: "No Special Needs", StyleTag: "bg-green-100 text-green-800"},
}

// HighSupportStatuses and MediumSupportStatuses drive ClassifyAccessibility.
var (
	HighSupportStatuses   = []SpecialStatus{SpecialStatusBlind, SpecialStatusDeaf}
	MediumSupportStatuses = []SpecialStatus{SpecialStatusDyslexia, SpecialStatusDownSyndrome}
)

// ClassifyAccessibility maps any status string to a tier; unknown input is "none".
func ClassifyAccessibility(status string) AccessibilityInfo {
	for _, s := range HighSupportStatuses {
		if string(s) == status {
			return accessibilityTiers[AccessibilityHigh]
		}
	}
	for _, s := range MediumSupportStatuses {
		if string(s) == status {
			return accessibilityTiers[AccessibilityMedium]
		}
	}
	return accessibilityTiers[AccessibilityNone]
}

// StudentProfileView decorates a profile with derived fields.
type StudentProfileView struct {
	StudentProfile
	Age           int               `json:"age"`
	Accessibility AccessibilityInfo `json:"accessibility"`
}

// NewStudentProfileView derives age and accessibility against ref.
func NewStudentProfileView(profile StudentProfile, ref time.Time) StudentProfileView {
	if profile.ExamSkills == nil {
		profile.ExamSkills = pq.StringArray{}
	}
	if profile.Languages == nil {
		profile.Languages = pq.StringArray{}
	}
	return StudentProfileView{
		StudentProfile: profile,
		Age:            Age(profile.DateOfBirth.Time, ref),
		Accessibility:  ClassifyAccessibility(string(profile.SpecialStatus)),
	}
}

// StudentProfileStats aggregates the roster for the dashboard.
type StudentProfileStats struct {
	Total             int     `db:"total" json:"total"`
	HighSupport       int     `db:"high_support" json:"highSupport"`
	MediumSupport     int     `db:"medium_support" json:"mediumSupport"`
	AverageAttendance float64 `db:"average_attendance" json:"averageAttendance"`
}
