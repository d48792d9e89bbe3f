package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAgeCountsCompletedYears(t *testing.T) {
	dob := time.Date(2010, time.June, 15, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		ref  time.Time
		want int
	}{
		{time.Date(2024, time.June, 14, 0, 0, 0, 0, time.UTC), 13},
		{time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC), 14},
		{time.Date(2024, time.June, 16, 0, 0, 0, 0, time.UTC), 14},
		{time.Date(2024, time.May, 30, 0, 0, 0, 0, time.UTC), 13},
		{time.Date(2024, time.December, 1, 0, 0, 0, 0, time.UTC), 14},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Age(dob, tc.ref), tc.ref.Format(DateLayout))
	}
}

func TestClassifyAccessibility(t *testing.T) {
	assert.Equal(t, AccessibilityHigh, ClassifyAccessibility("Blind").Level)
	assert.Equal(t, AccessibilityHigh, ClassifyAccessibility("Deaf").Level)
	assert.Equal(t, AccessibilityMedium, ClassifyAccessibility("Dyslexia").Level)
	assert.Equal(t, AccessibilityMedium, ClassifyAccessibility("Down Syndrome").Level)
	assert.Equal(t, AccessibilityNone, ClassifyAccessibility("None").Level)

	fallback := ClassifyAccessibility("unknown-value")
	assert.Equal(t, AccessibilityNone, fallback.Level)
	assert.Equal(t, "No Special Needs", fallback.Label)
	assert.Equal(t, "bg-green-100 text-green-800", fallback.StyleTag)
	assert.Equal(t, "High Support", ClassifyAccessibility("Blind").Label)
}

func TestParseClosedVariants(t *testing.T) {
	g, err := ParseGender("Female")
	require.NoError(t, err)
	assert.Equal(t, GenderFemale, g)
	_, err = ParseGender("female")
	assert.Error(t, err)

	b, err := ParseBloodGroup("AB-")
	require.NoError(t, err)
	assert.Equal(t, BloodGroupABNeg, b)
	_, err = ParseBloodGroup("C+")
	assert.Error(t, err)

	s, err := ParseSpecialStatus("Down Syndrome")
	require.NoError(t, err)
	assert.Equal(t, SpecialStatusDownSyndrome, s)
	_, err = ParseSpecialStatus("Autism")
	assert.Error(t, err)
}

func TestClosedVariantScanRejectsCorruptRows(t *testing.T) {
	var g Gender
	require.NoError(t, g.Scan([]byte("Other")))
	assert.Equal(t, GenderOther, g)
	assert.Error(t, g.Scan("M"))
	assert.Error(t, g.Scan(42))

	var s SpecialStatus
	assert.Error(t, s.Scan("unknown"))
}

func TestDateJSONAndScan(t *testing.T) {
	d := NewDate(2010, time.June, 15)
	raw, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2010-06-15"`, string(raw))

	var parsed Date
	require.NoError(t, json.Unmarshal(raw, &parsed))
	assert.True(t, parsed.Equal(d.Time))
	assert.Error(t, json.Unmarshal([]byte(`"15/06/2010"`), &parsed))

	var scanned Date
	require.NoError(t, scanned.Scan(time.Date(2010, time.June, 15, 0, 0, 0, 0, time.Local)))
	assert.Equal(t, "2010-06-15", scanned.String())
	require.NoError(t, scanned.Scan("2011-01-02T00:00:00Z"))
	assert.Equal(t, "2011-01-02", scanned.String())

	value, err := d.Value()
	require.NoError(t, err)
	assert.Equal(t, "2010-06-15", value)
}

func TestPatchApplyTouchesOnlySetFields(t *testing.T) {
	height := 140.0
	profile := StudentProfile{
		ID:                   7,
		Name:                 "Asha",
		Languages:            []string{"Hindi"},
		Height:               &height,
		AttendancePercentage: 40,
		SpecialStatus:        SpecialStatusNone,
	}
	before := profile

	attendance := 87.5
	patch := StudentProfilePatch{AttendancePercentage: &attendance}
	assert.False(t, patch.IsEmpty())
	patch.Apply(&profile)

	assert.Equal(t, 87.5, profile.AttendancePercentage)
	profile.AttendancePercentage = before.AttendancePercentage
	assert.Equal(t, before, profile)
	assert.True(t, StudentProfilePatch{}.IsEmpty())
}

func TestStudentProfileViewDerivesFields(t *testing.T) {
	profile := StudentProfile{DateOfBirth: NewDate(2010, time.June, 15), SpecialStatus: SpecialStatusDeaf}
	view := NewStudentProfileView(profile, time.Date(2024, time.June, 14, 12, 0, 0, 0, time.UTC))

	assert.Equal(t, 13, view.Age)
	assert.Equal(t, AccessibilityHigh, view.Accessibility.Level)
	assert.NotNil(t, view.ExamSkills)

	raw, err := json.Marshal(view)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"dateOfBirth":"2010-06-15"`)
	assert.Contains(t, string(raw), `"examSkills":[]`)
}
