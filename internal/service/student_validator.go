package service

import (
	"regexp"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/noah-isme/ai-saathi-api/internal/dto"
	"github.com/noah-isme/ai-saathi-api/internal/models"
	appErrors "github.com/noah-isme/ai-saathi-api/pkg/errors"
)

var mobileRegex = regexp.MustCompile(`^[0-9]{10}$`)

// custom validation tags and their messages
var studentTagMessages = map[string]string{
	"notblank":       "{0} cannot be blank",
	"mobile":         "mobile number must be exactly 10 digits",
	"isodate":        "{0} must be a valid date in YYYY-MM-DD format",
	"gender":         "{0} must be one of Male, Female, Other",
	"blood_group":    "{0} must be one of A+, B+, O+, AB+, A-, B-, O-, AB-",
	"special_status": "{0} must be one of Blind, Deaf, Dyslexia, Down Syndrome, None",
}

var defaultLanguages = []string{"Hindi"}

// StudentValidator checks student profile payloads and normalises them.
type StudentValidator struct {
	validate   *validator.Validate
	translator ut.Translator
}

// NewStudentValidator registers the student rules on a fresh validator.
func NewStudentValidator() *StudentValidator {
	validate := newJSONValidator()

	english := en.New()
	uni := ut.New(english, english)
	translator, _ := uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	_ = validate.RegisterValidation("notblank", notBlankValidation)
	_ = validate.RegisterValidation("mobile", mobileValidation)
	_ = validate.RegisterValidation("isodate", isoDateValidation)
	_ = validate.RegisterValidation("gender", enumValidation(func(raw string) error { _, err := models.ParseGender(raw); return err }))
	_ = validate.RegisterValidation("blood_group", enumValidation(func(raw string) error { _, err := models.ParseBloodGroup(raw); return err }))
	_ = validate.RegisterValidation("special_status", enumValidation(func(raw string) error { _, err := models.ParseSpecialStatus(raw); return err }))

	for tag, text := range studentTagMessages {
		registerTranslation(validate, translator, tag, text)
	}

	return &StudentValidator{validate: validate, translator: translator}
}

// ValidateCreate checks a create payload and applies defaults.
func (v *StudentValidator) ValidateCreate(req dto.CreateStudentProfileRequest) (models.StudentProfileInput, error) {
	if err := v.check(req); err != nil {
		return models.StudentProfileInput{}, err
	}

	dob, _ := models.ParseDate(req.DateOfBirth)
	gender, _ := models.ParseGender(req.Gender)
	input := models.StudentProfileInput{
		Name:                     strings.TrimSpace(req.Name),
		DateOfBirth:              dob,
		Gender:                   gender,
		Photo:                    req.Photo,
		ExamSkills:               []string{},
		Languages:                append([]string{}, defaultLanguages...),
		EmergencyContactName:     strings.TrimSpace(req.EmergencyContactName),
		EmergencyContactMobile:   req.EmergencyContactMobile,
		EmergencyContactRelation: strings.TrimSpace(req.EmergencyContactRelation),
		Height:                   req.Height,
		Weight:                   req.Weight,
		Class:                    strings.TrimSpace(req.Class),
		SpecialStatus:            models.SpecialStatusNone,
	}
	if req.ExamSkills != nil {
		input.ExamSkills = append([]string{}, req.ExamSkills...)
	}
	if req.Languages != nil {
		input.Languages = append([]string{}, req.Languages...)
	}
	if req.BloodGroup != nil {
		group, _ := models.ParseBloodGroup(*req.BloodGroup)
		input.BloodGroup = &group
	}
	if req.AttendancePercentage != nil {
		input.AttendancePercentage = *req.AttendancePercentage
	}
	if req.SpecialStatus != nil {
		status, _ := models.ParseSpecialStatus(*req.SpecialStatus)
		input.SpecialStatus = status
	}
	return input, nil
}

// ValidateUpdate checks a partial payload; only supplied fields are converted.
func (v *StudentValidator) ValidateUpdate(req dto.UpdateStudentProfileRequest) (models.StudentProfilePatch, error) {
	if err := v.check(req); err != nil {
		return models.StudentProfilePatch{}, err
	}

	patch := models.StudentProfilePatch{
		Name:                     trimmed(req.Name),
		Photo:                    req.Photo,
		EmergencyContactName:     trimmed(req.EmergencyContactName),
		EmergencyContactMobile:   req.EmergencyContactMobile,
		EmergencyContactRelation: trimmed(req.EmergencyContactRelation),
		Height:                   req.Height,
		Weight:                   req.Weight,
		AttendancePercentage:     req.AttendancePercentage,
		Class:                    trimmed(req.Class),
	}
	if req.ExamSkills != nil {
		patch.ExamSkills = append([]string{}, req.ExamSkills...)
	}
	if req.Languages != nil {
		patch.Languages = append([]string{}, req.Languages...)
	}
	if req.DateOfBirth != nil {
		dob, _ := models.ParseDate(*req.DateOfBirth)
		patch.DateOfBirth = &dob
	}
	if req.Gender != nil {
		gender, _ := models.ParseGender(*req.Gender)
		patch.Gender = &gender
	}
	if req.BloodGroup != nil {
		group, _ := models.ParseBloodGroup(*req.BloodGroup)
		patch.BloodGroup = &group
	}
	if req.SpecialStatus != nil {
		status, _ := models.ParseSpecialStatus(*req.SpecialStatus)
		patch.SpecialStatus = &status
	}
	for _, field := range req.Clear {
		var supplied bool
		switch field {
		case "photo":
			patch.ClearPhoto, supplied = true, req.Photo != nil
		case "bloodGroup":
			patch.ClearBloodGroup, supplied = true, req.BloodGroup != nil
		case "height":
			patch.ClearHeight, supplied = true, req.Height != nil
		case "weight":
			patch.ClearWeight, supplied = true, req.Weight != nil
		}
		if supplied {
			return models.StudentProfilePatch{}, appErrors.WithDetails(appErrors.ErrValidation, "invalid student payload", []appErrors.FieldError{
				{Field: field, Rule: "clear", Message: field + " cannot be set and cleared together"},
			})
		}
	}
	return patch, nil
}

func (v *StudentValidator) check(req interface{}) error {
	if err := v.validate.Struct(req); err != nil {
		return validationError(err, "invalid student payload", v.translator)
	}
	return nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	out := strings.TrimSpace(*s)
	return &out
}

func registerTranslation(validate *validator.Validate, translator ut.Translator, tag, text string) {
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, true) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

func notBlankValidation(fl validator.FieldLevel) bool {
	if str, ok := fl.Field().Interface().(string); ok {
		return strings.TrimSpace(str) != ""
	}
	return false
}

func mobileValidation(fl validator.FieldLevel) bool {
	return mobileRegex.MatchString(fl.Field().String())
}

func isoDateValidation(fl validator.FieldLevel) bool {
	_, err := models.ParseDate(fl.Field().String())
	return err == nil
}

func enumValidation(parse func(string) error) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return parse(fl.Field().String()) == nil
	}
}
