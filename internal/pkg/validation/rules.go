package validation

import (
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/acesped/portal/internal/app/models"
	"github.com/go-playground/validator/v10"
)

// Validation rule patterns
var (
	// AcademicSessionPattern matches "2025/2026".
	AcademicSessionPattern = `^(\d{4})/(\d{4})$`

	// Access codes are what staff type on a slide deck; keep them simple.
	AccessCodePattern = `^[A-Za-z0-9_-]{4,64}$`

	PasswordMinLength = 8
)

// CompiledPatterns caches compiled regex patterns for better performance
var CompiledPatterns = struct {
	AcademicSession *regexp.Regexp
	AccessCode      *regexp.Regexp
}{
	AcademicSession: regexp.MustCompile(AcademicSessionPattern),
	AccessCode:      regexp.MustCompile(AccessCodePattern),
}

// ValidAcademicSession reports whether s is "YYYY/YYYY" with consecutive
// years.
func ValidAcademicSession(s string) bool {
	m := CompiledPatterns.AcademicSession.FindStringSubmatch(s)
	if m == nil {
		return false
	}
	start, _ := strconv.Atoi(m[1])
	end, _ := strconv.Atoi(m[2])
	return end == start+1
}

// SessionStartYear returns the first year of a valid academic session.
func SessionStartYear(s string) (int, bool) {
	if !ValidAcademicSession(s) {
		return 0, false
	}
	year, _ := strconv.Atoi(s[:4])
	return year, true
}

// RegisterCustomValidations adds the portal's tags to v and makes field
// errors report JSON names.
func RegisterCustomValidations(v *validator.Validate) error {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	rules := map[string]validator.Func{
		"academic_session": func(fl validator.FieldLevel) bool {
			return ValidAcademicSession(fl.Field().String())
		},
		"semester": func(fl validator.FieldLevel) bool {
			_, err := models.ParseSemester(fl.Field().String())
			return err == nil
		},
		"grade": func(fl validator.FieldLevel) bool {
			_, err := models.ParseGrade(fl.Field().String())
			return err == nil
		},
		"access_code": func(fl validator.FieldLevel) bool {
			return CompiledPatterns.AccessCode.MatchString(fl.Field().String())
		},
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	return nil
}

// FormatFieldError creates a human-readable validation error message
func FormatFieldError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "min":
		return e.Field() + " must be at least " + e.Param()
	case "max":
		return e.Field() + " must be at most " + e.Param()
	case "gte":
		return e.Field() + " must be greater than or equal to " + e.Param()
	case "lte":
		return e.Field() + " must be less than or equal to " + e.Param()
	case "gt":
		return e.Field() + " must be greater than " + e.Param()
	case "email":
		return e.Field() + " must be a valid email address"
	case "oneof":
		return e.Field() + " must be one of: " + e.Param()
	case "academic_session":
		return e.Field() + " must look like 2025/2026"
	case "semester":
		return e.Field() + " must be First or Second"
	case "grade":
		return e.Field() + " must be one of A, B, C, D, E, F"
	case "access_code":
		return e.Field() + " must be 4-64 letters, digits, '-' or '_'"
	default:
		return e.Field() + " validation failed: " + e.Tag()
	}
}
