package validation

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Validation rule patterns
var (
	// Department code: 2-10 letters or digits starting with a letter, e.g. "CE", "MECH"
	DepartmentCodePattern = `^[A-Za-z][A-Za-z0-9]{1,9}$`

	// Subject code, e.g. "CE201", "CS-301L"
	SubjectCodePattern = `^[A-Za-z][A-Za-z0-9-]{1,15}$`

	// Enrollment number, e.g. "2023CE0012", "21/CE/045"
	EnrollmentPattern = `^[A-Za-z0-9][A-Za-z0-9/-]{3,31}$`
)

// CompiledPatterns caches compiled regex patterns
var CompiledPatterns = struct {
	DepartmentCode *regexp.Regexp
	SubjectCode    *regexp.Regexp
	Enrollment     *regexp.Regexp
}{
	DepartmentCode: regexp.MustCompile(DepartmentCodePattern),
	SubjectCode:    regexp.MustCompile(SubjectCodePattern),
	Enrollment:     regexp.MustCompile(EnrollmentPattern),
}

var registerOnce sync.Once

// RegisterRules adds the custom binding tags (deptcode, subjectcode, enrollment)
// to gin's validator engine. Safe to call more than once.
func RegisterRules() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("deptcode", patternRule(CompiledPatterns.DepartmentCode))
		_ = v.RegisterValidation("subjectcode", patternRule(CompiledPatterns.SubjectCode))
		_ = v.RegisterValidation("enrollment", patternRule(CompiledPatterns.Enrollment))
		v.RegisterTagNameFunc(jsonFieldName)
	})
}

// ValidateStruct validates obj with the same rules gin applies to request bodies
func ValidateStruct(obj interface{}) error {
	RegisterRules()
	return binding.Validator.ValidateStruct(obj)
}

// NormalizeCode trims and upper-cases department and subject codes
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// FieldMessage creates a human-readable validation error message
func FieldMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "min":
		return e.Field() + " must be at least " + e.Param()
	case "max":
		return e.Field() + " must be at most " + e.Param()
	case "gt":
		return e.Field() + " must be greater than " + e.Param()
	case "email":
		return e.Field() + " must be a valid email address"
	case "oneof":
		return e.Field() + " must be one of: " + e.Param()
	case "deptcode":
		return e.Field() + " must be 2-10 letters or digits starting with a letter"
	case "subjectcode":
		return e.Field() + " must be 2-16 letters, digits or dashes starting with a letter"
	case "enrollment":
		return e.Field() + " must be 4-32 letters, digits, '/' or '-' starting with a letter or digit"
	default:
		return e.Field() + " validation failed: " + e.Tag()
	}
}

// Summary joins the messages of a validation error, or returns err.Error()
func Summary(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		msgs = append(msgs, FieldMessage(e))
	}
	return strings.Join(msgs, "; ")
}

func patternRule(pattern *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return pattern.MatchString(strings.TrimSpace(fl.Field().String()))
	}
}

// jsonFieldName reports fields by their JSON name in validation errors
func jsonFieldName(field reflect.StructField) string {
	name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return field.Name
	}
	return name
}
