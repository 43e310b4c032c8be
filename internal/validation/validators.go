package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"unicode"

	"github.com/benvon/omnifocus-bridge/internal/models"
	"github.com/go-playground/validator/v10"
	"github.com/teambition/rrule-go"
)

var (
	// Validate is a shared validator instance
	Validate *validator.Validate

	storeIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._:-]{0,127}$`)
)

func init() {
	Validate = validator.New()

	// Report fields by their json names so messages match the request payloads
	Validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	if err := Validate.RegisterValidation("store_id", validateStoreID); err != nil {
		panic(fmt.Sprintf("failed to register store_id validator: %v", err))
	}
	if err := Validate.RegisterValidation("repeat_method", validateRepeatMethod); err != nil {
		panic(fmt.Sprintf("failed to register repeat_method validator: %v", err))
	}
	if err := Validate.RegisterValidation("notblank_text", validateNotBlankText); err != nil {
		panic(fmt.Sprintf("failed to register notblank_text validator: %v", err))
	}
}

// validateStoreID checks the shape of an identifier handed out by the store
func validateStoreID(fl validator.FieldLevel) bool {
	return storeIDPattern.MatchString(fl.Field().String())
}

// validateRepeatMethod accepts an empty value (defaults apply) or a known
// anchor in any case
func validateRepeatMethod(fl validator.FieldLevel) bool {
	_, err := NormalizeRepeatMethod(fl.Field().String())
	return err == nil
}

func validateNotBlankText(fl validator.FieldLevel) bool {
	return SanitizeText(fl.Field().String()) != ""
}

// SanitizeText sanitizes text input by trimming whitespace and removing control characters
func SanitizeText(text string) string {
	// Trim whitespace
	text = strings.TrimSpace(text)

	// Remove control characters except newline and tab
	var sanitized strings.Builder
	for _, r := range text {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		sanitized.WriteRune(r)
	}

	return sanitized.String()
}

// ValidateStoreID validates an identifier string
func ValidateStoreID(value string) error {
	if !storeIDPattern.MatchString(value) {
		return fmt.Errorf("malformed id: %q", value)
	}
	return nil
}

// NormalizeRepeatMethod folds case and surrounding space. An empty value
// means due.
func NormalizeRepeatMethod(value string) (models.RepeatMethod, error) {
	m := models.RepeatMethod(strings.ToLower(strings.TrimSpace(value)))
	if m == "" {
		return models.RepeatMethodDue, nil
	}
	if !m.Valid() {
		return "", fmt.Errorf("invalid repeat_method: %s (must be 'due', 'defer', or 'fixed')", value)
	}
	return m, nil
}

// NormalizeRRule trims an optional RRULE: prefix and checks the rule parses
func NormalizeRRule(value string) (string, error) {
	rule := strings.TrimSpace(value)
	if len(rule) >= 6 && strings.EqualFold(rule[:6], "RRULE:") {
		rule = rule[6:]
	}
	if rule == "" {
		return "", errors.New("rrule is empty")
	}
	if _, err := rrule.StrToROption(rule); err != nil {
		return "", fmt.Errorf("invalid rrule %q: %w", value, err)
	}
	return rule, nil
}

// FormatError renders validator errors as a single caller-facing message.
// Other errors are returned as their text.
func FormatError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return strings.Join(msgs, "; ")
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required", "notblank_text":
		return field + " is required"
	case "store_id":
		return fmt.Sprintf("%s is malformed: %q", field, fmt.Sprint(fe.Value()))
	case "repeat_method":
		return fmt.Sprintf("%s must be one of due, defer, fixed", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "dive":
		return field + " is invalid"
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}
