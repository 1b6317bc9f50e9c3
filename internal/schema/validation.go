package schema

import (
	"context"
	"errors"
	"fmt"
	"math"
	"reflect"
	"regexp"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrValidationFailed is wrapped by every ValidationError
	ErrValidationFailed = errors.New("the given data was invalid")
)

// UniqueEntryValueRule is the rule checking that no other entry uses the value.
// Its parameters are the collection handle, the id to exclude and the site.
const UniqueEntryValueRule = "unique_entry_value"

// ValidationError enumerates rule violations per field.
type ValidationError struct {
	Fields map[string][]string `json:"errors"`
}

// NewValidationError creates a validation error for a single field.
func NewValidationError(field, message string) *ValidationError {
	e := &ValidationError{}
	e.Add(field, message)
	return e
}

// Add records a message for a field.
func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = map[string][]string{}
	}
	e.Fields[field] = append(e.Fields[field], message)
}

// Empty reports whether no violation was recorded.
func (e *ValidationError) Empty() bool {
	return len(e.Fields) == 0
}

func (e *ValidationError) Error() string {
	handles := make([]string, 0, len(e.Fields))
	for h := range e.Fields {
		handles = append(handles, h)
	}
	sort.Strings(handles)
	parts := make([]string, 0, len(handles))
	for _, h := range handles {
		parts = append(parts, h+": "+strings.Join(e.Fields[h], " "))
	}
	return fmt.Sprintf("%s: %s", ErrValidationFailed.Error(), strings.Join(parts, "; "))
}

func (*ValidationError) Unwrap() error {
	return ErrValidationFailed
}

// UniqueValueChecker reports whether a value is already taken. The params
// are the rule parameters as written in the rule string.
type UniqueValueChecker func(ctx context.Context, field string, value any, params []string) (bool, error)

type validateConfig struct {
	unique UniqueValueChecker
}

// ValidateOption configures a validation run.
type ValidateOption func(*validateConfig)

// WithUniqueChecker sets the checker used by unique_entry_value rules.
func WithUniqueChecker(checker UniqueValueChecker) ValidateOption {
	return func(c *validateConfig) {
		c.unique = checker
	}
}

var (
	alphaDashPattern = regexp.MustCompile(`^[\p{L}\p{M}\p{N}_-]+$`)
	validate         = newValidate()
)

func newValidate() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("alpha_dash", func(fl validator.FieldLevel) bool {
		return alphaDashPattern.MatchString(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	if err := v.RegisterValidation("whole_number", isWholeNumber); err != nil {
		panic(err)
	}
	return v
}

func isWholeNumber(fl validator.FieldLevel) bool {
	field := fl.Field()
	switch field.Kind() {
	case reflect.String:
		_, err := strconv.Atoi(strings.TrimSpace(field.String()))
		return err == nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	case reflect.Float32, reflect.Float64:
		return field.Float() == math.Trunc(field.Float())
	default:
		return false
	}
}

// Validate checks the added (unprocessed) values against the blueprint field
// rules, the fieldtype rules and the extra rules keyed by field handle. It
// returns a *ValidationError when any rule fails.
func (f *Fields) Validate(ctx context.Context, extra map[string][]string, opts ...ValidateOption) error {
	cfg := &validateConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	verr := &ValidationError{}
	for _, field := range f.blueprint.AllFields() {
		rules := mergeRules(field.Validate, f.registry.Find(field.Type).Rules(field), extra[field.Handle])
		if len(rules) == 0 {
			continue
		}
		if err := f.validateField(ctx, cfg, field, rules, verr); err != nil {
			return err
		}
	}

	if verr.Empty() {
		return nil
	}
	return verr
}

func (f *Fields) validateField(
	ctx context.Context,
	cfg *validateConfig,
	field FieldDef,
	rules []string,
	verr *ValidationError,
) error {
	value := f.values[field.Handle]
	display := strings.ToLower(field.DisplayName())

	if isEmpty(value) {
		if slices.ContainsFunc(rules, func(r string) bool { return ruleName(r) == "required" }) {
			verr.Add(field.Handle, ruleMessage("required", display, nil, value))
		}
		return nil
	}

	for _, rule := range rules {
		name, params := parseRule(rule)
		switch name {
		case "required", "nullable", "sometimes":
			continue
		case UniqueEntryValueRule:
			if cfg.unique == nil {
				return fmt.Errorf("no checker configured for rule %s", name)
			}
			taken, err := cfg.unique(ctx, field.Handle, value, params)
			if err != nil {
				return fmt.Errorf("failed to check %s uniqueness: %w", field.Handle, err)
			}
			if taken {
				verr.Add(field.Handle, ruleMessage(name, display, params, value))
			}
			continue
		}

		tag, ok := validatorTag(name, params)
		if !ok {
			continue
		}
		subject := value
		if name == "in" || !measurable(value) {
			subject = fmt.Sprint(value)
		}
		if err := validate.Var(subject, tag); err != nil {
			var fieldErrs validator.ValidationErrors
			if !errors.As(err, &fieldErrs) {
				return fmt.Errorf("failed to validate %s: %w", field.Handle, err)
			}
			verr.Add(field.Handle, ruleMessage(name, display, params, value))
		}
	}
	return nil
}

// validatorTag translates a rule into a go-playground/validator tag.
func validatorTag(name string, params []string) (string, bool) {
	switch name {
	case "min", "max":
		if len(params) != 1 {
			return "", false
		}
		return name + "=" + params[0], true
	case "alpha_dash", "email", "url", "numeric":
		return name, true
	case "integer":
		return "whole_number", true
	case "in":
		if len(params) == 0 {
			return "", false
		}
		return "oneof=" + strings.Join(params, " "), true
	}
	return "", false
}

func ruleMessage(name, display string, params []string, value any) string {
	param := ""
	if len(params) > 0 {
		param = params[0]
	}
	switch name {
	case "required":
		return fmt.Sprintf("The %s field is required.", display)
	case "min", "max":
		bound := "at least"
		if name == "max" {
			bound = "no more than"
		}
		switch reflect.ValueOf(value).Kind() {
		case reflect.String:
			return fmt.Sprintf("The %s must be %s %s characters.", display, bound, param)
		case reflect.Slice, reflect.Map:
			return fmt.Sprintf("The %s must have %s %s items.", display, bound, param)
		default:
			return fmt.Sprintf("The %s must be %s %s.", display, bound, param)
		}
	case "alpha_dash":
		return fmt.Sprintf("The %s may only contain letters, numbers, dashes and underscores.", display)
	case "email":
		return fmt.Sprintf("The %s must be a valid email address.", display)
	case "integer":
		return fmt.Sprintf("The %s must be an integer.", display)
	case "numeric":
		return fmt.Sprintf("The %s must be a number.", display)
	case "in":
		return fmt.Sprintf("The selected %s is invalid.", display)
	case UniqueEntryValueRule:
		return fmt.Sprintf("The %s has already been taken.", display)
	default:
		return fmt.Sprintf("The %s format is invalid.", display)
	}
}

// measurable reports whether size rules can be applied to the value as is.
func measurable(v any) bool {
	switch reflect.ValueOf(v).Kind() {
	case reflect.String, reflect.Slice, reflect.Map, reflect.Array,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case []any:
		return len(t) == 0
	case []string:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	}
	return false
}

// splitRules flattens rule lists that may contain pipe separated rules.
func splitRules(rules []string) []string {
	var out []string
	for _, r := range rules {
		for _, part := range strings.Split(r, "|") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func mergeRules(sets ...[]string) []string {
	var out []string
	for _, set := range sets {
		for _, r := range splitRules(set) {
			if !slices.Contains(out, r) {
				out = append(out, r)
			}
		}
	}
	return out
}

func ruleName(rule string) string {
	name, _ := parseRule(rule)
	return name
}

func parseRule(rule string) (string, []string) {
	name, rest, found := strings.Cut(rule, ":")
	if !found || rest == "" {
		return name, nil
	}
	return name, strings.Split(rest, ",")
}
