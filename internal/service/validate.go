package service

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/aselo_helpline/backend/internal/models"
	"github.com/aselo_helpline/backend/internal/vocab"
)

var (
	phoneSeparators = regexp.MustCompile(`[\s\-().+]`)
	twoDigitAge     = regexp.MustCompile(`^(0\d|1\d|2[0-5])$`)
)

// NewValidator returns a validator that knows the case-record vocabularies.
// Field names in errors use the json tag.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	rules := map[string]validator.Func{
		"phone":            isPhone,
		"age":              isAge,
		"gender":           member(vocab.Genders),
		"parish":           member(vocab.Parishes),
		"region":           member(vocab.Regions),
		"living_situation": member(vocab.LivingSituations),
		"vulnerable_group": member(vocab.VulnerableGroups),
		"flag":             member(vocab.YesNo),
		"category":         isCategory,
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(fmt.Sprintf("register %s: %v", tag, err))
		}
	}
	return v
}

// IsValidPhone accepts 10 to 15 digits once spaces, dashes, dots,
// parentheses and plus signs are removed.
func IsValidPhone(s string) bool {
	cleaned := phoneSeparators.ReplaceAllString(s, "")
	if len(cleaned) < 10 || len(cleaned) > 15 {
		return false
	}
	for _, r := range cleaned {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func isPhone(fl validator.FieldLevel) bool {
	return IsValidPhone(fl.Field().String())
}

func isAge(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	switch s {
	case "Unborn", ">25", vocab.Unknown:
		return true
	}
	return twoDigitAge.MatchString(s)
}

func isCategory(fl validator.FieldLevel) bool {
	_, ok := vocab.IssueLabels(fl.Field().String())
	return ok
}

func member(set vocab.Set) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return set.Contains(fl.Field().String())
	}
}

// Validate runs v over s and converts failures to *ValidationError.
func Validate(v *validator.Validate, s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &ValidationError{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{
			Field:   trimNamespace(fe.Namespace()),
			Rule:    fe.Tag(),
			Message: describe(fe),
		})
	}
	return out
}

func trimNamespace(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "phone":
		return "must contain 10 to 15 digits"
	case "age":
		return `must be a two-digit age 00-25, "Unborn", ">25" or "Unknown"`
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "category":
		return "is not a known category"
	case "gender", "parish", "region", "living_situation", "vulnerable_group", "flag":
		return "is not an allowed value"
	default:
		return "failed " + fe.Tag() + " validation"
	}
}

// fillCategories adds any missing category key with an empty list.
func fillCategories(rec *models.CaseRecord) {
	full := vocab.EmptyCategories()
	for k, v := range rec.Category {
		if v == nil {
			v = []string{}
		}
		full[k] = v
	}
	rec.Category = full
}
