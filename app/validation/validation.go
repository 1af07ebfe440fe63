// Package validation checks task input before it reaches the access API.
package validation

import (
	"fmt"
	"strings"

	"taskmaster/app/models"

	"github.com/go-playground/validator/v10"
)

var rules = map[string]validator.Func{
	"notblank": func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	},
	"category": func(fl validator.FieldLevel) bool {
		return models.Category(fl.Field().String()).Valid()
	},
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	register(v, rules)
	return v
}

// register adds custom tags to v and panics on a broken one.
func register(v *validator.Validate, tags map[string]validator.Func) {
	for tag, fn := range tags {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(fmt.Sprintf("validation: register %q: %v", tag, err))
		}
	}
}

// Patch validates the fields present in p.
func Patch(p models.TaskPatch) error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("%w: %s", models.ErrInvalidTask, describe(err))
	}
	return nil
}

// Creation validates p as the input of a new task: the trimmed title must
// not be empty.
func Creation(p models.TaskPatch) error {
	title := ""
	if p.Title != nil {
		title = *p.Title
	}
	if err := validate.Var(title, "notblank"); err != nil {
		return fmt.Errorf("%w: title is required", models.ErrInvalidTask)
	}
	return Patch(p)
}

// Struct validates any request struct carrying validate tags.
func Struct(s any) error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("%w: %s", models.ErrInvalidTask, describe(err))
	}
	return nil
}

func describe(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "notblank", "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", strings.ToLower(fe.Field())))
		case "category":
			msgs = append(msgs, fmt.Sprintf("unknown category %q", fe.Value()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s", strings.ToLower(fe.Field()), fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}
