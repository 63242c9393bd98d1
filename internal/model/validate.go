package model

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	appErrors "github.com/unclebandit/journey-engine/internal/errors"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// report json names so messages match the request payload
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// Validate checks struct tags and returns an *appErrors.ValidationError
// listing every offending field.
func Validate(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	var fields []string
	for _, fe := range verrs {
		field := fieldPath(fe.Namespace())
		param := fe.Param()

		switch fe.Tag() {
		case "required":
			fields = append(fields, field+" is required")
		case "gte":
			fields = append(fields, field+" must be at least "+param)
		case "oneof":
			fields = append(fields, field+" must be one of ["+param+"]")
		case "email":
			fields = append(fields, field+" must be a valid email")
		default:
			fields = append(fields, field+" is invalid")
		}
	}
	return appErrors.NewValidation(fields...)
}

// fieldPath drops the top level struct name: "Campaign.steps[0].kind" -> "steps[0].kind".
func fieldPath(ns string) string {
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}
