package validator

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

var messages = map[string]string{
	"required": "%s is required",
	"email":    "%s must be a valid email address",
	"min":      "%s must be at least %s characters",
	"max":      "%s must be at most %s characters",
	"gte":      "%s must be greater than or equal to %s",
	"gt":       "%s must be greater than %s",
	"lte":      "%s must be less than or equal to %s",
	"oneof":    "%s must be one of: %s",
	"url":      "%s must be a valid URL",
}

func message(field string, e validator.FieldError) string {
	msg, ok := messages[e.Tag()]
	if !ok {
		return fmt.Sprintf("%s is invalid", field)
	}
	if strings.Count(msg, "%s") == 2 {
		param := e.Param()
		if e.Tag() == "oneof" {
			param = strings.ReplaceAll(param, " ", ", ")
		}
		return fmt.Sprintf(msg, field, param)
	}
	return fmt.Sprintf(msg, field)
}

// ValidateStruct validates s (a pointer to struct) and returns JSON field
// names mapped to messages. The map is empty when s is valid.
func ValidateStruct(s any) map[string]string {
	out := make(map[string]string)

	err := validate.Struct(s)
	if err == nil {
		return out
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		out["_"] = err.Error()
		return out
	}

	t := reflect.TypeOf(s)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	for _, e := range verrs {
		name := e.StructField()
		if f, ok := t.FieldByName(e.StructField()); ok {
			if tag := strings.Split(f.Tag.Get("json"), ",")[0]; tag != "" && tag != "-" {
				name = tag
			}
		}
		out[name] = message(name, e)
	}
	return out
}

// First returns one message from errs in a stable order, for responses that
// carry a single message.
func First(errs map[string]string) string {
	keys := make([]string, 0, len(errs))
	for k := range errs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) == 0 {
		return ""
	}
	return errs[keys[0]]
}
