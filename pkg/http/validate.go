package http

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

var validate = validator.New()

// ValidationError is one failed rule on one request field.
type ValidationError struct {
	Code    string                 `json:"code,omitempty"`
	Field   string                 `json:"field,omitempty"`
	Message string                 `json:"message,omitempty"`
	Params  map[string]interface{} `json:"params,omitempty"`
}

// ReadAndValidateRequest binds the request into req, applies struct defaults,
// and validates. It returns nil on success or a response-ready error payload.
func ReadAndValidateRequest(c echo.Context, req interface{}) interface{} {
	if err := c.Bind(req); err != nil {
		return describeValidation(err)
	}
	if err := defaults.Set(req); err != nil {
		return describeValidation(err)
	}
	if err := validate.StructCtx(c.Request().Context(), req); err != nil {
		return describeValidation(err)
	}
	return nil
}

func describeValidation(err error) interface{} {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		out := make([]ValidationError, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			msg, params := describeRule(fe)
			out = append(out, ValidationError{
				Code:    "ERR_" + strings.ToUpper(fe.Tag()),
				Field:   fe.Field(),
				Message: msg,
				Params:  params,
			})
		}
		return out
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		return []ValidationError{{Code: "ERR_UNKNOWN", Message: fmt.Sprintf("%v", he.Message)}}
	}
	return []ValidationError{{Code: "ERR_UNKNOWN", Message: err.Error()}}
}

// describeRule renders a human message and machine params for one rule.
func describeRule(fe validator.FieldError) (string, map[string]interface{}) {
	field, param := fe.Field(), fe.Param()
	isString := fe.Type().Kind() == reflect.String

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field), nil
	case "min", "gte":
		if isString {
			return fmt.Sprintf("%s must be at least %s characters", field, param),
				map[string]interface{}{"min": param}
		}
		return fmt.Sprintf("%s must be at least %s", field, param),
			map[string]interface{}{"min": param}
	case "max", "lte":
		if isString {
			return fmt.Sprintf("%s must be at most %s characters", field, param),
				map[string]interface{}{"max": param}
		}
		return fmt.Sprintf("%s must be at most %s", field, param),
			map[string]interface{}{"max": param}
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, param),
			map[string]interface{}{"value": param}
	case "lt":
		return fmt.Sprintf("%s must be less than %s", field, param),
			map[string]interface{}{"value": param}
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(param, " ", ", ")),
			map[string]interface{}{"options": strings.Split(param, " ")}
	default:
		return fmt.Sprintf("%s failed validation: %s", field, fe.Tag()), nil
	}
}
