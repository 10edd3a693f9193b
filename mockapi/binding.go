package mockapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/go-playground/validator/v10"
)

type fieldError struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

// bindingErrors turns a gin binding error into the list the backend sends
// with a 422.
func bindingErrors(err error) []fieldError {
	if errors.Is(err, io.EOF) {
		return []fieldError{{Loc: []string{"body"}, Msg: "Request body is empty", Type: "missing"}}
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return []fieldError{{Loc: []string{"body"}, Msg: fmt.Sprintf("Invalid JSON at byte offset %d", syntaxErr.Offset), Type: "json_invalid"}}
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return []fieldError{{Loc: []string{"body", typeErr.Field}, Msg: fmt.Sprintf("Field '%s' should be of type %s", typeErr.Field, typeErr.Type.String()), Type: "type_error"}}
	}

	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		out := make([]fieldError, 0, len(ve))
		for _, fe := range ve {
			out = append(out, fieldError{Loc: []string{"body", fe.Field()}, Msg: formatFieldError(fe), Type: fe.Tag()})
		}
		return out
	}

	return []fieldError{{Loc: []string{"body"}, Msg: err.Error(), Type: "value_error"}}
}

func formatFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("Field '%s' is required", fe.Field())
	case "email":
		return fmt.Sprintf("Field '%s' must be a valid email", fe.Field())
	case "password":
		return "Password must contain an uppercase letter, a lowercase letter, a digit and a special character"
	case "min":
		return fmt.Sprintf("Field '%s' must be at least %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("Field '%s' must be at most %s", fe.Field(), fe.Param())
	}
	return fmt.Sprintf("Field '%s' failed validation for '%s'", fe.Field(), fe.Tag())
}
