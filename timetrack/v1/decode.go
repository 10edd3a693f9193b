package v1

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"axiapac.com/timetrack/timetrack/v1/common"
	"github.com/go-playground/validator/v10"
)

const unexpectedMessage = "Unexpected response from server"

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decode unwraps the envelope, rejects success=false, and validates the
// payload shape before handing it to the caller.
func decode[T any](method, path string, resp *Response) (T, error) {
	var zero T
	if resp == nil || len(bytes.TrimSpace(resp.Data)) == 0 {
		return zero, &Error{Kind: KindDecode, Method: method, Path: path, Message: unexpectedMessage, Err: errors.New("empty response body")}
	}

	var env common.Envelope[T]
	if err := json.Unmarshal(resp.Data, &env); err != nil {
		return zero, &Error{Kind: KindDecode, Method: method, Path: path, Message: unexpectedMessage, Err: err}
	}
	if env.Failed() {
		return zero, rejected(method, path, env.StatusCode, env.Message)
	}
	if err := checkShape(env.Data); err != nil {
		return zero, &Error{Kind: KindDecode, Method: method, Path: path, Message: unexpectedMessage, Err: err}
	}
	return env.Data, nil
}

// expectSuccess is decode for calls whose payload is ignored. An empty body
// counts as success.
func expectSuccess(method, path string, resp *Response) error {
	if resp == nil || len(bytes.TrimSpace(resp.Data)) == 0 {
		return nil
	}
	var env common.Envelope[json.RawMessage]
	if err := json.Unmarshal(resp.Data, &env); err != nil {
		return &Error{Kind: KindDecode, Method: method, Path: path, Message: unexpectedMessage, Err: err}
	}
	if env.Failed() {
		return rejected(method, path, env.StatusCode, env.Message)
	}
	return nil
}

func rejected(method, path string, status int, message string) error {
	if message == "" {
		message = DefaultMessage
	}
	return &Error{Kind: KindRequest, Method: method, Path: path, StatusCode: status, Message: message}
}

func checkShape(v any) error {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return errors.New("missing payload")
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Struct:
		return validate.Struct(rv.Interface())
	case reflect.Slice:
		elem := rv.Type().Elem()
		for elem.Kind() == reflect.Pointer {
			elem = elem.Elem()
		}
		if elem.Kind() != reflect.Struct {
			return nil
		}
		for i := 0; i < rv.Len(); i++ {
			if err := checkShape(rv.Index(i).Interface()); err != nil {
				return fmt.Errorf("item %d: %w", i, err)
			}
		}
	}
	return nil
}
