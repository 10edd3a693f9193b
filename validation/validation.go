package validation

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	TagEmail    = "loginemail"
	TagPassword = "password"

	passwordSymbols = "@$!%*?#&"
)

const (
	MsgEmailRequired    = "Email is required"
	MsgEmailLength      = "Email must be between 10 and 255 characters"
	MsgEmailInvalid     = "Please enter a valid email address"
	MsgPasswordRequired = "Password is required"
	MsgPasswordInvalid  = "Password must be 8–20 characters and include at least one uppercase letter, one lowercase letter, one number, and one special character"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// LoginForm is the login form as typed by the user.
type LoginForm struct {
	Email    string `json:"email" validate:"required,min=10,max=255,loginemail"`
	Password string `json:"password" validate:"required,password"`
}

// Result holds the first failing message per field, keyed by json name.
type Result struct {
	Valid  bool
	Errors map[string]string
}

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
	if err := RegisterRules(v); err != nil {
		panic(err)
	}
	return v
}

// RegisterRules adds the loginemail and password tags to v, so a server
// binding the same form applies the same rules.
func RegisterRules(v *validator.Validate) error {
	if err := v.RegisterValidation(TagEmail, func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	}); err != nil {
		return err
	}
	return v.RegisterValidation(TagPassword, func(fl validator.FieldLevel) bool {
		return passwordOK(fl.Field().String())
	})
}

func ValidateEmail(email string) string {
	return fieldMessage(validate.Var(email, "required,min=10,max=255,"+TagEmail), "email")
}

func ValidatePassword(password string) string {
	return fieldMessage(validate.Var(password, "required,"+TagPassword), "password")
}

// ValidateForm checks both fields; an invalid form must not be submitted.
func ValidateForm(form LoginForm) Result {
	errs := map[string]string{}
	if err := validate.Struct(form); err != nil {
		if ve, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range ve {
				if _, seen := errs[fe.Field()]; !seen {
					errs[fe.Field()] = formatFieldError(fe.Field(), fe.Tag())
				}
			}
		}
	}
	return Result{Valid: len(errs) == 0, Errors: errs}
}

func fieldMessage(err error, field string) string {
	if err == nil {
		return ""
	}
	if ve, ok := err.(validator.ValidationErrors); ok && len(ve) > 0 {
		return formatFieldError(field, ve[0].Tag())
	}
	return err.Error()
}

func formatFieldError(field, tag string) string {
	switch field {
	case "email":
		switch tag {
		case "required":
			return MsgEmailRequired
		case "min", "max":
			return MsgEmailLength
		}
		return MsgEmailInvalid
	case "password":
		if tag == "required" {
			return MsgPasswordRequired
		}
		return MsgPasswordInvalid
	}
	return field + " is invalid"
}

func passwordOK(s string) bool {
	n := len([]rune(s))
	if n < 8 || n > 20 {
		return false
	}
	var lower, upper, digit, symbol bool
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(passwordSymbols, r):
			symbol = true
		default:
			return false
		}
	}
	return lower && upper && digit && symbol
}
