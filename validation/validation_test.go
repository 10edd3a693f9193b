package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		email string
		want  string
	}{
		{"", MsgEmailRequired},
		{"a@b.co", MsgEmailLength},
		{strings.Repeat("a", 250) + "@b.com", MsgEmailLength},
		{"user@example.com", ""},
		{"userexample.com", MsgEmailInvalid},
		{"user name@example.com", MsgEmailInvalid},
		{"user@examplecom", MsgEmailInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateEmail(tt.email))
		})
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		password string
		want     string
	}{
		{"", MsgPasswordRequired},
		{"Abcdef1!", ""},
		{"abcdefgh", MsgPasswordInvalid},
		{"Abcdef1", MsgPasswordInvalid},
		{"ABCDEF1!", MsgPasswordInvalid},
		{"Abcdefg!", MsgPasswordInvalid},
		{"Abcdef12", MsgPasswordInvalid},
		{"Abcdef1^", MsgPasswordInvalid},
		{"Abc def1!", MsgPasswordInvalid},
		{"Abcdefghijklmnopqr1!", ""},
		{"Abcdefghijklmnopqrs1!", MsgPasswordInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.password, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidatePassword(tt.password))
		})
	}
}

func TestValidateForm(t *testing.T) {
	res := ValidateForm(LoginForm{Email: "user@example.com", Password: "Abcdef1!"})
	assert.True(t, res.Valid)
	assert.Empty(t, res.Errors)

	res = ValidateForm(LoginForm{Email: "a@b.co", Password: "abcdefgh"})
	assert.False(t, res.Valid)
	assert.Equal(t, map[string]string{
		"email":    MsgEmailLength,
		"password": MsgPasswordInvalid,
	}, res.Errors)

	res = ValidateForm(LoginForm{})
	assert.Equal(t, MsgEmailRequired, res.Errors["email"])
	assert.Equal(t, MsgPasswordRequired, res.Errors["password"])
}
