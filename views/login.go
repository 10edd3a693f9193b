package views

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"axiapac.com/timetrack/session"
	v1 "axiapac.com/timetrack/timetrack/v1"
	"axiapac.com/timetrack/validation"
	"github.com/rs/zerolog"
)

const loginFailed = "Login failed. Please try again."

type LoginController struct {
	Flash

	auth    AuthAPI
	session *session.Context
	nav     Navigator
	logger  zerolog.Logger
	busy    atomic.Bool
}

func NewLoginController(auth AuthAPI, sess *session.Context, nav Navigator, logger zerolog.Logger) *LoginController {
	return &LoginController{auth: auth, session: sess, nav: nav, logger: logger}
}

// Mount sends an already signed-in user straight to the dashboard and
// reports whether it did.
func (c *LoginController) Mount() bool {
	if c.session.Active() {
		c.nav.Navigate(RouteDashboard)
		return true
	}
	return false
}

// Submit validates the form locally, logs in, starts the session and
// navigates to the dashboard. An invalid form never reaches the network.
func (c *LoginController) Submit(ctx context.Context, form validation.LoginForm) (validation.Result, error) {
	form.Email = strings.TrimSpace(form.Email)

	result := validation.ValidateForm(form)
	if !result.Valid {
		return result, ErrInvalidForm
	}

	if !c.busy.CompareAndSwap(false, true) {
		return result, ErrBusy
	}
	defer c.busy.Store(false)

	c.Dismiss()
	login, err := c.auth.Login(ctx, v1.Credentials{Email: form.Email, Password: form.Password})
	if err != nil {
		c.SetError(v1.Message(err, loginFailed))
		return result, err
	}

	if err := c.session.Begin(ctx, login.Token, login.User); err != nil {
		c.logger.Error().Err(err).Msg("failed to persist session")
		c.SetError(loginFailed)
		return result, fmt.Errorf("start session: %w", err)
	}

	c.logger.Info().Int64("user_id", login.User.ID).Str("role", string(login.User.Role)).Msg("logged in")
	c.nav.Navigate(RouteDashboard)
	return result, nil
}

func (c *LoginController) Busy() bool {
	return c.busy.Load()
}
