package views

import (
	"context"

	"axiapac.com/timetrack/session"
	v1 "axiapac.com/timetrack/timetrack/v1"
	"github.com/rs/zerolog"
)

type HeaderController struct {
	Flash

	auth    AuthAPI
	session *session.Context
	nav     Navigator
	logger  zerolog.Logger
}

func NewHeaderController(auth AuthAPI, sess *session.Context, nav Navigator, logger zerolog.Logger) *HeaderController {
	return &HeaderController{auth: auth, session: sess, nav: nav, logger: logger}
}

// Title is the user's display name, falling back to the email.
func (c *HeaderController) Title() string {
	profile, ok := c.session.Profile()
	if !ok {
		return ""
	}
	if profile.Name != "" {
		return profile.Name
	}
	return profile.Email
}

// Logout ends the session locally whatever the backend answers and always
// lands on the login route. The backend error is returned for display.
func (c *HeaderController) Logout(ctx context.Context) error {
	err := c.auth.Logout(ctx)
	if err != nil {
		c.logger.Warn().Err(err).Msg("logout call failed")
		c.SetError(v1.Message(err, "Logout failed"))
	}
	if c.session.Active() {
		if endErr := c.session.End(ctx, "logout"); endErr != nil && err == nil {
			err = endErr
		}
	}
	c.nav.Navigate(RouteLogin)
	return err
}
