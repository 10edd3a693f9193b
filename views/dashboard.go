package views

import (
	"context"
	"sync/atomic"

	"axiapac.com/timetrack/attendance"
	"axiapac.com/timetrack/model"
	"axiapac.com/timetrack/session"
	v1 "axiapac.com/timetrack/timetrack/v1"
	"github.com/rs/zerolog"
)

const (
	msgPunchedIn      = "Successfully punched in!"
	msgPunchedOut     = "Successfully punched out!"
	msgPunchInFailed  = "Failed to punch in"
	msgPunchOutFailed = "Failed to punch out"
)

// DashboardController owns the punch controls. It never moves the punch
// state itself: after a punch it re-reads the profile and bumps the refresh
// counter so the attendance table reloads.
type DashboardController struct {
	Flash

	auth       AuthAPI
	attendance AttendanceAPI
	session    *session.Context
	logger     zerolog.Logger

	busy    atomic.Bool
	refresh atomic.Int64
}

func NewDashboardController(auth AuthAPI, att AttendanceAPI, sess *session.Context, logger zerolog.Logger) *DashboardController {
	return &DashboardController{auth: auth, attendance: att, session: sess, logger: logger}
}

func (c *DashboardController) Controls() attendance.Controls {
	if c.busy.Load() {
		return attendance.Controls{}
	}
	profile, ok := c.session.Profile()
	if !ok {
		return attendance.Controls{}
	}
	return attendance.ControlsFor(&profile)
}

func (c *DashboardController) Profile() (model.UserProfile, bool) {
	return c.session.Profile()
}

// Refresh is the counter the attendance table watches.
func (c *DashboardController) Refresh() int64 {
	return c.refresh.Load()
}

func (c *DashboardController) PunchIn(ctx context.Context) error {
	return c.punch(ctx, model.NextActionPunchIn)
}

func (c *DashboardController) PunchOut(ctx context.Context) error {
	return c.punch(ctx, model.NextActionPunchOut)
}

func (c *DashboardController) punch(ctx context.Context, action model.NextAction) error {
	if !c.Controls().Allows(action) {
		if c.busy.Load() {
			return ErrBusy
		}
		return ErrActionNotAllowed
	}
	if !c.busy.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer c.busy.Store(false)

	c.Dismiss()

	call, success, failure := c.attendance.PunchIn, msgPunchedIn, msgPunchInFailed
	if action == model.NextActionPunchOut {
		call, success, failure = c.attendance.PunchOut, msgPunchedOut, msgPunchOutFailed
	}

	if err := call(ctx); err != nil {
		c.logger.Warn().Err(err).Str("action", string(action)).Msg("punch rejected")
		c.SetError(v1.Message(err, failure))
		return err
	}

	// the punch landed, so the table is stale whatever happens next
	defer c.refresh.Add(1)

	profile, err := c.auth.Me(ctx)
	if err != nil {
		c.SetError(v1.Message(err, failure))
		return err
	}
	if err := c.session.UpdateProfile(ctx, *profile); err != nil {
		c.logger.Error().Err(err).Msg("failed to persist profile")
		c.SetError(failure)
		return err
	}

	c.SetSuccess(success)
	return nil
}
