package app

import (
	"sync"

	"axiapac.com/timetrack/session"
	"axiapac.com/timetrack/views"
)

// Router applies the route guard on every navigation and keeps the history.
type Router struct {
	session *session.Context

	mu        sync.Mutex
	current   views.Route
	history   []views.Route
	listeners []func(views.Route)
}

func NewRouter(sess *session.Context) *Router {
	return &Router{session: sess}
}

// Navigate moves to route, or to wherever the guard redirects it. Staying on
// the current route is not recorded.
func (r *Router) Navigate(route views.Route) {
	target := views.Guard(route, r.session)

	r.mu.Lock()
	if target == r.current {
		r.mu.Unlock()
		return
	}
	r.current = target
	r.history = append(r.history, target)
	listeners := append([]func(views.Route){}, r.listeners...)
	r.mu.Unlock()

	for _, fn := range listeners {
		fn(target)
	}
}

func (r *Router) Current() views.Route {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

func (r *Router) History() []views.Route {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]views.Route(nil), r.history...)
}

func (r *Router) OnChange(fn func(views.Route)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, fn)
}
