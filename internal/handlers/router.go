package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/RBoekdrukker/imc-frontend/internal/events"
)

var errAlreadyRedirected = errors.New("handlers: response already redirected")

// redirectRouter is the HTTP side of menu.Router: navigation is a 303 to the new location,
// announced on the page's event bus first.
type redirectRouter struct {
	w       http.ResponseWriter
	r       *http.Request
	bus     *events.Bus
	current string

	redirected bool
}

func (rr *redirectRouter) CurrentPath() string { return rr.current }

func (rr *redirectRouter) Push(path string) error {
	if rr.redirected {
		return errAlreadyRedirected
	}
	if safeReturn(path) == "" {
		return fmt.Errorf("handlers: refusing redirect to %q", path)
	}
	if rr.bus != nil {
		rr.bus.Publish(events.Event{Kind: events.RouteChangeStart, URL: path})
	}
	http.Redirect(rr.w, rr.r, path, http.StatusSeeOther)
	rr.redirected = true
	return nil
}
