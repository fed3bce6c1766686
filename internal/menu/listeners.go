package menu

import "github.com/RBoekdrukker/imc-frontend/internal/events"

// Mount registers the dropdown's pointer-down, key-down and route-change listeners on bus.
// A controller holds at most one registration; release it with Unmount or the returned
// subscription.
func (c *Controller) Mount(bus *events.Bus) (*events.Subscription, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sub != nil {
		return nil, ErrAlreadyMounted
	}
	inner := events.Combine(
		bus.Subscribe(events.RouteChangeStart, c.onRouteChangeStart),
		bus.Subscribe(events.PointerDown, c.onPointerDown),
		bus.Subscribe(events.KeyDown, c.onKeyDown),
	)
	c.sub = inner
	return events.Combine(inner, events.OnRelease(func() {
		c.mu.Lock()
		if c.sub == inner {
			c.sub = nil
		}
		c.mu.Unlock()
	})), nil
}

// Unmount releases the listeners registered by Mount. It is safe to call at any time.
func (c *Controller) Unmount() {
	c.mu.Lock()
	sub := c.sub
	c.sub = nil
	c.mu.Unlock()
	sub.Unsubscribe()
}

func (c *Controller) onRouteChangeStart(events.Event) {
	c.Close()
}

func (c *Controller) onPointerDown(e events.Event) {
	if !e.Within(DropdownID) {
		c.Close()
	}
}

func (c *Controller) onKeyDown(e events.Event) {
	if e.Key == "Escape" {
		c.Close()
	}
}
