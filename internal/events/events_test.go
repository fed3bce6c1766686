package events

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPublishReachesOnlyMatchingKind(t *testing.T) {
	t.Parallel()

	bus := NewBus()
	var keys, pointers int
	bus.Subscribe(KeyDown, func(Event) { keys++ })
	bus.Subscribe(PointerDown, func(Event) { pointers++ })

	bus.Publish(Event{Kind: KeyDown, Key: "Escape"})
	bus.Publish(Event{Kind: KeyDown, Key: "a"})

	require.Equal(t, 2, keys)
	require.Zero(t, pointers)
}

func TestUnsubscribeIsIdempotentAndReleasesAll(t *testing.T) {
	t.Parallel()

	bus := NewBus()
	calls := 0
	sub := Combine(
		bus.Subscribe(KeyDown, func(Event) { calls++ }),
		bus.Subscribe(PointerDown, func(Event) { calls++ }),
		nil,
	)
	require.Equal(t, 2, bus.Len())

	sub.Unsubscribe()
	sub.Unsubscribe()
	require.Zero(t, bus.Len())

	bus.Publish(Event{Kind: KeyDown})
	require.Zero(t, calls)

	var nilSub *Subscription
	require.NotPanics(t, nilSub.Unsubscribe)
}

func TestHandlerMayUnsubscribeDuringPublish(t *testing.T) {
	t.Parallel()

	bus := NewBus()
	var sub *Subscription
	sub = bus.Subscribe(RouteChangeStart, func(Event) { sub.Unsubscribe() })

	require.NotPanics(t, func() { bus.Publish(Event{Kind: RouteChangeStart, URL: "/de"}) })
	require.Zero(t, bus.Len())
}

func TestEventWithin(t *testing.T) {
	t.Parallel()

	e := Event{Kind: PointerDown, Path: []string{"lang-option-de", "lang-menu", "site-nav"}}
	require.True(t, e.Within("lang-menu"))
	require.False(t, e.Within("footer"))
	require.Equal(t, "pointerdown", PointerDown.String())
}
