package pubsub

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublishDeliversInRegistrationOrder(t *testing.T) {
	bus := NewBus(nil)

	var order []string
	bus.Subscribe(func() { order = append(order, "badge") })
	bus.Subscribe(func() { order = append(order, "cart-page") })
	bus.Subscribe(func() { order = append(order, "product-card") })

	bus.Publish(context.Background())

	assert.Equal(t, []string{"badge", "cart-page", "product-card"}, order)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	bus := NewBus(nil)

	calls := 0
	unsubscribe := bus.Subscribe(func() { calls++ })

	bus.Publish(context.Background())
	unsubscribe()
	bus.Publish(context.Background())

	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, bus.Len())

	// second unsubscribe is a no-op
	unsubscribe()
}

func TestPanickingSubscriberDoesNotBlockOthers(t *testing.T) {
	bus := NewBus(nil)

	var after bool
	bus.Subscribe(func() { panic("render failed") })
	bus.Subscribe(func() { after = true })

	bus.Publish(context.Background())

	assert.True(t, after, "subscriber after the panicking one must still run")
}

func TestSubscribeDuringPublishDoesNotAffectInFlightDelivery(t *testing.T) {
	bus := NewBus(nil)

	lateCalls := 0
	bus.Subscribe(func() {
		bus.Subscribe(func() { lateCalls++ })
	})

	bus.Publish(context.Background())
	assert.Equal(t, 0, lateCalls)

	bus.Publish(context.Background())
	assert.Equal(t, 1, lateCalls)
}

func TestNilSubscriberIgnored(t *testing.T) {
	bus := NewBus(nil)

	unsubscribe := bus.Subscribe(nil)
	unsubscribe()

	assert.Equal(t, 0, bus.Len())
	bus.Publish(context.Background())
}
