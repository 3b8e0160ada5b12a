package event_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wormlife/wormlife/internal/core/event"
)

type ping struct{ n int }
type pong struct{ s string }

func TestEmitIsDeferredUntilFlush(t *testing.T) {
	bus := event.NewBus()
	var got []int
	event.Subscribe(bus, func(p ping) { got = append(got, p.n) })

	event.Emit(bus, ping{1})
	event.Emit(bus, ping{2})
	assert.Empty(t, got)
	assert.Equal(t, 2, bus.Pending())

	bus.Flush()
	assert.Equal(t, []int{1, 2}, got)
	assert.Equal(t, 0, bus.Pending())
}

func TestDeliveryKeepsEmissionOrderAcrossTypes(t *testing.T) {
	bus := event.NewBus()
	var log []string
	event.Subscribe(bus, func(p ping) { log = append(log, "ping") })
	event.Subscribe(bus, func(p pong) { log = append(log, "pong:"+p.s) })

	event.Emit(bus, pong{"a"})
	event.Emit(bus, ping{})
	event.Emit(bus, pong{"b"})
	bus.Flush()

	assert.Equal(t, []string{"pong:a", "ping", "pong:b"}, log)
}

func TestUnsubscribe(t *testing.T) {
	bus := event.NewBus()
	var a, b int
	unsubA := event.Subscribe(bus, func(ping) { a++ })
	event.Subscribe(bus, func(ping) { b++ })

	event.Emit(bus, ping{})
	bus.Flush()
	unsubA()
	unsubA()
	event.Emit(bus, ping{})
	bus.Flush()

	assert.Equal(t, 1, a)
	assert.Equal(t, 2, b)
}

func TestEventsEmittedByHandlersWaitForNextFlush(t *testing.T) {
	bus := event.NewBus()
	var pongs int
	event.Subscribe(bus, func(ping) { event.Emit(bus, pong{}) })
	event.Subscribe(bus, func(pong) { pongs++ })

	event.Emit(bus, ping{})
	bus.Flush()
	assert.Equal(t, 0, pongs)
	assert.Equal(t, 1, bus.Pending())

	bus.Flush()
	assert.Equal(t, 1, pongs)
}

func TestNilBusDropsEvents(t *testing.T) {
	assert.NotPanics(t, func() { event.Emit[ping](nil, ping{}) })
}
