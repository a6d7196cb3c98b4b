package emitter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmitter_PreservesRegistrationOrder(t *testing.T) {
	e := New()
	var order []int
	e.On("x", func(any) { order = append(order, 1) })
	e.On("x", func(any) { order = append(order, 2) })
	e.Emit("x", nil)
	assert.Equal(t, []int{1, 2}, order)
}

func TestEmitter_UnknownEventHasNoSubscribers(t *testing.T) {
	e := New()
	assert.NotPanics(t, func() { e.Emit("nope", nil) })
}

func TestEmitter_PayloadDeliveredVerbatim(t *testing.T) {
	e := New()
	var got any
	e.On("x", func(p any) { got = p })
	e.Emit("x", "hello")
	assert.Equal(t, "hello", got)
}

func TestEmitter_ChannelsAreIndependent(t *testing.T) {
	e := New()
	var aCalled, bCalled bool
	e.On("a", func(any) { aCalled = true })
	e.On("b", func(any) { bCalled = true })
	e.Emit("a", nil)
	assert.True(t, aCalled)
	assert.False(t, bCalled)
}
