package events

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcher_DispatchOrderAndWildcard(t *testing.T) {
	d := NewDispatcher()
	var got []string

	require.NoError(t, d.Register("new_order", HandlerFunc(func(_ context.Context, e Event) {
		got = append(got, "first:"+e.GetName())
	})))
	require.NoError(t, d.Register("new_order", HandlerFunc(func(_ context.Context, e Event) {
		got = append(got, "second:"+e.GetName())
	})))
	require.NoError(t, d.Register(Wildcard, HandlerFunc(func(_ context.Context, e Event) {
		got = append(got, "any:"+e.GetName())
	})))

	require.NoError(t, d.Dispatch(context.Background(), NewEvent("new_order", nil)))
	require.NoError(t, d.Dispatch(context.Background(), NewEvent("active_orders", nil)))

	assert.Equal(t, []string{"first:new_order", "second:new_order", "any:new_order", "any:active_orders"}, got)
}

func TestDispatcher_RegisterAndRemove(t *testing.T) {
	d := NewDispatcher()
	calls := 0
	h := HandlerFunc(func(context.Context, Event) { calls++ })

	require.NoError(t, d.Register("connect", h))
	assert.ErrorIs(t, d.Register("connect", h), ErrHandlerAlreadyRegistered)
	require.NoError(t, d.Dispatch(context.Background(), NewEvent("connect", nil)))
	assert.Equal(t, 1, calls)

	require.NoError(t, d.Remove("connect", h))
	require.NoError(t, d.Remove("disconnect", h))
	require.NoError(t, d.Dispatch(context.Background(), NewEvent("connect", nil)))
	assert.Equal(t, 1, calls)

	require.NoError(t, d.Register("connect", h))
	require.NoError(t, d.Dispatch(context.Background(), NewEvent("connect", nil)))
	assert.Equal(t, 2, calls)
}
