package breakpoint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForWidth(t *testing.T) {
	tests := []struct {
		width int
		want  string
	}{
		{0, Default},
		{489, Default},
		{490, "S"},
		{739, "S"},
		{740, "M"},
		{980, "L"},
		{1219, "L"},
		{1220, "XL"},
		{4000, "XL"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ForWidth(Layouts, tt.width), "width %d", tt.width)
	}
}

func TestService_EmitsOnlyWhileRegistered(t *testing.T) {
	s := NewService()
	var got []string
	unsubscribe := s.Subscribe(func(layout string) { got = append(got, layout) })
	defer unsubscribe()

	s.SetViewportWidth(800)
	assert.Empty(t, got, "no emission without a registration")
	assert.Equal(t, Default, s.Current())

	h, err := s.Register()
	require.NoError(t, err)
	assert.False(t, h.IsZero())

	s.SetViewportWidth(800)
	s.SetViewportWidth(900)
	s.SetViewportWidth(1300)
	assert.Equal(t, []string{"M", "XL"}, got, "same layout is not re-emitted")
	assert.Equal(t, "XL", s.Current())

	s.Publish("XL")
	s.Publish("custom")
	assert.Equal(t, []string{"M", "XL", "XL", "custom"}, got, "Publish is verbatim")
}

func TestService_UnregisterIsIdempotent(t *testing.T) {
	s := NewService()
	h, err := s.Register()
	require.NoError(t, err)
	assert.Equal(t, 1, s.Registrations())

	assert.True(t, s.Unregister(h))
	assert.False(t, s.Unregister(h))
	assert.False(t, s.Unregister(Handle{}))
	assert.Equal(t, 0, s.Registrations())
}

func TestService_UnsubscribeStopsDelivery(t *testing.T) {
	s := NewService()
	_, err := s.Register()
	require.NoError(t, err)

	calls := 0
	unsubscribe := s.Subscribe(func(string) { calls++ })
	assert.Equal(t, 1, s.Subscribers())
	s.Publish("S")
	unsubscribe()
	unsubscribe()
	s.Publish("M")

	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, s.Subscribers())
}

func TestService_ListenersRunInSubscriptionOrder(t *testing.T) {
	s := NewService()
	_, err := s.Register()
	require.NoError(t, err)

	var order []int
	for i := range 3 {
		s.Subscribe(func(string) { order = append(order, i) })
	}
	s.Publish("L")
	assert.Equal(t, []int{0, 1, 2}, order)
}

func TestService_WithLayouts(t *testing.T) {
	s := NewService(WithLayouts([]Layout{{"wide", 1000}, {"narrow", 300}}))
	_, err := s.Register()
	require.NoError(t, err)

	s.SetViewportWidth(500)
	assert.Equal(t, "narrow", s.Current())
	s.SetViewportWidth(1200)
	assert.Equal(t, "wide", s.Current())
}

func TestService_Close(t *testing.T) {
	s := NewService()
	_, err := s.Register()
	require.NoError(t, err)
	s.Subscribe(func(string) { t.Error("listener called after Close") })

	s.Close()
	s.Close()
	s.Publish("M")

	_, err = s.Register()
	assert.ErrorIs(t, err, ErrClosed)
	assert.Equal(t, 0, s.Registrations())
	assert.Equal(t, 0, s.Subscribers())
}
