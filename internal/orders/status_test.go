package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusConfirmed, StatusShipped, true},
		{StatusShipped, StatusDelivered, true},
		{StatusPending, StatusCancelled, true},
		{StatusShipped, StatusCancelled, true},
		{StatusPending, StatusShipped, false},
		{StatusDelivered, StatusCancelled, false},
		{StatusCancelled, StatusPending, false},
		{StatusPending, StatusPending, false},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, CanTransition(c.from, c.to), "%s -> %s", c.from, c.to)
	}
}

func TestStatus_Terminal(t *testing.T) {
	assert.True(t, StatusDelivered.Terminal())
	assert.True(t, StatusCancelled.Terminal())
	assert.False(t, StatusShipped.Terminal())
	assert.False(t, Status("lost").Terminal())
}

func TestPolicy(t *testing.T) {
	assert.Equal(t, PolicyStrict, ParsePolicy("strict"))
	assert.Equal(t, PolicyPermissive, ParsePolicy(""))
	assert.Equal(t, PolicyPermissive, ParsePolicy("permissive"))

	assert.True(t, PolicyPermissive.Allows(StatusDelivered, StatusPending))
	assert.False(t, PolicyPermissive.Allows(StatusPending, Status("lost")))
	assert.False(t, PolicyStrict.Allows(StatusDelivered, StatusPending))
}
