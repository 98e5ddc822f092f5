package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHappyPathTransitions(t *testing.T) {
	assert.True(t, CanTransition(StatusPending, StatusProcessing))
	assert.True(t, CanTransition(StatusProcessing, StatusShipped))
	assert.True(t, CanTransition(StatusShipped, StatusDelivered))
}

func TestCancellableStates(t *testing.T) {
	assert.True(t, CanTransition(StatusPending, StatusCancelled))
	assert.True(t, CanTransition(StatusProcessing, StatusCancelled))
	assert.False(t, CanTransition(StatusShipped, StatusCancelled))
	assert.False(t, CanTransition(StatusDelivered, StatusCancelled))
}

func TestTerminalStates(t *testing.T) {
	for _, to := range []Status{StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled} {
		assert.False(t, CanTransition(StatusDelivered, to), "DELIVERED -> %s", to)
		assert.False(t, CanTransition(StatusCancelled, to), "CANCELLED -> %s", to)
	}
}

func TestNoBackwardTransitions(t *testing.T) {
	assert.False(t, CanTransition(StatusProcessing, StatusPending))
	assert.False(t, CanTransition(StatusShipped, StatusProcessing))
	assert.False(t, CanTransition(StatusPending, StatusShipped)) // no skipping either
}

func TestRestoresStockOnlyEnteringCancelled(t *testing.T) {
	assert.True(t, RestoresStock(StatusPending, StatusCancelled))
	assert.True(t, RestoresStock(StatusProcessing, StatusCancelled))

	// re-cancel must not restore again
	assert.False(t, RestoresStock(StatusCancelled, StatusCancelled))

	assert.False(t, RestoresStock(StatusPending, StatusProcessing))
	assert.False(t, RestoresStock(StatusShipped, StatusDelivered))
}

func TestParseStatus(t *testing.T) {
	st, err := ParseStatus("SHIPPED")
	assert.NoError(t, err)
	assert.Equal(t, StatusShipped, st)

	_, err = ParseStatus("REFUNDED")
	assert.Error(t, err)
	_, err = ParseStatus("pending")
	assert.Error(t, err)
}
