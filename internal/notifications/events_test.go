package notifications

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBus(t *testing.T) {
	var got []Event
	bus := NewBus(func(e Event) { got = append(got, e) })
	bus.Subscribe(func(e Event) { got = append(got, e) })

	bus.Publish(EventCapTableUpdated, map[string]float64{"ESOP": 100})

	assert.Len(t, got, 2)
	assert.Equal(t, EventCapTableUpdated, got[0].Type)
	assert.False(t, got[0].Timestamp.IsZero())

	NopPublisher{}.Publish(EventFinanceUpdated, nil)
}
