package workflows

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStateMachine(t *testing.T) {
	sm := NewStateMachine(map[string][]string{
		"planned":     {"in_progress"},
		"in_progress": {"done", "planned"},
		"done":        {},
	})

	assert.True(t, sm.CanTransition("planned", "in_progress"))
	assert.False(t, sm.CanTransition("planned", "done"))
	assert.False(t, sm.CanTransition("missing", "done"))

	next, err := sm.Transition("in_progress", "done")
	assert.NoError(t, err)
	assert.Equal(t, "done", next)

	next, err = sm.Transition("done", "planned")
	assert.Error(t, err)
	assert.Equal(t, "done", next)

	_, err = sm.Transition("planned", "archived")
	assert.ErrorContains(t, err, "unknown status")

	assert.ElementsMatch(t, []string{"done", "planned"}, sm.GetAllowedTransitions("in_progress"))
	assert.Empty(t, sm.GetAllowedTransitions("missing"))
}
