package joypad

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReadNoSelection(t *testing.T) {
	j := New()
	assert.Equal(t, uint8(0xCF), j.Read())
}

func TestApplyRaisesInterruptOnFallingEdge(t *testing.T) {
	j := New()
	j.WriteSelect(0x10) // select buttons group (bit 4 set = dpad deselected)

	raised := j.Apply(State{A: true})
	assert.True(t, raised)

	raised = j.Apply(State{A: true})
	assert.False(t, raised, "holding the same button should not re-raise")

	raised = j.Apply(State{})
	assert.False(t, raised, "release is a rising edge, not falling")
}

func TestReadSelectsCorrectGroup(t *testing.T) {
	j := New()
	j.Apply(State{Right: true, A: true})

	j.WriteSelect(0x20) // bit 4 = 0 -> dpad selected
	assert.Equal(t, uint8(0xEE), j.Read())

	j.WriteSelect(0x10) // bit 5 = 0 -> buttons selected
	assert.Equal(t, uint8(0xDE), j.Read())
}
