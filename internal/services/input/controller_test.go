package input

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mcoot/autosnake/internal/model"
)

func TestRequestTurn_AcceptsPerpendicular(t *testing.T) {
	c := New(model.DirectionRight)

	assert.True(t, c.RequestTurn(model.DirectionUp))
	assert.Equal(t, model.DirectionUp, c.Next())
	assert.Equal(t, model.DirectionRight, c.Current())
}

func TestRequestTurn_IgnoresReversal(t *testing.T) {
	for _, d := range model.Directions() {
		c := New(d)
		c.RequestTurn(perpendicular(d))
		before := c.Next()

		assert.False(t, c.RequestTurn(d.Opposite()), "reversal of %s accepted", d)
		assert.Equal(t, before, c.Next())
	}
}

func TestRequestTurn_ChecksAgainstCurrentNotNext(t *testing.T) {
	// Right then Up buffered; Left still reverses the last actual move
	c := New(model.DirectionRight)
	c.RequestTurn(model.DirectionUp)

	assert.False(t, c.RequestTurn(model.DirectionLeft))
	assert.Equal(t, model.DirectionUp, c.Next())
}

func TestRequestTurn_RejectsInvalid(t *testing.T) {
	c := New(model.DirectionDown)
	assert.False(t, c.RequestTurn(model.Direction("sideways")))
	assert.Equal(t, model.DirectionDown, c.Next())
}

func TestCommitAndOverride(t *testing.T) {
	c := New(model.DirectionDown)
	c.Override(model.DirectionUp)
	assert.Equal(t, model.DirectionUp, c.Commit())
	assert.Equal(t, model.DirectionUp, c.Current())

	c.Reset(model.DirectionRight)
	assert.Equal(t, model.DirectionRight, c.Current())
	assert.Equal(t, model.DirectionRight, c.Next())
}

func perpendicular(d model.Direction) model.Direction {
	switch d {
	case model.DirectionUp, model.DirectionDown:
		return model.DirectionLeft
	default:
		return model.DirectionUp
	}
}
