package input

import "github.com/mcoot/autosnake/internal/model"

// Controller buffers the heading for the next move. It is not safe for
// concurrent use; the owning engine serialises access.
type Controller struct {
	current model.Direction
	next    model.Direction
}

// New creates a Controller heading in d
func New(d model.Direction) *Controller {
	return &Controller{current: d, next: d}
}

// RequestTurn buffers d for the next move. A reversal of the current heading
// is dropped and false is returned.
func (c *Controller) RequestTurn(d model.Direction) bool {
	if !d.Valid() || d == c.current.Opposite() {
		return false
	}
	c.next = d
	return true
}

// Override sets the next heading without the reversal check
func (c *Controller) Override(d model.Direction) {
	c.next = d
}

// Commit makes the buffered heading current and returns it
func (c *Controller) Commit() model.Direction {
	c.current = c.next
	return c.current
}

// Current returns the heading of the last move
func (c *Controller) Current() model.Direction {
	return c.current
}

// Next returns the buffered heading
func (c *Controller) Next() model.Direction {
	return c.next
}

// Reset sets both headings to d
func (c *Controller) Reset(d model.Direction) {
	c.current = d
	c.next = d
}
