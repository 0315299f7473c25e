package session

import "go.viam.com/depthtruth/utils"

// Cursor walks frame indices [0, total). It never moves past the last frame.
type Cursor struct {
	current int
	total   int
}

// NewCursor returns a cursor at frame 0.
func NewCursor(total int) *Cursor {
	return &Cursor{total: total}
}

// Current returns the current frame index.
func (c *Cursor) Current() int {
	return c.current
}

// Total returns the number of frames.
func (c *Cursor) Total() int {
	return c.total
}

// HasNext reports whether Advance would move.
func (c *Cursor) HasNext() bool {
	return c.current+1 < c.total
}

// Advance moves to the next frame and reports whether it moved. It is a no-op on the last frame.
func (c *Cursor) Advance() bool {
	if !c.HasNext() {
		return false
	}
	c.current++
	return true
}

// Rewind moves back to frame 0.
func (c *Cursor) Rewind() {
	c.current = 0
}

// Seek moves to frame index.
func (c *Cursor) Seek(index int) error {
	if err := c.Check(index); err != nil {
		return err
	}
	c.current = index
	return nil
}

// Check returns a configuration error if index is not one of the enumerated frames.
func (c *Cursor) Check(index int) error {
	if index < 0 || index >= c.total {
		return utils.NewFrameOutOfRangeError(index, c.total)
	}
	return nil
}
