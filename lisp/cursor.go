package lisp

// Cursor is a lookahead reader over an ordered sequence. It is shared by the
// tokenizer (over runes) and the parser (over tokens).
type Cursor[T any] struct {
	items []T
	index int
}

// NewCursor constructs a Cursor positioned before the first item.
func NewCursor[T any](items []T) *Cursor[T] {
	return &Cursor[T]{items: items}
}

// Peek returns the item k positions ahead without consuming anything.
// Peek(1) is the next item. Past the end it returns the zero value and false.
func (c *Cursor[T]) Peek(k int) (T, bool) {
	var zero T
	i := c.index + k - 1
	if k < 1 || i >= len(c.items) {
		return zero, false
	}
	return c.items[i], true
}

// Next consumes k items and returns the last one consumed. If fewer than k
// items remain nothing is consumed and false is returned.
func (c *Cursor[T]) Next(k int) (T, bool) {
	var zero T
	if k < 1 || c.index+k > len(c.items) {
		return zero, false
	}
	c.index += k
	return c.items[c.index-1], true
}

// Skip advances the cursor by k items, stopping at the end.
func (c *Cursor[T]) Skip(k int) *Cursor[T] {
	c.index += k
	if c.index > len(c.items) {
		c.index = len(c.items)
	}
	return c
}

// Done reports whether every item has been consumed.
func (c *Cursor[T]) Done() bool {
	return c.index >= len(c.items)
}

// Index returns the number of items consumed so far.
func (c *Cursor[T]) Index() int {
	return c.index
}

// Rest returns the items not consumed yet.
func (c *Cursor[T]) Rest() []T {
	return c.items[c.index:]
}
