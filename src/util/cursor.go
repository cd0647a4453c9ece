// cursor.go provides a generic forward cursor over a slice of items. The cursor is the shared
// substrate for the preprocessor and the parser (both over tokens); the tokenizer scans its input
// string with its own lexer state instead. The cursor knows nothing about the grammar it's being driven through, only how to walk a slice
// and report where it stopped.

package util

import (
	"fmt"
	"os"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Cursor is a generic forward cursor over a slice of items of type T. Equality between two items
// for PeekEqual/TryConsume/Require is decided by the Equal function the cursor was built with; the
// frontend's TokenEqual, for instance, compares kinds and, for identifiers, literals and symbol
// runs, their text as well.
type Cursor[T any] struct {
	items []T
	pos   int
	Equal func(a, b T) bool
	Line  func(t T) int
	File  func(t T) string
}

// ---------------------
// ----- Constants -----
// ---------------------

// ---------------------
// ----- functions -----
// ---------------------

// NewCursor returns a Cursor positioned at the start of items.
func NewCursor[T any](items []T, equal func(a, b T) bool, line func(t T) int, file func(t T) string) Cursor[T] {
	return Cursor[T]{items: items, pos: 0, Equal: equal, Line: line, File: file}
}

// HasPeek reports whether there is at least one more item to consume.
func (c *Cursor[T]) HasPeek() bool {
	return c.pos < len(c.items)
}

// Peek returns the next item without consuming it. Peek must not be called when HasPeek is false.
func (c *Cursor[T]) Peek() T {
	return c.items[c.pos]
}

// PeekBack returns the last consumed item. It returns the zero value of T if nothing has been
// consumed yet.
func (c *Cursor[T]) PeekBack() T {
	var zero T
	if c.pos == 0 {
		return zero
	}
	return c.items[c.pos-1]
}

// PeekEqual reports whether the next item, if any, is Equal to t.
func (c *Cursor[T]) PeekEqual(t T) bool {
	return c.HasPeek() && c.Equal(c.Peek(), t)
}

// Consume returns the next item and advances the cursor. Consume must not be called when HasPeek
// is false.
func (c *Cursor[T]) Consume() T {
	t := c.items[c.pos]
	c.pos++
	return t
}

// TryConsume consumes the next item and returns true iff it is Equal to t. Otherwise the cursor
// is left unmodified and false is returned.
func (c *Cursor[T]) TryConsume(t T) bool {
	if c.PeekEqual(t) {
		c.Consume()
		return true
	}
	return false
}

// Require consumes and returns the next item if it is Equal to t, otherwise it reports a fatal
// diagnostic naming what was expected.
func (c *Cursor[T]) Require(t T) T {
	if c.PeekEqual(t) {
		return c.Consume()
	}
	c.Errorf("expected %v", t)
	panic("unreachable")
}

// Error reports a fatal diagnostic at the line/file of the last consumed item and terminates the
// process. It never returns.
func (c *Cursor[T]) Error(msg string) {
	line, file := 0, ""
	back := c.PeekBack()
	if c.Line != nil {
		line = c.Line(back)
	}
	if c.File != nil {
		file = c.File(back)
	}
	Fatalf(file, line, "%s", msg)
}

// Errorf formats and reports a fatal diagnostic, see Error.
func (c *Cursor[T]) Errorf(format string, args ...any) {
	c.Error(fmt.Sprintf(format, args...))
}

// Switch temporarily replaces the cursor's backing slice with sub, runs f against the cursor, and
// restores the outer slice and position on return (even if f panics via a fatal diagnostic, which
// exits the process directly, see §5 of the design: there is no unwinding contract to honour).
func (c *Cursor[T]) Switch(sub []T, f func(*Cursor[T])) {
	oldItems, oldPos := c.items, c.pos
	c.items, c.pos = sub, 0
	defer func() {
		c.items, c.pos = oldItems, oldPos
	}()
	f(c)
}

// Fatalf writes a uniformly formatted diagnostic to stderr and terminates the process. It is the
// single choke point every subsystem (tokenizer, preprocessor, parser, generator) routes fatal
// errors through, per the error handling design: all errors are fatal, there is no recovery.
func Fatalf(file string, line int, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if file != "" {
		fmt.Fprintf(os.Stderr, "Error: %s at line %d in file %s\n", msg, line, file)
	} else if line != 0 {
		fmt.Fprintf(os.Stderr, "Error: %s at line %d\n", msg, line)
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", msg)
	}
	os.Exit(1)
}
