// Package input provides the random-access cursor over a validated UTF-8
// text that feeds both virtual machines: at any byte offset it yields the
// decoded character starting there (and its encoded length), or the
// character immediately preceding that offset. Both VMs and every
// EmptyLook assertion go through this abstraction instead of touching the
// byte slice directly.
package input

import (
	"unicode/utf8"

	"github.com/coregx/regexcore/char"
	"github.com/coregx/regexcore/prefix"
)

// At is a positioned snapshot produced by the cursor: the character
// starting at byte Pos, and the number of bytes it occupies.
//
// Invariants (spec.md §3, "InputAt"):
//   - for any At produced by Cursor.At, Char.IsAbsent() is true iff Pos
//     equals the text length
//   - Len equals Char.UTF8Len()
type At struct {
	Pos  int
	Char char.Char
	Len  int
}

// IsBeginning reports whether at denotes the very start of the text.
func (a At) IsBeginning() bool {
	return a.Pos == 0
}

// IsEnd reports whether at denotes the position just past the end of the
// text (no character here).
func (a At) IsEnd() bool {
	return a.Char.IsAbsent()
}

// NextPos returns the byte offset immediately following this character.
func (a At) NextPos() int {
	return a.Pos + a.Len
}

// Cursor is a read-only, random-access view over a text known to be valid
// UTF-8. It never mutates or copies the text.
type Cursor struct {
	text []byte
}

// New builds a Cursor over text. text must be valid UTF-8; the cursor does
// not re-validate it (spec.md §7: validity is a caller contract, not
// something the core detects).
func New(text []byte) Cursor {
	return Cursor{text: text}
}

// Len returns the length of the underlying text in bytes.
func (c Cursor) Len() int {
	return len(c.text)
}

// Bytes returns the underlying text. Callers must not mutate it.
func (c Cursor) Bytes() []byte {
	return c.text
}

// At returns the character starting at byte offset i. i must lie on a
// UTF-8 character boundary and satisfy 0 <= i <= c.Len(). At i == c.Len()
// it returns the absent sentinel with Len 0.
func (c Cursor) At(i int) At {
	if i >= len(c.text) {
		return At{Pos: i, Char: char.Absent, Len: 0}
	}
	r, size := utf8.DecodeRune(c.text[i:])
	return At{Pos: i, Char: char.From(r), Len: size}
}

// PreviousAt returns the character ending at byte offset i, i.e. the
// character immediately preceding it in the text. At i == 0 it returns the
// absent sentinel.
//
// Correctness requirement (spec.md §4.1): for any non-absent at produced
// by At, PreviousAt(at.NextPos()).Pos == at.Pos.
func (c Cursor) PreviousAt(i int) At {
	if i <= 0 {
		return At{Pos: 0, Char: char.Absent, Len: 0}
	}
	r, size := utf8.DecodeLastRune(c.text[:i])
	return At{Pos: i - size, Char: char.From(r), Len: size}
}

// PrefixAt scans the text suffix starting at at.Pos for the first
// occurrence of any of prefixes, returning the At positioned at the match
// start. If prefixes is empty, it returns at unchanged (an empty prefix
// list imposes no requirement). If no prefix occurs in the remaining text,
// it returns (At{}, false).
func (c Cursor) PrefixAt(prefixes *prefix.Set, at At) (At, bool) {
	if prefixes.Len() == 0 {
		return at, true
	}
	haystack := c.text[at.Pos:]
	adv, ok := prefixes.Find(haystack)
	if !ok {
		return At{}, false
	}
	return c.At(at.Pos + adv), true
}
