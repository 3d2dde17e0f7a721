package grammar

import (
	"errors"
	"fmt"

	"github.com/KilimcininKorOglu/ldapwire/internal/ber"
)

// DefaultMaxDepth bounds the grammar stack and the TLV nesting when
// Engine.MaxDepth is zero.
const DefaultMaxDepth = 64

var (
	// ErrUnexpectedTag is returned when the active grammar has no transition
	// for the scanned tag.
	ErrUnexpectedTag = errors.New("grammar: unexpected tag")

	// ErrTooDeep is returned when nesting exceeds the engine's MaxDepth.
	ErrTooDeep = errors.New("grammar: nesting too deep")
)

// UnexpectedTagError describes a tag that no transition accepts. A Tag of
// ber.TagEndOfContents means a constructed element closed while required
// content was still missing.
type UnexpectedTagError struct {
	Grammar string
	State   State
	Tag     ber.Tag
	Offset  int64
}

// Error implements the error interface.
func (e *UnexpectedTagError) Error() string {
	if e.Tag == ber.TagEndOfContents {
		return fmt.Sprintf("grammar: %s: element ended early in state %d", e.Grammar, e.State)
	}
	return fmt.Sprintf("grammar: %s: unexpected tag %v in state %d", e.Grammar, e.Tag, e.State)
}

// Is reports whether target is ErrUnexpectedTag.
func (e *UnexpectedTagError) Is(target error) bool {
	return target == ErrUnexpectedTag
}

type frame[C any] struct {
	g     *Grammar[C]
	state State
}

// Engine runs a root grammar over a TLV stream that may arrive in any number
// of chunks. All decoding state lives in the engine, so Run can be called
// again with the next chunk after it reports that more data is needed.
//
// An Engine is not safe for concurrent use.
type Engine[C any] struct {
	// MaxDepth bounds both the grammar stack and the TLV nesting.
	MaxDepth int

	root    *Grammar[C]
	cur     frame[C]
	stack   []frame[C]
	open    []int64
	offset  int64
	start   int64
	started bool
	scanner ber.Scanner
	eoc     ber.TLV
}

// Init sets the root grammar and resets the engine.
func (e *Engine[C]) Init(root *Grammar[C]) {
	e.root = root
	e.Reset()
}

// Reset prepares the engine for the next top-level element. Allocated
// stacks are kept.
func (e *Engine[C]) Reset() {
	e.cur = frame[C]{g: e.root, state: e.root.initial}
	e.stack = e.stack[:0]
	e.open = e.open[:0]
	e.offset = 0
	e.start = 0
	e.started = false
	e.scanner.Reset()
}

// InProgress reports whether part of an element has been consumed.
func (e *Engine[C]) InProgress() bool {
	return e.started || e.scanner.Partial()
}

// Offset returns the offset of the TLV being processed, counted from the
// start of the top-level element.
func (e *Engine[C]) Offset() int64 {
	return e.start
}

// Consumed returns the number of bytes of the current element consumed so far.
func (e *Engine[C]) Consumed() int64 {
	return e.offset
}

func (e *Engine[C]) maxDepth() int {
	if e.MaxDepth > 0 {
		return e.MaxDepth
	}
	return DefaultMaxDepth
}

// Run consumes TLVs from cur until the top-level element is complete, the
// cursor is exhausted, or an error occurs. It returns true once the root
// grammar has reached an exit state with no sub-grammar or constructed TLV
// left open; the bytes following the element stay unread in cur.
//
// Running out of input is not an error: Run returns false and nil, and the
// next call resumes with the partially scanned TLV.
func (e *Engine[C]) Run(c C, cur *ber.Cursor) (bool, error) {
	for {
		// A header begun in the last byte of its parent is still pending;
		// scan must see it so the overrun is rejected.
		if n := len(e.open); n > 0 && e.offset == e.open[n-1] && !e.scanner.Partial() {
			e.open = e.open[:n-1]
			e.start = e.offset
			e.eoc = ber.TLV{Tag: ber.TagEndOfContents}
			if err := e.dispatch(c, &e.eoc); err != nil {
				return false, err
			}
			if len(e.open) == 0 {
				return e.finish()
			}
			continue
		}

		if !e.scanner.Partial() {
			e.start = e.offset
		}
		pos := cur.Pos()
		tlv, err := e.scan(cur)
		e.offset += int64(cur.Pos() - pos)
		if errors.Is(err, ber.ErrNeedMoreData) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		e.started = true

		if err := e.dispatch(c, tlv); err != nil {
			return false, err
		}
		if tlv.Constructed() {
			if len(e.open) >= e.maxDepth() {
				return false, fmt.Errorf("%w: more than %d nested elements", ErrTooDeep, e.maxDepth())
			}
			e.open = append(e.open, e.offset+int64(tlv.Length))
			continue
		}
		if len(e.open) == 0 {
			return e.finish()
		}
	}
}

// scan reads the next TLV, rejecting it as soon as its header shows that it
// would overrun the enclosing constructed element.
func (e *Engine[C]) scan(cur *ber.Cursor) (*ber.TLV, error) {
	if _, err := e.scanner.ReadTag(cur); err != nil {
		return nil, err
	}
	length, err := e.scanner.ReadLength(cur)
	if err != nil {
		return nil, err
	}
	if n := len(e.open); n > 0 {
		end := e.start + int64(e.scanner.HeaderLen()+length)
		if end > e.open[n-1] {
			return nil, fmt.Errorf("%w: element of length %d overruns its parent by %d bytes",
				ber.ErrInvalidLength, length, end-e.open[n-1])
		}
	}
	return e.scanner.Next(cur)
}

// finish checks the completion condition after the top-level TLV ended.
func (e *Engine[C]) finish() (bool, error) {
	if len(e.stack) == 0 && e.cur.g == e.root && e.root.IsExit(e.cur.state) {
		return true, nil
	}
	return false, e.unexpected(ber.TagEndOfContents)
}

func (e *Engine[C]) dispatch(c C, tlv *ber.TLV) error {
	for {
		g := e.cur.g
		if t, ok := g.Lookup(e.cur.state, tlv.Tag); ok {
			if t.Enter != nil {
				if len(e.stack) >= e.maxDepth() {
					return fmt.Errorf("%w: grammar stack exceeds %d", ErrTooDeep, e.maxDepth())
				}
				e.stack = append(e.stack, frame[C]{g: g, state: t.Next})
				e.cur = frame[C]{g: t.Enter, state: t.Enter.initial}
				continue
			}
			if t.Action != nil {
				if err := t.Action(c, tlv); err != nil {
					return err
				}
			}
			e.cur.state = t.Next
			return nil
		}
		if n := len(e.stack); n > 0 && g.IsExit(e.cur.state) {
			e.cur = e.stack[n-1]
			e.stack = e.stack[:n-1]
			continue
		}
		if err := g.choiceError(e.cur.state); err != nil {
			return err
		}
		return e.unexpected(tlv.Tag)
	}
}

func (e *Engine[C]) unexpected(tag ber.Tag) error {
	return &UnexpectedTagError{
		Grammar: e.cur.g.name,
		State:   e.cur.state,
		Tag:     tag,
		Offset:  e.start,
	}
}
