// Package grammar provides a table driven automaton that turns a stream of
// BER TLVs into application objects.
//
// A Grammar maps (state, tag) pairs to transitions. A transition either runs
// an action on the scanned TLV and moves to the next state, or enters a
// sub-grammar: the caller's grammar and resume state are pushed on a stack
// and the same TLV is dispatched again from the sub-grammar's initial state.
// When a sub-grammar sits in an exit state and receives a tag it has no
// transition for, it is popped and the tag is re-dispatched to the caller.
//
// The close of every constructed TLV is delivered as a synthetic
// ber.TagEndOfContents event, so grammars describe the end of a SEQUENCE the
// same way they describe its elements.
//
// Grammars are immutable once built and may be shared by any number of
// engines running on different goroutines.
package grammar

import (
	"fmt"

	"github.com/KilimcininKorOglu/ldapwire/internal/ber"
)

// State is a position inside one grammar.
type State int

// Action consumes the TLV that triggered a transition. Primitive values in
// tlv are only valid for the duration of the call.
type Action[C any] func(c C, tlv *ber.TLV) error

// Transition is the outcome of a (state, tag) lookup.
type Transition[C any] struct {
	Next   State
	Action Action[C]
	Enter  *Grammar[C]
}

type key struct {
	state State
	tag   ber.Tag
}

// Grammar is an immutable transition table.
type Grammar[C any] struct {
	name        string
	initial     State
	transitions map[key]Transition[C]
	exits       map[State]bool
	choices     map[State]error
	built       bool
}

// Name returns the grammar name used in error messages.
func (g *Grammar[C]) Name() string {
	return g.name
}

// Initial returns the state a grammar starts in when entered.
func (g *Grammar[C]) Initial() State {
	return g.initial
}

// Lookup returns the transition for tag in state.
func (g *Grammar[C]) Lookup(state State, tag ber.Tag) (Transition[C], bool) {
	t, ok := g.transitions[key{state, tag}]
	return t, ok
}

// IsExit reports whether the grammar may be left in state.
func (g *Grammar[C]) IsExit(state State) bool {
	return g.exits[state]
}

// choiceError returns the error registered for unknown tags in a CHOICE state.
func (g *Grammar[C]) choiceError(state State) error {
	return g.choices[state]
}

// Builder assembles a Grammar. Builders are meant to run once, at package
// initialisation; misuse panics.
type Builder[C any] struct {
	g *Grammar[C]
}

// NewBuilder starts a grammar with the given name and initial state.
func NewBuilder[C any](name string, initial State) *Builder[C] {
	return &Builder[C]{g: &Grammar[C]{
		name:        name,
		initial:     initial,
		transitions: make(map[key]Transition[C]),
		exits:       make(map[State]bool),
		choices:     make(map[State]error),
	}}
}

// Self returns the grammar being built, so it can enter itself recursively.
func (b *Builder[C]) Self() *Grammar[C] {
	return b.g
}

func (b *Builder[C]) add(from State, tag ber.Tag, t Transition[C]) {
	if b.g.built {
		panic(fmt.Sprintf("grammar %s: modified after Build", b.g.name))
	}
	k := key{from, tag}
	if _, dup := b.g.transitions[k]; dup {
		panic(fmt.Sprintf("grammar %s: duplicate transition for state %d tag %v", b.g.name, from, tag))
	}
	b.g.transitions[k] = t
}

// On registers an action transition.
func (b *Builder[C]) On(from State, tag ber.Tag, next State, action Action[C]) *Builder[C] {
	b.add(from, tag, Transition[C]{Next: next, Action: action})
	return b
}

// Enter registers a sub-grammar transition. Once sub exits, the caller
// resumes in next.
func (b *Builder[C]) Enter(from State, tag ber.Tag, sub *Grammar[C], next State) *Builder[C] {
	if sub == nil {
		panic(fmt.Sprintf("grammar %s: nil sub-grammar for state %d tag %v", b.g.name, from, tag))
	}
	b.add(from, tag, Transition[C]{Next: next, Enter: sub})
	return b
}

// Exit marks states in which the grammar is complete.
func (b *Builder[C]) Exit(states ...State) *Builder[C] {
	for _, s := range states {
		b.g.exits[s] = true
	}
	return b
}

// Choice registers the error reported when state receives a tag that is
// not one of its alternatives.
func (b *Builder[C]) Choice(state State, err error) *Builder[C] {
	b.g.choices[state] = err
	return b
}

// Build freezes and returns the grammar.
func (b *Builder[C]) Build() *Grammar[C] {
	b.g.built = true
	return b.g
}
