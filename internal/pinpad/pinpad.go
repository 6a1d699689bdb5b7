package pinpad

import (
	"errors"
)

// Slots is the fixed length of a transaction PIN.
const Slots = 4

// ErrBadLength reports a completed code whose length is not exactly
// Slots.
var ErrBadLength = errors.New("completed PIN is not exactly 4 digits")

// Pad is the 4-slot PIN entry state machine: digits auto-advance the
// focus, backspace on an empty slot retreats and clears, and filling
// the last slot emits the completed code.
type Pad struct {
	slots    [Slots]rune
	focus    int
	disabled bool

	onComplete func(code string)
	onError    func(err error)
}

// New constructs a Pad. onComplete receives the concatenated 4-digit
// code; onError receives ErrBadLength if the completed code fails the
// length check. Either callback may be nil.
func New(onComplete func(code string), onError func(err error)) *Pad {
	return &Pad{onComplete: onComplete, onError: onError}
}

// Focus returns the slot index that currently holds input focus.
func (p *Pad) Focus() int {
	return p.focus
}

// Value returns the digits entered so far, left to right, skipping
// empty slots.
func (p *Pad) Value() string {
	out := make([]rune, 0, Slots)
	for _, r := range p.slots {
		if r != 0 {
			out = append(out, r)
		}
	}
	return string(out)
}

// SetDisabled suppresses all digit and backspace handling.
func (p *Pad) SetDisabled(disabled bool) {
	p.disabled = disabled
}

// Disabled reports whether input handling is suppressed.
func (p *Pad) Disabled() bool {
	return p.disabled
}

// Reset clears every slot and returns focus to the first slot.
func (p *Pad) Reset() {
	p.slots = [Slots]rune{}
	p.focus = 0
}

// OnDigit handles a digit typed into the given slot. Only the ASCII
// digits 0-9 are accepted; anything else, including non-ASCII digit
// runes, is ignored. Filling a non-final slot advances focus; filling
// the final slot with all four slots occupied emits the completed code.
func (p *Pad) OnDigit(slot int, ch rune) {
	if p.disabled || slot < 0 || slot >= Slots || ch < '0' || ch > '9' {
		return
	}

	p.slots[slot] = ch

	if slot < Slots-1 {
		p.focus = slot + 1
		return
	}

	for _, r := range p.slots {
		if r == 0 {
			return
		}
	}

	code := string(p.slots[:])
	if len([]rune(code)) != Slots {
		if p.onError != nil {
			p.onError(ErrBadLength)
		}
		return
	}
	if p.onComplete != nil {
		p.onComplete(code)
	}
}

// OnBackspace handles backspace in the given slot. An empty slot
// retreats focus one slot left and clears it; a filled slot clears in
// place without moving focus.
func (p *Pad) OnBackspace(slot int) {
	if p.disabled || slot < 0 || slot >= Slots {
		return
	}

	if p.slots[slot] == 0 {
		if slot > 0 {
			p.focus = slot - 1
			p.slots[slot-1] = 0
		}
		return
	}

	p.slots[slot] = 0
}
