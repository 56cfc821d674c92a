package animation

import (
	"github.com/Faultbox/mdxview/pkg/formats"
)

// Player advances an animation clock through a model's sequences.
// MDX track frames are milliseconds, so the clock advances by wall time.
type Player struct {
	Sequences []formats.MDXSequence
	Current   int
	Frame     float32
	Speed     float32 // Playback rate multiplier, 1.0 = realtime
	Playing   bool
}

// NewPlayer creates a player positioned at the start of the first
// sequence. With no sequences the player stays at frame 0.
func NewPlayer(sequences []formats.MDXSequence) *Player {
	p := &Player{
		Sequences: sequences,
		Speed:     1.0,
		Playing:   true,
	}
	if len(sequences) > 0 {
		p.Frame = float32(sequences[0].Start)
	}
	return p
}

// Advance moves the clock by deltaMs, wrapping looping sequences and
// stopping at the end of non-looping ones.
func (p *Player) Advance(deltaMs float32) {
	if !p.Playing || len(p.Sequences) == 0 {
		return
	}

	seq := p.Sequences[p.Current]
	start := float32(seq.Start)
	end := float32(seq.End)

	p.Frame += deltaMs * p.Speed
	if p.Frame < end {
		return
	}

	if seq.NonLooping || end <= start {
		p.Frame = end
		p.Playing = false
		return
	}
	// Wrap within [start, end)
	length := end - start
	for p.Frame >= end {
		p.Frame -= length
	}
}

// SetSequence switches to sequence index i and rewinds to its start.
// Out-of-range indices are ignored.
func (p *Player) SetSequence(i int) {
	if i < 0 || i >= len(p.Sequences) {
		return
	}
	p.Current = i
	p.Frame = float32(p.Sequences[i].Start)
	p.Playing = true
}

// NextSequence cycles forward through the sequence list.
func (p *Player) NextSequence() {
	if len(p.Sequences) == 0 {
		return
	}
	p.SetSequence((p.Current + 1) % len(p.Sequences))
}

// PrevSequence cycles backward through the sequence list.
func (p *Player) PrevSequence() {
	if len(p.Sequences) == 0 {
		return
	}
	p.SetSequence((p.Current + len(p.Sequences) - 1) % len(p.Sequences))
}

// SequenceName returns the name of the active sequence, or "".
func (p *Player) SequenceName() string {
	if p.Current < 0 || p.Current >= len(p.Sequences) {
		return ""
	}
	return p.Sequences[p.Current].Name
}
