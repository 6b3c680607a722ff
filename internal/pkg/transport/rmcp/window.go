package rmcp

// ReplayWindow implements the 16-entry sliding sequence number window RMCP+
// requires a session to maintain on each side (spec 13.25.3): sequence
// numbers strictly ahead of the window advance it and are accepted,
// sequence numbers already inside the window are only accepted once, and
// anything more than 16 behind the highest seen number is rejected
// outright. Sequence number 0 is reserved for unauthenticated/unsequenced
// payloads and is always accepted without touching the window.
type ReplayWindow struct {
	highest uint32
	seen    uint16 // bitmask of the 16 most recent sequence numbers below highest
	started bool
}

const replayWindowSize = 16

// Accept reports whether seq is a valid next sequence number for this
// session, updating the window's state as a side effect of accepting it.
func (w *ReplayWindow) Accept(seq uint32) bool {
	if seq == 0 {
		return true
	}
	if !w.started {
		w.started = true
		w.highest = seq
		w.seen = 0
		return true
	}
	switch {
	case seq == w.highest:
		return false
	case seq > w.highest:
		advance := seq - w.highest
		if advance > replayWindowSize {
			w.seen = 0
		} else {
			w.seen = (w.seen << advance) | (1 << (advance - 1))
		}
		w.highest = seq
		return true
	default:
		behind := w.highest - seq
		if behind > replayWindowSize {
			return false
		}
		bit := uint16(1) << (behind - 1)
		if w.seen&bit != 0 {
			return false
		}
		w.seen |= bit
		return true
	}
}
