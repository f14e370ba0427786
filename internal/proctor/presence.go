package proctor

// Verdict is the presence classification of a single frame.
type Verdict int

const (
	VerdictNone Verdict = iota
	VerdictOne
	VerdictMultiple
)

func (v Verdict) String() string {
	switch v {
	case VerdictOne:
		return "one"
	case VerdictMultiple:
		return "multiple"
	default:
		return "none"
	}
}

// Skin-ratio thresholds separating the three verdicts.
const (
	presenceMinRatio = 0.02
	presenceMaxRatio = 0.5
)

// Classify estimates how many faces a frame contains from the density of
// skin-toned pixels. This is a coarse heuristic, not face detection: it
// tolerates lighting variance poorly and its thresholds are empirically
// tuned, so it can misfire across lighting conditions and skin tones.
// Callers that need real detection should swap in a proper model behind
// the same frame → verdict signature.
//
// Classify is a pure function of the buffer: no state, no side effects.
func Classify(f Frame) Verdict {
	if !f.Valid() {
		return VerdictNone
	}

	skin := 0
	px := f.Pixels
	for i := 0; i+2 < len(px); i += 3 {
		if isSkinTone(px[i], px[i+1], px[i+2]) {
			skin++
		}
	}

	ratio := float64(skin) / float64(f.Width*f.Height)
	switch {
	case ratio < presenceMinRatio:
		return VerdictNone
	case ratio < presenceMaxRatio:
		return VerdictOne
	default:
		return VerdictMultiple
	}
}

// isSkinTone is a disjunction of three RGB-ratio predicates chosen to
// tolerate lighting variance.
func isSkinTone(r, g, b byte) bool {
	ri, gi, bi := int(r), int(g), int(b)

	spread := maxInt(ri, gi, bi) - minInt(ri, gi, bi)
	diff := ri - gi
	if diff < 0 {
		diff = -diff
	}

	if ri > 80 && gi > 30 && bi > 15 && spread > 10 && diff > 8 && ri > gi && ri > bi {
		return true
	}
	if ri > 60 && gi > 20 && bi > 10 && diff > 5 && ri > gi {
		return true
	}
	if ri > 100 && gi > 50 && bi > 30 && ri > gi && ri > bi {
		return true
	}
	return false
}

func maxInt(a, b, c int) int {
	m := a
	if b > m {
		m = b
	}
	if c > m {
		m = c
	}
	return m
}

func minInt(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
