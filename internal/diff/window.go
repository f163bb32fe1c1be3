package diff

// Window is an inclusive rune range over a reference text.
type Window struct {
	Start int
	End   int
}

// Slice returns reference[Start:End+1] in runes, clamped to its length.
func (w Window) Slice(reference string) string {
	r := []rune(reference)
	if len(r) == 0 || w.Start >= len(r) {
		return ""
	}
	start := max(w.Start, 0)
	end := min(w.End+1, len(r))
	if end <= start {
		return ""
	}
	return string(r[start:end])
}

// Windows are the three replay ranges anchored at the first error.
type Windows struct {
	// ErrorSpan runs from the first error to the last one. Separate error
	// clusters collapse into a single span.
	ErrorSpan Window
	// ErrorToParticle extends to the end of the next particle.
	ErrorToParticle Window
	// ShortPlay extends to the end of the third particle.
	ShortPlay Window
}

const shortPlayParticles = 3

// ReplayWindows derives the replay ranges of rep over reference using
// DefaultParticles. It returns false when there is nothing to replay.
func ReplayWindows(rep Report, reference string) (Windows, bool) {
	return ReplayWindowsWith(rep, reference, DefaultParticles)
}

// ReplayWindowsWith is ReplayWindows with an explicit particle set.
func ReplayWindowsWith(rep Report, reference string, set ParticleSet) (Windows, bool) {
	ref := []rune(reference)
	if len(rep.Errors) == 0 || len(ref) == 0 {
		return Windows{}, false
	}
	last := len(ref) - 1
	start := min(rep.Errors[0], last)
	end := min(rep.Errors[len(rep.Errors)-1], last)
	return Windows{
		ErrorSpan:       Window{Start: start, End: end},
		ErrorToParticle: Window{Start: start, End: NextBoundary(ref, start, set)},
		ShortPlay:       Window{Start: start, End: NthBoundary(ref, start, shortPlayParticles, set)},
	}, true
}
