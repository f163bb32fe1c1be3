package diff

// ParticleSet is an immutable lookup of one- and two-rune particle tokens.
type ParticleSet struct {
	single map[rune]struct{}
	double map[[2]rune]struct{}
}

// NewParticleSet builds a set from tokens. Tokens that are not one or two
// runes long are ignored.
func NewParticleSet(tokens ...string) ParticleSet {
	set := ParticleSet{
		single: map[rune]struct{}{},
		double: map[[2]rune]struct{}{},
	}
	for _, tok := range tokens {
		runes := []rune(tok)
		switch len(runes) {
		case 1:
			set.single[runes[0]] = struct{}{}
		case 2:
			set.double[[2]rune{runes[0], runes[1]}] = struct{}{}
		}
	}
	return set
}

// DefaultParticles holds common Japanese particles.
var DefaultParticles = NewParticleSet(
	"は", "が", "を", "に", "で", "と", "へ", "も", "の", "や", "か", "ね", "よ",
	"って", "から", "まで", "より", "けど", "ので", "のに", "など", "だけ", "しか", "でも", "とか",
)

// matchAt returns the end index of a particle starting at text[i], trying
// the two-rune form first.
func (p ParticleSet) matchAt(text []rune, i int) (int, bool) {
	if i+1 < len(text) {
		if _, ok := p.double[[2]rune{text[i], text[i+1]}]; ok {
			return i + 1, true
		}
	}
	if _, ok := p.single[text[i]]; ok {
		return i, true
	}
	return 0, false
}

// NextBoundary returns the end index of the first particle at or after
// start, or the last index of text when none is found.
func NextBoundary(text []rune, start int, set ParticleSet) int {
	return NthBoundary(text, start, 1, set)
}

// NthBoundary returns the end index of the n-th particle at or after start.
// When fewer than n particles remain it returns the last index of text, so
// the result is always within [0, len(text)-1].
func NthBoundary(text []rune, start, n int, set ParticleSet) int {
	if len(text) == 0 {
		return 0
	}
	if start < 0 {
		start = 0
	}
	if n < 1 {
		n = 1
	}
	count := 0
	for i := start; i < len(text); i++ {
		end, ok := set.matchAt(text, i)
		if !ok {
			continue
		}
		count++
		if count >= n {
			return end
		}
		i = end
	}
	return len(text) - 1
}
