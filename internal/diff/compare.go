// Package diff compares a typed transcription with its reference.
//
// Comparison is fixed-position: index i of the input is checked against
// index i of the reference with no realignment, so a dropped or extra
// character shows up as drift from that point on.
package diff

// Op classifies one aligned position.
type Op int

const (
	Match Op = iota
	Substitution
	Insertion
	Deletion
)

func (o Op) String() string {
	switch o {
	case Match:
		return "match"
	case Substitution:
		return "substitution"
	case Insertion:
		return "insertion"
	case Deletion:
		return "deletion"
	default:
		return "unknown"
	}
}

// Cell is one aligned position. User or Ref is zero when that side is
// shorter than the index.
type Cell struct {
	Op   Op
	User rune
	Ref  rune
}

// Report is the result of Compare.
type Report struct {
	Cells    []Cell
	Accuracy float64
	Correct  bool
	// Errors holds every non-match index in ascending order.
	Errors []int
}

// Compare classifies every position up to the longer of user and reference.
// Accuracy is matches over the reference length as a percentage, 0 for an
// empty reference. Correct requires exactly 100 and no errors.
func Compare(user, reference string) Report {
	u := []rune(user)
	r := []rune(reference)
	size := max(len(u), len(r))

	rep := Report{Cells: make([]Cell, size)}
	correct := 0
	for i := 0; i < size; i++ {
		var cell Cell
		inUser, inRef := i < len(u), i < len(r)
		if inUser {
			cell.User = u[i]
		}
		if inRef {
			cell.Ref = r[i]
		}
		switch {
		case inUser && inRef && u[i] == r[i]:
			cell.Op = Match
			correct++
		case inUser && inRef:
			cell.Op = Substitution
		case inUser:
			cell.Op = Insertion
		default:
			cell.Op = Deletion
		}
		if cell.Op != Match {
			rep.Errors = append(rep.Errors, i)
		}
		rep.Cells[i] = cell
	}
	if len(r) > 0 {
		rep.Accuracy = float64(correct) / float64(len(r)) * 100
	}
	rep.Correct = rep.Accuracy == 100 && len(rep.Errors) == 0
	return rep
}

// ErrorStart returns the first error index, or -1 when there are none.
func (r Report) ErrorStart() int {
	if len(r.Errors) == 0 {
		return -1
	}
	return r.Errors[0]
}
