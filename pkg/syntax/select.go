package syntax

// PreferredName is the function name automatic selection favors.
const PreferredName = "plan"

// SelectFunction picks the function to analyze when none is named.
//
// Candidates are ranked by, in order: being named "plan", being a
// module-level function rather than a method, taking no parameters,
// having more top-level statements, and appearing earlier in the file.
// A definition redefined later under the same name is never chosen. It
// returns false when there are no candidates.
func SelectFunction(cands []Signature) (Signature, bool) {
	last := make(map[string]int, len(cands))
	for i, c := range cands {
		last[c.Name] = i
	}
	var (
		best  Signature
		found bool
	)
	for i, c := range cands {
		if last[c.Name] != i {
			continue
		}
		if !found || better(c, best) {
			best, found = c, true
		}
	}
	return best, found
}

func better(a, b Signature) bool {
	if pa, pb := a.Name == PreferredName, b.Name == PreferredName; pa != pb {
		return pa
	}
	if a.Method != b.Method {
		return !a.Method
	}
	if za, zb := a.Arity() == 0, b.Arity() == 0; za != zb {
		return za
	}
	if a.Statements != b.Statements {
		return a.Statements > b.Statements
	}
	return a.Line < b.Line
}
