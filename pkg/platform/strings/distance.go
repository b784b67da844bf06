// Package strings provides string manipulation utilities.
package strings

// Levenshtein returns the minimum number of single-character insertions,
// deletions, and substitutions needed to transform a into b.
//
// The result is symmetric: Levenshtein(a, b) == Levenshtein(b, a). An empty
// input yields the length of the other string. Inputs are compared rune-wise
// so multi-byte characters count as single edits.
//
// Two-row dynamic programming keeps memory at O(min side) rather than the
// full m·n matrix.
func Levenshtein(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)

	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	// Iterate over the longer string, keep rows sized by the shorter one.
	if len(ra) < len(rb) {
		ra, rb = rb, ra
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)

	for j := 0; j <= len(rb); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j-1]+cost, curr[j-1]+1, prev[j]+1)
		}
		prev, curr = curr, prev
	}

	return prev[len(rb)]
}
