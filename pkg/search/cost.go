package search

// Cost is a lexicographically ordered score; earlier components dominate
// later ones and lower values are better.
type Cost []int

// Compare returns -1, 0 or +1. A shorter cost that is a prefix of a longer
// one compares as smaller.
func (c Cost) Compare(o Cost) int {
	for i := 0; i < len(c) && i < len(o); i++ {
		switch {
		case c[i] < o[i]:
			return -1
		case c[i] > o[i]:
			return 1
		}
	}
	switch {
	case len(c) < len(o):
		return -1
	case len(c) > len(o):
		return 1
	}
	return 0
}

// Add returns the component-wise sum of c and o.
func (c Cost) Add(o Cost) Cost {
	n := max(len(c), len(o))
	out := make(Cost, n)
	for i := range out {
		if i < len(c) {
			out[i] += c[i]
		}
		if i < len(o) {
			out[i] += o[i]
		}
	}
	return out
}
