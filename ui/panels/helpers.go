package panels

import (
	"sort"
	"strings"

	"expo-floorplan/internal/exhibition"
)

// naturalLess compares two strings using natural numeric ordering.
// "A2" < "A10", "B-1" < "B-2" < "B-10", etc.
func naturalLess(a, b string) bool {
	chunksA := splitNatural(a)
	chunksB := splitNatural(b)
	for i := 0; i < len(chunksA) && i < len(chunksB); i++ {
		ca, cb := chunksA[i], chunksB[i]
		if isNumeric(ca) && isNumeric(cb) {
			na := parseNum(ca)
			nb := parseNum(cb)
			if na != nb {
				return na < nb
			}
		} else {
			cmp := strings.Compare(strings.ToUpper(ca), strings.ToUpper(cb))
			if cmp != 0 {
				return cmp < 0
			}
		}
	}
	return len(chunksA) < len(chunksB)
}

func splitNatural(s string) []string {
	var chunks []string
	var current strings.Builder
	wasDigit := false
	for i, r := range s {
		isDigit := r >= '0' && r <= '9'
		if i > 0 && isDigit != wasDigit {
			chunks = append(chunks, current.String())
			current.Reset()
		}
		current.WriteRune(r)
		wasDigit = isDigit
	}
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}

func isNumeric(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

func parseNum(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n = n*10 + int(r-'0')
		}
	}
	return n
}

// filterStalls keeps stalls whose number, name or category contains the
// query, ignoring case, and orders them by stall number.
func filterStalls(stalls []*exhibition.Stall, query string) []*exhibition.Stall {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]*exhibition.Stall, 0, len(stalls))
	for _, st := range stalls {
		if q == "" ||
			strings.Contains(strings.ToLower(st.Number), q) ||
			strings.Contains(strings.ToLower(st.Name), q) ||
			strings.Contains(strings.ToLower(st.Category), q) {
			out = append(out, st)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return naturalLess(out[i].Number, out[j].Number)
	})
	return out
}

// stallLabel is the one-line text shown for a stall in lists.
func stallLabel(st *exhibition.Stall) string {
	label := st.Number + "  " + st.Name
	if st.Purchased {
		label += " (sold)"
	}
	return label
}
