package standings

import "strconv"

// FormatRank renders a 1-based rank as its English ordinal, with a
// medal appended for the podium places.
func FormatRank(n int) string {
	ord := ordinalize(n)

	switch n {
	case 1:
		return ord + "  🥇"
	case 2:
		return ord + "  🥈"
	case 3:
		return ord + "  🥉"
	}

	return ord
}

func ordinalize(n int) string {
	suffix := "th"
	// 11th, 12th, 13th, 111th, ... stay "th".
	if r := n % 100; r < 11 || r > 13 {
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}

	return strconv.Itoa(n) + suffix
}
