package availability

import "slices"

func sortOccurrences(occ []Occurrence) {
	slices.SortStableFunc(occ, func(a, b Occurrence) int {
		if c := a.Date.Compare(b.Date); c != 0 {
			return c
		}
		return int(a.Slot.Window.Start) - int(b.Slot.Window.Start)
	})
}
