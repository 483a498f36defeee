package menu

// displayCount is the number of item rows that fit in rows terminal lines.
// At least one row is always drawn so a tiny terminal still shows the focus.
func (m *Menu[T]) displayCount(rows int) int {
	return max(min(len(m.items), rows), 1)
}

// scrollIndex returns the first visible item for the current focus. The
// view moves only as far as needed to keep one row of context around the
// focus.
func (m *Menu[T]) scrollIndex(count int) int {
	n := len(m.items)
	if n <= count {
		return 0
	}

	first := m.scroll
	last := m.scroll + count - 1
	scroll := m.scroll

	switch {
	case count <= 2:
		// No room for a context row: the view moves only once focus leaves it.
		if m.focus < first {
			scroll = m.focus
		} else if m.focus > last {
			scroll = m.focus - (count - 1)
		}
	case m.focus <= first:
		scroll = max(0, m.focus-1)
	case m.focus >= last:
		scroll = min(n-1, m.focus+1) - (count - 1)
	}

	// A resize can leave the old offset past the end.
	return min(max(scroll, 0), n-count)
}
