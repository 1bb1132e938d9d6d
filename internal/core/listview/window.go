package listview

// PageItem is one entry of a pagination control.
type PageItem struct {
	Page     int
	Current  bool
	Ellipsis bool
}

// Window computes the page buttons to render for page out of total pages,
// with siblings pages on each side of the current one and boundary pages
// pinned at each end. Gaps are represented by a single Ellipsis item.
func Window(page, total, siblings, boundary int) []PageItem {
	if total <= 0 {
		return nil
	}
	page = min(max(page, 1), total)

	startPages := span(1, min(boundary, total))
	endPages := span(max(total-boundary+1, boundary+1), total)

	siblingsStart := max(
		min(page-siblings, total-boundary-siblings*2-1),
		boundary+2,
	)

	siblingsEndCap := total - 1
	if len(endPages) > 0 {
		siblingsEndCap = endPages[0] - 2
	}
	siblingsEnd := min(
		max(page+siblings, boundary+siblings*2+2),
		siblingsEndCap,
	)

	var pages []int
	pages = append(pages, startPages...)

	switch {
	case siblingsStart > boundary+2:
		pages = append(pages, 0)
	case boundary+1 < total-boundary:
		pages = append(pages, boundary+1)
	}

	pages = append(pages, span(siblingsStart, siblingsEnd)...)

	switch {
	case siblingsEnd < total-boundary-1:
		pages = append(pages, 0)
	case total-boundary > boundary:
		pages = append(pages, total-boundary)
	}

	pages = append(pages, endPages...)

	items := make([]PageItem, 0, len(pages))
	for _, p := range pages {
		if p == 0 {
			items = append(items, PageItem{Ellipsis: true})
			continue
		}
		items = append(items, PageItem{Page: p, Current: p == page})
	}
	return items
}

// span returns the inclusive range [start, end], empty when end < start.
func span(start, end int) []int {
	if end < start {
		return nil
	}
	out := make([]int, 0, end-start+1)
	for i := start; i <= end; i++ {
		out = append(out, i)
	}
	return out
}
