package report

const DefaultPageSize = 25

const maxPageButtons = 5

// PageSizes are the selectable page sizes.
func PageSizes() []int {
	return []int{25, 50, 100, 500}
}

type Page[T any] struct {
	Items      []T `json:"items"`
	Index      int `json:"page"`
	Size       int `json:"pageSize"`
	TotalPages int `json:"totalPages"`
	TotalItems int `json:"totalItems"`
}

// Paginate slices items into the page at index. The index is clamped to
// [0, totalPages-1] and there is always at least one (possibly empty) page.
func Paginate[T any](items []T, index, size int) Page[T] {
	if size <= 0 {
		size = DefaultPageSize
	}
	totalPages := max(1, (len(items)+size-1)/size)
	index = min(max(index, 0), totalPages-1)

	start := min(index*size, len(items))
	end := min(start+size, len(items))
	page := make([]T, end-start)
	copy(page, items[start:end])

	return Page[T]{
		Items:      page,
		Index:      index,
		Size:       size,
		TotalPages: totalPages,
		TotalItems: len(items),
	}
}

// PageWindow returns up to five consecutive page indexes around current.
func PageWindow(current, totalPages int) []int {
	if totalPages < 1 {
		totalPages = 1
	}
	current = min(max(current, 0), totalPages-1)
	start := max(0, min(current-2, totalPages-maxPageButtons))
	n := min(maxPageButtons, totalPages)
	out := make([]int, n)
	for i := range out {
		out[i] = start + i
	}
	return out
}
