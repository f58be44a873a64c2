package admin

import (
	"strings"

	"CatalogAdmin/internal/catalog"
)

// PageSize is the number of rows the list shows per page.
const PageSize = 5

// ListView is the search term and page the product list is rendered with.
// Changing Search does not reset Page; a page past the end renders empty.
type ListView struct {
	Search string
	Page   int
}

type ListPage struct {
	Items      []catalog.Product
	Page       int
	TotalPages int
	Matched    int
	Loading    bool
	Error      string
}

func (v ListView) Render(st State) ListPage {
	filtered := Filter(st.Products, v.Search)
	page := max(v.Page, 1)
	return ListPage{
		Items:      Window(filtered, page, PageSize),
		Page:       page,
		TotalPages: PageCount(len(filtered), PageSize),
		Matched:    len(filtered),
		Loading:    st.Loading,
		Error:      st.Error,
	}
}

// Filter keeps products whose name contains term, ignoring case, in their
// original order.
func Filter(products []catalog.Product, term string) []catalog.Product {
	term = strings.ToLower(term)
	out := make([]catalog.Product, 0, len(products))
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), term) {
			out = append(out, p)
		}
	}
	return out
}

// Window returns items[(page-1)*size : page*size] clamped to the slice.
func Window(items []catalog.Product, page, size int) []catalog.Product {
	if size <= 0 {
		return nil
	}
	page = max(page, 1)
	if page-1 >= PageCount(len(items), size) {
		return []catalog.Product{}
	}
	start := (page - 1) * size
	end := min(start+size, len(items))
	return items[start:end]
}

func PageCount(n, size int) int {
	if size <= 0 || n <= 0 {
		return 0
	}
	return (n + size - 1) / size
}
