package domain

// Pagination is the envelope every list endpoint returns alongside its
// items. TotalPages is ceil(TotalItems / ItemsPerPage); an empty result
// has zero pages and both flags false.
type Pagination struct {
	CurrentPage  int   `json:"current_page"`
	TotalPages   int   `json:"total_pages"`
	TotalItems   int64 `json:"total_items"`
	ItemsPerPage int   `json:"items_per_page"`
	HasNext      bool  `json:"has_next"`
	HasPrevious  bool  `json:"has_previous"`
}

func NewPagination(page, perPage int, totalItems int64) Pagination {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	totalPages := int((totalItems + int64(perPage) - 1) / int64(perPage))
	return Pagination{
		CurrentPage:  page,
		TotalPages:   totalPages,
		TotalItems:   totalItems,
		ItemsPerPage: perPage,
		HasNext:      page < totalPages,
		HasPrevious:  page > 1 && totalPages > 0,
	}
}
