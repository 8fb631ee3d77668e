package models

// PaginatedResponse is the envelope for every paged listing endpoint. Total
// counts all matching rows, not just the rows in Data.
type PaginatedResponse struct {
	Data     any `json:"data"`
	Total    int `json:"total"`
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
}

// NormalizePage clamps user-supplied paging values to sane bounds. Page
// numbering starts at 1; size falls back to 10 and is capped at 50.
func NormalizePage(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}

	if size < 1 || size > 50 {
		size = 10
	}

	return page, size
}
