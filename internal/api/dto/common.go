package dto

// ErrorResponse is the uniform error body. Suggestions are only populated
// for validation rejections.
type ErrorResponse struct {
	Error       string   `json:"error"`
	Message     string   `json:"message"`
	Code        int      `json:"code"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// PaginationInfo describes a paginated list.
type PaginationInfo struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	TotalPages int `json:"total_pages"`
}
