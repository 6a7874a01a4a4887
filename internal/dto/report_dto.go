package dto

type SubmitReportRequest struct {
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	FacebookID  string `json:"facebook_id"`
	Description string `json:"description"`
}

type UpdateOwnStatusRequest struct {
	Status string `json:"status"`
}

type ReviewReportRequest struct {
	Status          string `json:"status"`
	RejectionReason string `json:"rejection_reason"`
}

type ImageResponse struct {
	ImageID  string `json:"image_id"`
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
}

// ListOptions carries pagination and sorting for report and user listings.
type ListOptions struct {
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
}

type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

// ReportFilters narrows admin report listings.
type ReportFilters struct {
	Status       string
	IdentityType string
	UserID       string
	DateFrom     string
	DateTo       string
}
