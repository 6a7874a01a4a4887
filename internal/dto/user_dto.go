package dto

type UpdateProfileRequest struct {
	Name           string `json:"name"`
	ProfilePicture string `json:"profile_picture"`
}

type UpdateUserStatusRequest struct {
	Status string `json:"status"`
}

// UserFilters narrows admin user listings.
type UserFilters struct {
	Status string
	Search string
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
}

type SiteStatsResponse struct {
	TotalReports   int64  `json:"total_reports"`
	TotalUsers     int64  `json:"total_users"`
	RecentReports  int64  `json:"recent_reports"`
	PendingReports int64  `json:"pending_reports"`
	LastUpdated    string `json:"last_updated"`
}
