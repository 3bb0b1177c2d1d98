package dto

// PrefsRequest: stored list preferences for one namespace, e.g.
// "library:movies" or "recommendations:books".
type PrefsRequest struct {
	PageSize int    `json:"page_size" binding:"omitempty,min=1,max=100"`
	Filter   string `json:"filter,omitempty"`
	Sort     string `json:"sort,omitempty"`
}
