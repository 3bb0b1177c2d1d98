package dto

import (
	"npcfinder/internal/listkit"
	"npcfinder/internal/transform"
)

// SendRecommendationRequest: one recommendation fanned out to every listed
// recipient.
type SendRecommendationRequest struct {
	RecipientIDs  []string `json:"recipient_ids" binding:"required,min=1"`
	ExternalID    string   `json:"external_id" binding:"required"`
	Title         string   `json:"title" binding:"required"`
	ImageURL      *string  `json:"image_url,omitempty"`
	Artist        *string  `json:"artist,omitempty"`
	SenderComment *string  `json:"sender_comment,omitempty"`
}

// UpdateRecommendationRequest: lifecycle move using the uniform status
// vocabulary (hit, miss, consumed).
type UpdateRecommendationRequest struct {
	Status  string  `json:"status" binding:"required"`
	Comment *string `json:"comment,omitempty"`
}

// RecommendationPageResponse: one page of an inbox or outbox listing.
type RecommendationPageResponse struct {
	Items      []transform.Recommendation `json:"items"`
	Page       int                        `json:"page"`
	PageSize   int                        `json:"page_size"`
	TotalItems int                        `json:"total_items"`
	TotalPages int                        `json:"total_pages"`
}

func FromRecommendationPage(p listkit.Page[transform.Recommendation]) RecommendationPageResponse {
	return RecommendationPageResponse{
		Items:      p.Items,
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalItems: p.TotalItems,
		TotalPages: p.TotalPages,
	}
}

// SummaryResponse: per-friend rollup across all media kinds.
type SummaryResponse struct {
	Friends []transform.FriendSummary `json:"friends"`
}
