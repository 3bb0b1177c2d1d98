package dto

import (
	"npcfinder/internal/listkit"
	"npcfinder/internal/transform"
)

// AddItemRequest: payload to add an item to a library, usually copied from
// a search result.
type AddItemRequest struct {
	ExternalID  string  `json:"external_id" binding:"required"`
	Title       string  `json:"title" binding:"required"`
	ImageURL    *string `json:"image_url,omitempty"`
	ReleaseDate *string `json:"release_date,omitempty"`
	Genre       *string `json:"genre,omitempty"`
	Artist      *string `json:"artist,omitempty"`
	MediaType   string  `json:"media_type,omitempty"`
}

// UpdateItemRequest: partial update; absent fields are left untouched.
type UpdateItemRequest struct {
	Consumed *bool   `json:"consumed,omitempty"`
	Rating   *int    `json:"rating,omitempty"`
	Notes    *string `json:"notes,omitempty"`
}

// LibraryPageResponse: one page of a filtered, sorted library listing.
type LibraryPageResponse struct {
	Items      []transform.LibraryItem `json:"items"`
	Page       int                     `json:"page"`
	PageSize   int                     `json:"page_size"`
	TotalItems int                     `json:"total_items"`
	TotalPages int                     `json:"total_pages"`
}

func FromLibraryPage(p listkit.Page[transform.LibraryItem]) LibraryPageResponse {
	return LibraryPageResponse{
		Items:      p.Items,
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalItems: p.TotalItems,
		TotalPages: p.TotalPages,
	}
}

// RemovedItemResponse: the deleted row rides along so clients can offer undo.
type RemovedItemResponse struct {
	Removed transform.LibraryItem `json:"removed"`
}
