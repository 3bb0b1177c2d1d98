package models

import "time"

// MovieItem is one row of a user's movie/TV library. One row per
// (user, TMDB id); the composite unique index backs duplicate detection.
type MovieItem struct {
	ID          int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      string     `gorm:"type:uuid;not null;uniqueIndex:idx_movie_items_user_external" json:"user_id"`
	TmdbID      int64      `gorm:"not null;uniqueIndex:idx_movie_items_user_external" json:"tmdb_id"`
	Title       string     `gorm:"not null" json:"title"`
	PosterURL   *string    `json:"poster_url,omitempty"`
	ReleaseDate *string    `json:"release_date,omitempty"` // provider string, kept verbatim
	Genre       *string    `json:"genre,omitempty"`
	MediaType   string     `gorm:"default:'movie'" json:"media_type"` // "movie" or "tv"
	Watched     bool       `gorm:"default:false" json:"watched"`
	WatchedAt   *time.Time `json:"watched_at,omitempty"`
	Rating      *int       `gorm:"check:rating >= 1 AND rating <= 10" json:"rating,omitempty"`
	Notes       *string    `json:"notes,omitempty"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (MovieItem) TableName() string {
	return "movie_items"
}

// MovieRecommendation is the movie-flavoured recommendation row. Terminal
// status vocabulary here is pending/hit/miss/watched; the transform layer
// maps it to the uniform API vocabulary.
type MovieRecommendation struct {
	ID            int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	SenderID      string     `gorm:"type:uuid;not null;index" json:"sender_id"`
	RecipientID   string     `gorm:"type:uuid;not null;index" json:"recipient_id"`
	ExternalID    string     `gorm:"not null" json:"external_id"`
	Title         string     `gorm:"not null" json:"title"`
	PosterURL     *string    `json:"poster_url,omitempty"`
	Status        string     `gorm:"default:'pending';not null" json:"status"`
	Comment       *string    `json:"comment,omitempty"`        // recipient's note, added after watching
	SenderComment *string    `json:"sender_comment,omitempty"` // hidden from recipient while pending
	WatchedAt     *time.Time `json:"watched_at,omitempty"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`

	// Associations
	Sender    *User `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
	Recipient *User `gorm:"foreignKey:RecipientID" json:"recipient,omitempty"`
}

func (MovieRecommendation) TableName() string {
	return "movie_recommendations"
}
