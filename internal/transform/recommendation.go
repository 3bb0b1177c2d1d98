// Package transform normalizes the four per-kind recommendation row shapes
// into the single shape the API serves. Each kind registers one normalizer in
// a lookup table; nothing outside this package branches on row structure.
package transform

import (
	"time"

	"npcfinder/internal/http-api/models"
	"npcfinder/internal/shared"
)

// Recommendation is the uniform, rendering-ready shape.
type Recommendation struct {
	ID            int64            `json:"id"`
	Kind          shared.MediaKind `json:"kind"`
	SenderID      string           `json:"sender_id"`
	RecipientID   string           `json:"recipient_id"`
	ExternalID    string           `json:"external_id"`
	Title         string           `json:"title"`
	ImageURL      *string          `json:"image_url,omitempty"`
	Artist        *string          `json:"artist,omitempty"`
	Status        string           `json:"status"`
	Comment       *string          `json:"comment,omitempty"`
	SenderComment *string          `json:"sender_comment,omitempty"`
	SentAt        time.Time        `json:"sent_at"`
	ConsumedAt    *time.Time       `json:"consumed_at,omitempty"`
	SenderName    string           `json:"sender_name,omitempty"`
	RecipientName string           `json:"recipient_name,omitempty"`
}

// statusMaps is defined on each kind's source vocabulary only. Values already
// in the uniform vocabulary pass through untouched, which makes normalization
// idempotent.
var statusMaps = map[shared.MediaKind]map[string]string{
	shared.KindMovies: {
		"pending": shared.StatusPending,
		"hit":     shared.StatusHit,
		"miss":    shared.StatusMiss,
		"watched": shared.StatusConsumed,
	},
	shared.KindBooks: {
		"pending": shared.StatusPending,
		"hit":     shared.StatusHit,
		"miss":    shared.StatusMiss,
		"read":    shared.StatusConsumed,
	},
	shared.KindGames: {
		"pending": shared.StatusPending,
		"hit":     shared.StatusHit,
		"miss":    shared.StatusMiss,
		"played":  shared.StatusConsumed,
	},
	shared.KindMusic: {
		"pending":  shared.StatusPending,
		"hit":      shared.StatusHit,
		"miss":     shared.StatusMiss,
		"listened": shared.StatusConsumed,
	},
}

// SourceStatuses exposes the per-kind source vocabulary for totality tests.
func SourceStatuses(kind shared.MediaKind) []string {
	m := statusMaps[kind]
	out := make([]string, 0, len(m))
	for s := range m {
		out = append(out, s)
	}
	return out
}

// NormalizeStatus maps a storage status onto the uniform vocabulary. ok is
// false for values outside both the source and uniform vocabularies.
func NormalizeStatus(kind shared.MediaKind, status string) (string, bool) {
	if m, found := statusMaps[kind]; found {
		if mapped, found := m[status]; found {
			return mapped, true
		}
	}
	if shared.IsUniformStatus(status) {
		return status, true
	}
	return status, false
}

// StorageStatus is the reverse direction: the uniform terminal value maps to
// the kind's own terminal word before it is written back.
func StorageStatus(kind shared.MediaKind, uniform string) (string, bool) {
	if !shared.IsUniformStatus(uniform) {
		return "", false
	}
	if uniform != shared.StatusConsumed {
		return uniform, true
	}
	switch kind {
	case shared.KindMovies:
		return "watched", true
	case shared.KindBooks:
		return "read", true
	case shared.KindGames:
		return "played", true
	case shared.KindMusic:
		return "listened", true
	}
	return "", false
}

// NoteColumn and ConsumedAtColumn name the kind-specific columns touched by a
// status update, so the storage layer can stay generic.
func NoteColumn(kind shared.MediaKind) string {
	switch kind {
	case shared.KindBooks:
		return "note"
	case shared.KindGames:
		return "recipient_note"
	default:
		return "comment"
	}
}

func ConsumedAtColumn(kind shared.MediaKind) string {
	switch kind {
	case shared.KindMovies:
		return "watched_at"
	case shared.KindBooks:
		return "read_at"
	case shared.KindGames:
		return "played_at"
	default:
		return "listened_at"
	}
}

// Normalizer turns one backend row into the uniform shape. The bool is false
// when the row's concrete type does not match the kind.
type Normalizer func(row any) (Recommendation, bool)

var normalizers = map[shared.MediaKind]Normalizer{
	shared.KindMovies: func(row any) (Recommendation, bool) {
		r, ok := row.(models.MovieRecommendation)
		if !ok {
			return Recommendation{}, false
		}
		return NormalizeMovie(r), true
	},
	shared.KindBooks: func(row any) (Recommendation, bool) {
		r, ok := row.(models.BookRecommendation)
		if !ok {
			return Recommendation{}, false
		}
		return NormalizeBook(r), true
	},
	shared.KindGames: func(row any) (Recommendation, bool) {
		r, ok := row.(models.GameRecommendation)
		if !ok {
			return Recommendation{}, false
		}
		return NormalizeGame(r), true
	},
	shared.KindMusic: func(row any) (Recommendation, bool) {
		r, ok := row.(models.MusicRecommendation)
		if !ok {
			return Recommendation{}, false
		}
		return NormalizeMusic(r), true
	},
}

// Normalize dispatches through the per-kind lookup table.
func Normalize(kind shared.MediaKind, row any) (Recommendation, bool) {
	fn, ok := normalizers[kind]
	if !ok {
		return Recommendation{}, false
	}
	return fn(row)
}

func NormalizeMovie(r models.MovieRecommendation) Recommendation {
	status, _ := NormalizeStatus(shared.KindMovies, r.Status)
	out := Recommendation{
		ID:            r.ID,
		Kind:          shared.KindMovies,
		SenderID:      r.SenderID,
		RecipientID:   r.RecipientID,
		ExternalID:    r.ExternalID,
		Title:         r.Title,
		ImageURL:      r.PosterURL,
		Status:        status,
		Comment:       r.Comment,
		SenderComment: r.SenderComment,
		SentAt:        r.CreatedAt,
		ConsumedAt:    r.WatchedAt,
	}
	fillNames(&out, r.Sender, r.Recipient)
	return out
}

func NormalizeBook(r models.BookRecommendation) Recommendation {
	status, _ := NormalizeStatus(shared.KindBooks, r.Status)
	out := Recommendation{
		ID:            r.ID,
		Kind:          shared.KindBooks,
		SenderID:      r.SenderID,
		RecipientID:   r.RecipientID,
		ExternalID:    r.ExternalID,
		Title:         r.Title,
		ImageURL:      r.CoverURL,
		Status:        status,
		Comment:       r.Note,
		SenderComment: r.SenderNote,
		SentAt:        r.SentAt,
		ConsumedAt:    r.ReadAt,
	}
	fillNames(&out, r.Sender, r.Recipient)
	return out
}

func NormalizeGame(r models.GameRecommendation) Recommendation {
	status, _ := NormalizeStatus(shared.KindGames, r.Status)
	out := Recommendation{
		ID:            r.ID,
		Kind:          shared.KindGames,
		SenderID:      r.SenderID,
		RecipientID:   r.RecipientID,
		ExternalID:    r.ExternalID,
		Title:         r.Title,
		ImageURL:      r.CoverURL,
		Status:        status,
		Comment:       r.RecipientNote,
		SenderComment: r.SenderNote,
		SentAt:        r.CreatedAt,
		ConsumedAt:    r.PlayedAt,
	}
	fillNames(&out, r.Sender, r.Recipient)
	return out
}

func NormalizeMusic(r models.MusicRecommendation) Recommendation {
	status, _ := NormalizeStatus(shared.KindMusic, r.Status)
	out := Recommendation{
		ID:            r.ID,
		Kind:          shared.KindMusic,
		SenderID:      r.SenderID,
		RecipientID:   r.RecipientID,
		ExternalID:    r.ExternalID,
		Title:         r.Title,
		ImageURL:      r.ArtworkURL,
		Artist:        r.Artist,
		Status:        status,
		Comment:       r.Comment,
		SenderComment: r.SenderComment,
		SentAt:        r.CreatedAt,
		ConsumedAt:    r.ListenedAt,
	}
	fillNames(&out, r.Sender, r.Recipient)
	return out
}

func fillNames(out *Recommendation, sender, recipient *models.User) {
	if sender != nil {
		out.SenderName = sender.DisplayName
		if out.SenderName == "" {
			out.SenderName = sender.Username
		}
	}
	if recipient != nil {
		out.RecipientName = recipient.DisplayName
		if out.RecipientName == "" {
			out.RecipientName = recipient.Username
		}
	}
}

// HideSenderComment blanks the sender's private note on rows that have not
// left pending yet. Applied to inbox listings before they are served.
func HideSenderComment(recs []Recommendation) []Recommendation {
	for i := range recs {
		if recs[i].Status == shared.StatusPending {
			recs[i].SenderComment = nil
		}
	}
	return recs
}
