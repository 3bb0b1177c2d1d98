package transform

import (
	"strconv"
	"time"

	"npcfinder/internal/http-api/models"
	"npcfinder/internal/shared"
)

// LibraryItem is the uniform shape library rows are served in. The per-kind
// tables key their rows differently (tmdb_id int64, open_library_id string,
// ...); ExternalID carries the key as a string regardless.
type LibraryItem struct {
	ID          int64            `json:"id"`
	Kind        shared.MediaKind `json:"kind"`
	UserID      string           `json:"user_id"`
	ExternalID  string           `json:"external_id"`
	Title       string           `json:"title"`
	ImageURL    *string          `json:"image_url,omitempty"`
	ReleaseDate *string          `json:"release_date,omitempty"`
	Genre       *string          `json:"genre,omitempty"`
	Artist      *string          `json:"artist,omitempty"`
	MediaType   string           `json:"media_type,omitempty"`
	Consumed    bool             `json:"consumed"`
	ConsumedAt  *time.Time       `json:"consumed_at,omitempty"`
	Rating      *int             `json:"rating,omitempty"`
	Notes       *string          `json:"notes,omitempty"`
	AddedAt     time.Time        `json:"added_at"`
}

// ConsumedColumn names the per-table boolean flipped when an item is marked
// consumed; pairs with ConsumedAtColumn for the timestamp.
func ConsumedColumn(kind shared.MediaKind) string {
	switch kind {
	case shared.KindMovies:
		return "watched"
	case shared.KindBooks:
		return "read"
	case shared.KindGames:
		return "played"
	default:
		return "listened"
	}
}

// LibraryNormalizer turns one library row into the uniform shape. The bool
// is false when the row's concrete type does not match the kind.
type LibraryNormalizer func(row any) (LibraryItem, bool)

var libraryNormalizers = map[shared.MediaKind]LibraryNormalizer{
	shared.KindMovies: func(row any) (LibraryItem, bool) {
		it, ok := row.(models.MovieItem)
		if !ok {
			return LibraryItem{}, false
		}
		return NormalizeMovieItem(it), true
	},
	shared.KindBooks: func(row any) (LibraryItem, bool) {
		it, ok := row.(models.BookItem)
		if !ok {
			return LibraryItem{}, false
		}
		return NormalizeBookItem(it), true
	},
	shared.KindGames: func(row any) (LibraryItem, bool) {
		it, ok := row.(models.GameItem)
		if !ok {
			return LibraryItem{}, false
		}
		return NormalizeGameItem(it), true
	},
	shared.KindMusic: func(row any) (LibraryItem, bool) {
		it, ok := row.(models.MusicItem)
		if !ok {
			return LibraryItem{}, false
		}
		return NormalizeMusicItem(it), true
	},
}

// NormalizeLibrary dispatches through the per-kind lookup table.
func NormalizeLibrary(kind shared.MediaKind, row any) (LibraryItem, bool) {
	fn, ok := libraryNormalizers[kind]
	if !ok {
		return LibraryItem{}, false
	}
	return fn(row)
}

func NormalizeMovieItem(it models.MovieItem) LibraryItem {
	return LibraryItem{
		ID:          it.ID,
		Kind:        shared.KindMovies,
		UserID:      it.UserID,
		ExternalID:  strconv.FormatInt(it.TmdbID, 10),
		Title:       it.Title,
		ImageURL:    it.PosterURL,
		ReleaseDate: it.ReleaseDate,
		Genre:       it.Genre,
		MediaType:   it.MediaType,
		Consumed:    it.Watched,
		ConsumedAt:  it.WatchedAt,
		Rating:      it.Rating,
		Notes:       it.Notes,
		AddedAt:     it.CreatedAt,
	}
}

func NormalizeBookItem(it models.BookItem) LibraryItem {
	return LibraryItem{
		ID:          it.ID,
		Kind:        shared.KindBooks,
		UserID:      it.UserID,
		ExternalID:  it.OpenLibraryID,
		Title:       it.Title,
		ImageURL:    it.CoverURL,
		ReleaseDate: it.PublishedDate,
		Genre:       it.Genre,
		Artist:      it.Author, // author rides the artist slot
		Consumed:    it.Read,
		ConsumedAt:  it.ReadAt,
		Rating:      it.Rating,
		Notes:       it.Notes,
		AddedAt:     it.CreatedAt,
	}
}

func NormalizeGameItem(it models.GameItem) LibraryItem {
	return LibraryItem{
		ID:          it.ID,
		Kind:        shared.KindGames,
		UserID:      it.UserID,
		ExternalID:  strconv.FormatInt(it.RawgID, 10),
		Title:       it.Title,
		ImageURL:    it.CoverURL,
		ReleaseDate: it.Released,
		Genre:       it.Platform,
		Consumed:    it.Played,
		ConsumedAt:  it.PlayedAt,
		Rating:      it.Rating,
		Notes:       it.Notes,
		AddedAt:     it.CreatedAt,
	}
}

func NormalizeMusicItem(it models.MusicItem) LibraryItem {
	return LibraryItem{
		ID:          it.ID,
		Kind:        shared.KindMusic,
		UserID:      it.UserID,
		ExternalID:  strconv.FormatInt(it.ItunesID, 10),
		Title:       it.Title,
		ImageURL:    it.ArtworkURL,
		ReleaseDate: it.ReleaseDate,
		Genre:       it.Genre,
		Artist:      it.Artist,
		Consumed:    it.Listened,
		ConsumedAt:  it.ListenedAt,
		Rating:      it.Rating,
		Notes:       it.Notes,
		AddedAt:     it.CreatedAt,
	}
}
