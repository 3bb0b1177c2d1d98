package shared

// shared types across the application
// 1st: media kind tags used to key per-kind registries (storage, transform, search)
// 2nd: the uniform recommendation status vocabulary exposed by the API
// 3rd: add more shared types as needed

// MediaKind tags one of the four catalog variants.
type MediaKind string

const (
	KindMovies MediaKind = "movies"
	KindBooks  MediaKind = "books"
	KindGames  MediaKind = "games"
	KindMusic  MediaKind = "music"
)

// Kinds lists every supported media kind in a stable order.
func Kinds() []MediaKind {
	return []MediaKind{KindMovies, KindBooks, KindGames, KindMusic}
}

// ParseKind validates a URL path segment into a MediaKind.
func ParseKind(s string) (MediaKind, bool) {
	switch MediaKind(s) {
	case KindMovies, KindBooks, KindGames, KindMusic:
		return MediaKind(s), true
	}
	return "", false
}

// Uniform recommendation statuses. Each kind's storage layer keeps its own
// terminal vocabulary ("watched", "read", ...); the transform layer maps onto
// these values before anything leaves the server.
const (
	StatusPending  = "pending"
	StatusHit      = "hit"
	StatusMiss     = "miss"
	StatusConsumed = "consumed"
)

// IsUniformStatus reports whether s belongs to the API status vocabulary.
func IsUniformStatus(s string) bool {
	switch s {
	case StatusPending, StatusHit, StatusMiss, StatusConsumed:
		return true
	}
	return false
}
