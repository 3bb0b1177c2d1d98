package cache

import (
	"fmt"

	"npcfinder/internal/shared"
)

// Keys are built from logical namespaces so mutations can invalidate by
// prefix: dropping "library:<user>:" covers every library query for that
// user, however it was scoped.

func LibraryNamespace(userID string) string {
	return fmt.Sprintf("library:%s:", userID)
}

func LibraryKey(userID string, kind shared.MediaKind) string {
	return fmt.Sprintf("library:%s:%s", userID, kind)
}

func RecommendationsNamespace(userID string) string {
	return fmt.Sprintf("recommendations:%s:", userID)
}

func RecommendationsKey(userID string, kind shared.MediaKind, direction string) string {
	return fmt.Sprintf("recommendations:%s:%s:%s", userID, kind, direction)
}

func FriendsKey(userID string) string {
	return fmt.Sprintf("friends:%s", userID)
}
