package transform

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"npcfinder/internal/http-api/models"
	"npcfinder/internal/shared"
)

func strPtr(s string) *string { return &s }

func TestStatusMap_TotalOverSourceVocabulary(t *testing.T) {
	for _, kind := range shared.Kinds() {
		for _, src := range SourceStatuses(kind) {
			mapped, ok := NormalizeStatus(kind, src)
			assert.True(t, ok, "kind %s: source status %q has no mapping", kind, src)
			assert.True(t, shared.IsUniformStatus(mapped),
				"kind %s: %q maps to non-uniform %q", kind, src, mapped)
		}
	}
}

func TestStatusMap_IdempotentOnUniformValues(t *testing.T) {
	uniform := []string{shared.StatusPending, shared.StatusHit, shared.StatusMiss, shared.StatusConsumed}
	for _, kind := range shared.Kinds() {
		for _, s := range uniform {
			mapped, ok := NormalizeStatus(kind, s)
			assert.True(t, ok)
			assert.Equal(t, s, mapped)
		}
	}
}

func TestStatusMap_UnmappedValueFlagged(t *testing.T) {
	_, ok := NormalizeStatus(shared.KindMovies, "binged")
	assert.False(t, ok)
}

func TestStorageStatus_RoundTripsTerminalValues(t *testing.T) {
	want := map[shared.MediaKind]string{
		shared.KindMovies: "watched",
		shared.KindBooks:  "read",
		shared.KindGames:  "played",
		shared.KindMusic:  "listened",
	}
	for kind, terminal := range want {
		storage, ok := StorageStatus(kind, shared.StatusConsumed)
		require.True(t, ok)
		assert.Equal(t, terminal, storage)

		back, ok := NormalizeStatus(kind, storage)
		require.True(t, ok)
		assert.Equal(t, shared.StatusConsumed, back)
	}
}

func TestNormalize_EachKindShape(t *testing.T) {
	sent := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	watched := sent.Add(48 * time.Hour)

	movie := models.MovieRecommendation{
		ID: 1, SenderID: "a", RecipientID: "b", ExternalID: "603",
		Title: "The Matrix", Status: "watched",
		Comment: strPtr("loved it"), SenderComment: strPtr("trust me"),
		WatchedAt: &watched, CreatedAt: sent,
	}
	got, ok := Normalize(shared.KindMovies, movie)
	require.True(t, ok)
	assert.Equal(t, shared.StatusConsumed, got.Status)
	assert.Equal(t, sent, got.SentAt)
	assert.Equal(t, &watched, got.ConsumedAt)
	assert.Equal(t, "loved it", *got.Comment)
	assert.Equal(t, "trust me", *got.SenderComment)

	book := models.BookRecommendation{
		ID: 2, SenderID: "a", RecipientID: "b", ExternalID: "OL123W",
		Title: "Dune", Status: "pending",
		Note: strPtr("tbd"), SenderNote: strPtr("classic"), SentAt: sent,
	}
	got, ok = Normalize(shared.KindBooks, book)
	require.True(t, ok)
	assert.Equal(t, shared.StatusPending, got.Status)
	assert.Equal(t, "tbd", *got.Comment)
	assert.Equal(t, "classic", *got.SenderComment)
	assert.Nil(t, got.ConsumedAt)

	game := models.GameRecommendation{
		ID: 3, SenderID: "a", RecipientID: "b", ExternalID: "3498",
		Title: "GTA V", Status: "played",
		RecipientNote: strPtr("finished"), PlayedAt: &watched, CreatedAt: sent,
	}
	got, ok = Normalize(shared.KindGames, game)
	require.True(t, ok)
	assert.Equal(t, shared.StatusConsumed, got.Status)
	assert.Equal(t, "finished", *got.Comment)

	music := models.MusicRecommendation{
		ID: 4, SenderID: "a", RecipientID: "b", ExternalID: "9001",
		Title: "OK Computer", Artist: strPtr("Radiohead"),
		Status: "listened", ListenedAt: &watched, CreatedAt: sent,
	}
	got, ok = Normalize(shared.KindMusic, music)
	require.True(t, ok)
	assert.Equal(t, shared.StatusConsumed, got.Status)
	assert.Equal(t, "Radiohead", *got.Artist)
}

func TestNormalize_RejectsMismatchedRow(t *testing.T) {
	_, ok := Normalize(shared.KindMovies, models.BookRecommendation{})
	assert.False(t, ok)
}

func TestNormalize_MissingOptionalsStaySafe(t *testing.T) {
	// Bare row with only required columns must not panic and must keep
	// optional fields nil.
	got, ok := Normalize(shared.KindMovies, models.MovieRecommendation{
		ID: 9, SenderID: "a", RecipientID: "b", ExternalID: "1", Title: "x", Status: "pending",
	})
	require.True(t, ok)
	assert.Nil(t, got.Comment)
	assert.Nil(t, got.SenderComment)
	assert.Nil(t, got.ImageURL)
	assert.Empty(t, got.SenderName)
}

func TestHideSenderComment_OnlyWhilePending(t *testing.T) {
	recs := []Recommendation{
		{ID: 1, Status: shared.StatusPending, SenderComment: strPtr("secret")},
		{ID: 2, Status: shared.StatusConsumed, SenderComment: strPtr("visible")},
	}
	out := HideSenderComment(recs)
	assert.Nil(t, out[0].SenderComment)
	assert.Equal(t, "visible", *out[1].SenderComment)
}
