package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"npcfinder/internal/cache"
	"npcfinder/internal/events"
	"npcfinder/internal/http-api/models"
	"npcfinder/internal/http-api/repository"
	"npcfinder/internal/listkit"
	"npcfinder/internal/shared"
	"npcfinder/internal/transform"
)

var (
	ErrSelfRecommend          = errors.New("cannot recommend to yourself")
	ErrNotFriends             = errors.New("recipient is not a friend")
	ErrDuplicatePending       = errors.New("a pending recommendation for this item already exists")
	ErrRecommendationNotFound = errors.New("recommendation not found")
	ErrInvalidStatus          = errors.New("invalid status")
	ErrNoRecipients           = errors.New("at least one recipient is required")
)

// SendRecommendationInput carries one outgoing recommendation, fanned out to
// every listed recipient.
type SendRecommendationInput struct {
	RecipientIDs  []string
	ExternalID    string
	Title         string
	ImageURL      *string
	Artist        *string
	SenderComment *string
}

// UpdateRecommendationInput moves a received recommendation through its
// lifecycle. Status uses the uniform vocabulary (hit, miss, consumed).
type UpdateRecommendationInput struct {
	Status  string
	Comment *string
}

// RecommendationService is the kind-agnostic face of one recommendation
// table. Everything it returns is already normalized to the uniform shape.
type RecommendationService interface {
	Send(ctx context.Context, senderID string, in SendRecommendationInput) ([]transform.Recommendation, error)
	Inbox(ctx context.Context, userID string, q ListQuery) (listkit.Page[transform.Recommendation], error)
	Outbox(ctx context.Context, userID string, q ListQuery) (listkit.Page[transform.Recommendation], error)
	InboxAll(ctx context.Context, userID string) ([]transform.Recommendation, error)
	UpdateStatus(ctx context.Context, userID string, id int64, in UpdateRecommendationInput) (*transform.Recommendation, error)
	Delete(ctx context.Context, userID string, id int64) (*transform.Recommendation, error)
}

// RecommendationRegistry maps each media kind to its service.
type RecommendationRegistry map[shared.MediaKind]RecommendationService

type recommendationService[T any] struct {
	kind    shared.MediaKind
	repo    repository.RecommendationRepository[T]
	conns   repository.ConnectionRepository
	cache   *cache.QueryCache
	bus     *events.Bus
	makeRow func(senderID, recipientID string, in SendRecommendationInput) *T
}

func NewMovieRecommendationService(repo repository.RecommendationRepository[models.MovieRecommendation], conns repository.ConnectionRepository, qc *cache.QueryCache, bus *events.Bus) RecommendationService {
	return &recommendationService[models.MovieRecommendation]{
		kind:  shared.KindMovies,
		repo:  repo,
		conns: conns,
		cache: qc,
		bus:   bus,
		makeRow: func(senderID, recipientID string, in SendRecommendationInput) *models.MovieRecommendation {
			return &models.MovieRecommendation{
				SenderID:      senderID,
				RecipientID:   recipientID,
				ExternalID:    in.ExternalID,
				Title:         in.Title,
				PosterURL:     in.ImageURL,
				Status:        "pending",
				SenderComment: in.SenderComment,
			}
		},
	}
}

func NewBookRecommendationService(repo repository.RecommendationRepository[models.BookRecommendation], conns repository.ConnectionRepository, qc *cache.QueryCache, bus *events.Bus) RecommendationService {
	return &recommendationService[models.BookRecommendation]{
		kind:  shared.KindBooks,
		repo:  repo,
		conns: conns,
		cache: qc,
		bus:   bus,
		makeRow: func(senderID, recipientID string, in SendRecommendationInput) *models.BookRecommendation {
			return &models.BookRecommendation{
				SenderID:    senderID,
				RecipientID: recipientID,
				ExternalID:  in.ExternalID,
				Title:       in.Title,
				CoverURL:    in.ImageURL,
				Status:      "pending",
				SenderNote:  in.SenderComment,
			}
		},
	}
}

func NewGameRecommendationService(repo repository.RecommendationRepository[models.GameRecommendation], conns repository.ConnectionRepository, qc *cache.QueryCache, bus *events.Bus) RecommendationService {
	return &recommendationService[models.GameRecommendation]{
		kind:  shared.KindGames,
		repo:  repo,
		conns: conns,
		cache: qc,
		bus:   bus,
		makeRow: func(senderID, recipientID string, in SendRecommendationInput) *models.GameRecommendation {
			return &models.GameRecommendation{
				SenderID:    senderID,
				RecipientID: recipientID,
				ExternalID:  in.ExternalID,
				Title:       in.Title,
				CoverURL:    in.ImageURL,
				Status:      "pending",
				SenderNote:  in.SenderComment,
			}
		},
	}
}

func NewMusicRecommendationService(repo repository.RecommendationRepository[models.MusicRecommendation], conns repository.ConnectionRepository, qc *cache.QueryCache, bus *events.Bus) RecommendationService {
	return &recommendationService[models.MusicRecommendation]{
		kind:  shared.KindMusic,
		repo:  repo,
		conns: conns,
		cache: qc,
		bus:   bus,
		makeRow: func(senderID, recipientID string, in SendRecommendationInput) *models.MusicRecommendation {
			return &models.MusicRecommendation{
				SenderID:      senderID,
				RecipientID:   recipientID,
				ExternalID:    in.ExternalID,
				Title:         in.Title,
				Artist:        in.Artist,
				ArtworkURL:    in.ImageURL,
				Status:        "pending",
				SenderComment: in.SenderComment,
			}
		},
	}
}

// Send validates every recipient up front, then creates one row per
// recipient. A concurrent duplicate still trips the partial unique index
// and surfaces as ErrDuplicatePending.
func (s *recommendationService[T]) Send(ctx context.Context, senderID string, in SendRecommendationInput) ([]transform.Recommendation, error) {
	if len(in.RecipientIDs) == 0 {
		return nil, ErrNoRecipients
	}
	if in.ExternalID == "" || in.Title == "" {
		return nil, errors.New("external id and title are required")
	}

	for _, recipientID := range in.RecipientIDs {
		if recipientID == senderID {
			return nil, ErrSelfRecommend
		}
		friends, err := s.conns.AreFriends(ctx, senderID, recipientID)
		if err != nil {
			return nil, err
		}
		if !friends {
			return nil, ErrNotFriends
		}
		pending, err := s.repo.HasPending(ctx, senderID, recipientID, in.ExternalID)
		if err != nil {
			return nil, err
		}
		if pending {
			return nil, ErrDuplicatePending
		}
	}

	created := make([]transform.Recommendation, 0, len(in.RecipientIDs))
	for _, recipientID := range in.RecipientIDs {
		row := s.makeRow(senderID, recipientID, in)
		if err := s.repo.Create(ctx, row); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return nil, ErrDuplicatePending
			}
			return nil, err
		}
		rec, _ := transform.Normalize(s.kind, *row)
		created = append(created, rec)

		s.publish(events.Event{
			Type:       events.TypeNewRecommendation,
			UserID:     recipientID,
			ActorID:    senderID,
			Kind:       s.kind,
			RefID:      rec.ID,
			Title:      rec.Title,
			Message:    fmt.Sprintf("New %s recommendation: %s", s.kind, rec.Title),
			Persistent: true,
			At:         time.Now(),
		})
		s.cache.InvalidateNamespace(ctx, cache.RecommendationsNamespace(recipientID))
	}
	s.cache.InvalidateNamespace(ctx, cache.RecommendationsNamespace(senderID))

	return created, nil
}

// fetchInbox returns the normalized inbox with pending sender comments
// hidden, served from the query cache when present.
func (s *recommendationService[T]) fetchInbox(ctx context.Context, userID string) ([]transform.Recommendation, error) {
	key := cache.RecommendationsKey(userID, s.kind, "inbox")
	var recs []transform.Recommendation
	if _, ok := s.cache.Get(ctx, key, &recs); ok {
		return recs, nil
	}

	rows, err := s.repo.Inbox(ctx, userID)
	if err != nil {
		return nil, err
	}
	recs = s.normalizeAll(rows)
	recs = transform.HideSenderComment(recs)
	s.cache.Set(ctx, key, recs)
	return recs, nil
}

func (s *recommendationService[T]) fetchOutbox(ctx context.Context, userID string) ([]transform.Recommendation, error) {
	key := cache.RecommendationsKey(userID, s.kind, "outbox")
	var recs []transform.Recommendation
	if _, ok := s.cache.Get(ctx, key, &recs); ok {
		return recs, nil
	}

	rows, err := s.repo.Outbox(ctx, userID)
	if err != nil {
		return nil, err
	}
	recs = s.normalizeAll(rows)
	s.cache.Set(ctx, key, recs)
	return recs, nil
}

func (s *recommendationService[T]) normalizeAll(rows []T) []transform.Recommendation {
	recs := make([]transform.Recommendation, 0, len(rows))
	for _, row := range rows {
		if rec, ok := transform.Normalize(s.kind, row); ok {
			recs = append(recs, rec)
		}
	}
	return recs
}

func (s *recommendationService[T]) Inbox(ctx context.Context, userID string, q ListQuery) (listkit.Page[transform.Recommendation], error) {
	recs, err := s.fetchInbox(ctx, userID)
	if err != nil {
		return listkit.Page[transform.Recommendation]{}, err
	}
	return pageRecommendations(recs, q), nil
}

func (s *recommendationService[T]) Outbox(ctx context.Context, userID string, q ListQuery) (listkit.Page[transform.Recommendation], error) {
	recs, err := s.fetchOutbox(ctx, userID)
	if err != nil {
		return listkit.Page[transform.Recommendation]{}, err
	}
	return pageRecommendations(recs, q), nil
}

func (s *recommendationService[T]) InboxAll(ctx context.Context, userID string) ([]transform.Recommendation, error) {
	return s.fetchInbox(ctx, userID)
}

func pageRecommendations(recs []transform.Recommendation, q ListQuery) listkit.Page[transform.Recommendation] {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.PageSize <= 0 {
		q.PageSize = defaultPageSize
	}

	search := strings.ToLower(q.Search)
	keep := func(r transform.Recommendation) bool {
		if q.Status != "" && r.Status != q.Status {
			return false
		}
		if search == "" {
			return true
		}
		return strings.Contains(strings.ToLower(r.Title), search)
	}

	var cmp func(a, b transform.Recommendation) int
	switch q.Sort {
	case "title":
		byString := listkit.StringComparator()
		cmp = func(a, b transform.Recommendation) int { return byString(a.Title, b.Title) }
		if q.Order == "desc" {
			cmp = listkit.Desc(cmp)
		}
	default:
		// newest first
		cmp = listkit.Desc(func(a, b transform.Recommendation) int { return a.SentAt.Compare(b.SentAt) })
		if q.Order == "asc" {
			cmp = listkit.Desc(cmp)
		}
	}

	return listkit.Apply(recs, keep, cmp, q.Page, q.PageSize)
}

// UpdateStatus is recipient-only. Pending is not a target state; once a
// recommendation leaves pending it never returns.
func (s *recommendationService[T]) UpdateStatus(ctx context.Context, userID string, id int64, in UpdateRecommendationInput) (*transform.Recommendation, error) {
	if in.Status == shared.StatusPending {
		return nil, ErrInvalidStatus
	}
	storage, ok := transform.StorageStatus(s.kind, in.Status)
	if !ok {
		return nil, ErrInvalidStatus
	}

	fields := map[string]any{"status": storage}
	if in.Comment != nil {
		fields[transform.NoteColumn(s.kind)] = *in.Comment
	}
	if in.Status == shared.StatusConsumed {
		fields[transform.ConsumedAtColumn(s.kind)] = time.Now()
	}

	row, err := s.repo.Update(ctx, id, userID, fields)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRecommendationNotFound
		}
		return nil, err
	}

	rec, _ := transform.Normalize(s.kind, *row)
	s.publish(events.Event{
		Type:    events.TypeRecommendationUpdate,
		UserID:  rec.SenderID,
		ActorID: userID,
		Kind:    s.kind,
		RefID:   rec.ID,
		Title:   rec.Title,
		Message: fmt.Sprintf("%s marked %q as %s", rec.RecipientName, rec.Title, rec.Status),
		At:      time.Now(),
	})
	s.cache.InvalidateNamespace(ctx, cache.RecommendationsNamespace(userID))
	s.cache.InvalidateNamespace(ctx, cache.RecommendationsNamespace(rec.SenderID))

	return &rec, nil
}

// Delete lets a sender retract a recommendation they sent. The removed row
// is returned so the caller can report what was retracted.
func (s *recommendationService[T]) Delete(ctx context.Context, userID string, id int64) (*transform.Recommendation, error) {
	row, err := s.repo.Delete(ctx, id, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRecommendationNotFound
		}
		return nil, err
	}

	rec, _ := transform.Normalize(s.kind, *row)
	s.cache.InvalidateNamespace(ctx, cache.RecommendationsNamespace(userID))
	s.cache.InvalidateNamespace(ctx, cache.RecommendationsNamespace(rec.RecipientID))
	return &rec, nil
}

func (s *recommendationService[T]) publish(e events.Event) {
	if s.bus != nil {
		s.bus.Publish(e)
	}
}

// SummaryService aggregates pending and answered recommendations across all
// four kinds into one per-friend rollup.
type SummaryService struct {
	registry RecommendationRegistry
	conns    repository.ConnectionRepository
}

func NewSummaryService(registry RecommendationRegistry, conns repository.ConnectionRepository) *SummaryService {
	return &SummaryService{registry: registry, conns: conns}
}

func (s *SummaryService) Summary(ctx context.Context, userID string) ([]transform.FriendSummary, error) {
	var all []transform.Recommendation
	for _, kind := range shared.Kinds() {
		svc, ok := s.registry[kind]
		if !ok {
			continue
		}
		recs, err := svc.InboxAll(ctx, userID)
		if err != nil {
			return nil, err
		}
		all = append(all, recs...)
	}

	conns, err := s.conns.ListFriends(ctx, userID)
	if err != nil {
		return nil, err
	}

	// friend display names win over whatever rode in on the rows
	names := transform.BuildUserNameMap(
		transform.NamesFromFriends(conns),
		transform.SenderNames(all),
		transform.RecipientNames(all),
	)
	return transform.Summarize(all, names), nil
}
