package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"npcfinder/internal/cache"
	"npcfinder/internal/http-api/models"
	"npcfinder/internal/http-api/repository"
	"npcfinder/internal/listkit"
	"npcfinder/internal/prefs"
	"npcfinder/internal/shared"
	"npcfinder/internal/transform"
)

var (
	ErrAlreadyInLibrary = errors.New("item already in library")
	ErrNotInLibrary     = errors.New("item not in library")
	ErrInvalidRating    = errors.New("rating must be between 1 and 10")
	ErrInvalidExternal  = errors.New("invalid external id")
)

const defaultPageSize = 20

// ListQuery carries the filter/sort/page parameters of a library listing.
// Zero values fall back to the user's stored preferences.
type ListQuery struct {
	Page     int
	PageSize int
	Sort     string // "added", "title", "release", "rating"
	Order    string // "asc" or "desc"
	Status   string // "", "consumed", "unconsumed"
	Search   string // case-insensitive title/artist substring
}

// AddItemInput is the kind-agnostic payload for adding a library item,
// typically copied straight from a search result.
type AddItemInput struct {
	ExternalID  string
	Title       string
	ImageURL    *string
	ReleaseDate *string
	Genre       *string
	Artist      *string
	MediaType   string // movies only: "movie" or "tv"
}

// UpdateItemInput patches an item; nil fields are left untouched.
type UpdateItemInput struct {
	Consumed *bool
	Rating   *int
	Notes    *string
}

// LibraryService is the kind-agnostic face of one library table. Handlers
// pick an instance out of the registry by the :kind path parameter.
type LibraryService interface {
	List(ctx context.Context, userID string, q ListQuery) (listkit.Page[transform.LibraryItem], error)
	Add(ctx context.Context, userID string, in AddItemInput) (*transform.LibraryItem, error)
	Update(ctx context.Context, userID string, id int64, in UpdateItemInput) (*transform.LibraryItem, error)
	Remove(ctx context.Context, userID string, id int64) (*transform.LibraryItem, error)
	Warm(ctx context.Context, userID string) (any, error)
}

// LibraryRegistry maps each media kind to its service.
type LibraryRegistry map[shared.MediaKind]LibraryService

type libraryService[T any] struct {
	kind    shared.MediaKind
	repo    repository.LibraryRepository[T]
	cache   *cache.QueryCache
	prefs   *prefs.Store
	makeRow func(userID string, in AddItemInput) (*T, error)
}

func NewMovieLibraryService(repo repository.LibraryRepository[models.MovieItem], qc *cache.QueryCache, ps *prefs.Store) LibraryService {
	return &libraryService[models.MovieItem]{
		kind:  shared.KindMovies,
		repo:  repo,
		cache: qc,
		prefs: ps,
		makeRow: func(userID string, in AddItemInput) (*models.MovieItem, error) {
			tmdbID, err := strconv.ParseInt(in.ExternalID, 10, 64)
			if err != nil {
				return nil, ErrInvalidExternal
			}
			mediaType := in.MediaType
			if mediaType == "" {
				mediaType = "movie"
			}
			return &models.MovieItem{
				UserID:      userID,
				TmdbID:      tmdbID,
				Title:       in.Title,
				PosterURL:   in.ImageURL,
				ReleaseDate: in.ReleaseDate,
				Genre:       in.Genre,
				MediaType:   mediaType,
			}, nil
		},
	}
}

func NewBookLibraryService(repo repository.LibraryRepository[models.BookItem], qc *cache.QueryCache, ps *prefs.Store) LibraryService {
	return &libraryService[models.BookItem]{
		kind:  shared.KindBooks,
		repo:  repo,
		cache: qc,
		prefs: ps,
		makeRow: func(userID string, in AddItemInput) (*models.BookItem, error) {
			if in.ExternalID == "" {
				return nil, ErrInvalidExternal
			}
			return &models.BookItem{
				UserID:        userID,
				OpenLibraryID: in.ExternalID,
				Title:         in.Title,
				Author:        in.Artist,
				CoverURL:      in.ImageURL,
				PublishedDate: in.ReleaseDate,
				Genre:         in.Genre,
			}, nil
		},
	}
}

func NewGameLibraryService(repo repository.LibraryRepository[models.GameItem], qc *cache.QueryCache, ps *prefs.Store) LibraryService {
	return &libraryService[models.GameItem]{
		kind:  shared.KindGames,
		repo:  repo,
		cache: qc,
		prefs: ps,
		makeRow: func(userID string, in AddItemInput) (*models.GameItem, error) {
			rawgID, err := strconv.ParseInt(in.ExternalID, 10, 64)
			if err != nil {
				return nil, ErrInvalidExternal
			}
			return &models.GameItem{
				UserID:   userID,
				RawgID:   rawgID,
				Title:    in.Title,
				CoverURL: in.ImageURL,
				Released: in.ReleaseDate,
				Platform: in.Genre,
			}, nil
		},
	}
}

func NewMusicLibraryService(repo repository.LibraryRepository[models.MusicItem], qc *cache.QueryCache, ps *prefs.Store) LibraryService {
	return &libraryService[models.MusicItem]{
		kind:  shared.KindMusic,
		repo:  repo,
		cache: qc,
		prefs: ps,
		makeRow: func(userID string, in AddItemInput) (*models.MusicItem, error) {
			itunesID, err := strconv.ParseInt(in.ExternalID, 10, 64)
			if err != nil {
				return nil, ErrInvalidExternal
			}
			return &models.MusicItem{
				UserID:      userID,
				ItunesID:    itunesID,
				Title:       in.Title,
				Artist:      in.Artist,
				ArtworkURL:  in.ImageURL,
				ReleaseDate: in.ReleaseDate,
				Genre:       in.Genre,
			}, nil
		},
	}
}

func (s *libraryService[T]) prefsNamespace() string {
	return "library:" + string(s.kind)
}

// fetchAll returns the user's full normalized library, served from the
// query cache when present. Filtering and sorting happen in memory on top.
func (s *libraryService[T]) fetchAll(ctx context.Context, userID string) ([]transform.LibraryItem, error) {
	key := cache.LibraryKey(userID, s.kind)
	var items []transform.LibraryItem
	if _, ok := s.cache.Get(ctx, key, &items); ok {
		return items, nil
	}

	rows, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("fetch %s library: %w", s.kind, err)
	}
	items = make([]transform.LibraryItem, 0, len(rows))
	for _, row := range rows {
		if it, ok := transform.NormalizeLibrary(s.kind, row); ok {
			items = append(items, it)
		}
	}
	s.cache.Set(ctx, key, items)
	return items, nil
}

// Warm is the prefetch hook: it fetches and normalizes straight from
// storage, leaving cache writes to the scheduler.
func (s *libraryService[T]) Warm(ctx context.Context, userID string) (any, error) {
	rows, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	items := make([]transform.LibraryItem, 0, len(rows))
	for _, row := range rows {
		if it, ok := transform.NormalizeLibrary(s.kind, row); ok {
			items = append(items, it)
		}
	}
	return items, nil
}

func (s *libraryService[T]) List(ctx context.Context, userID string, q ListQuery) (listkit.Page[transform.LibraryItem], error) {
	stored := prefs.Prefs{PageSize: defaultPageSize}
	if s.prefs != nil {
		stored = s.prefs.Load(ctx, userID, s.prefsNamespace(), stored)
	}

	explicit := q.PageSize > 0 || q.Sort != "" || q.Status != ""

	items, err := s.fetchAll(ctx, userID)
	if err != nil {
		return listkit.Page[transform.LibraryItem]{}, err
	}

	// Resolve pagination against the stored settings: changing the page
	// size, filter, or sort snaps back to page 1, and an out-of-range page
	// request is ignored rather than clamped.
	pager := listkit.NewPager(stored.PageSize)
	pager.SetFilterKey(stored.Filter)
	pager.SetSortKey(stored.Sort)
	if q.PageSize > 0 {
		pager.SetPageSize(q.PageSize)
	}
	if q.Status != "" {
		pager.SetFilterKey(q.Status)
	}
	if q.Sort != "" {
		pager.SetSortKey(q.Sort)
	}
	pager.SetTotal(len(items))
	if q.Page > 0 {
		pager.SetPage(q.Page)
	}
	q.Page = pager.Page()
	q.PageSize = pager.PageSize()
	if q.Sort == "" {
		q.Sort = stored.Sort
	}
	if q.Status == "" {
		q.Status = stored.Filter
	}

	page := listkit.Apply(items, libraryFilter(q), libraryComparator(q), q.Page, q.PageSize)

	if explicit && s.prefs != nil {
		s.prefs.Save(ctx, userID, s.prefsNamespace(), prefs.Prefs{
			PageSize: q.PageSize,
			Filter:   q.Status,
			Sort:     q.Sort,
		})
	}
	return page, nil
}

func libraryFilter(q ListQuery) func(transform.LibraryItem) bool {
	search := strings.ToLower(q.Search)
	return func(it transform.LibraryItem) bool {
		switch q.Status {
		case "consumed":
			if !it.Consumed {
				return false
			}
		case "unconsumed":
			if it.Consumed {
				return false
			}
		}
		if search == "" {
			return true
		}
		if strings.Contains(strings.ToLower(it.Title), search) {
			return true
		}
		return it.Artist != nil && strings.Contains(strings.ToLower(*it.Artist), search)
	}
}

func libraryComparator(q ListQuery) func(a, b transform.LibraryItem) int {
	var cmp func(a, b transform.LibraryItem) int
	defaultDesc := false
	switch q.Sort {
	case "title":
		byString := listkit.StringComparator()
		cmp = func(a, b transform.LibraryItem) int { return byString(a.Title, b.Title) }
	case "release":
		cmp = func(a, b transform.LibraryItem) int { return listkit.CompareDates(a.ReleaseDate, b.ReleaseDate) }
	case "rating":
		cmp = func(a, b transform.LibraryItem) int { return listkit.CompareRatings(a.Rating, b.Rating) }
		defaultDesc = true
	default:
		// newest additions first
		cmp = func(a, b transform.LibraryItem) int { return a.AddedAt.Compare(b.AddedAt) }
		defaultDesc = true
	}

	switch q.Order {
	case "asc":
		return cmp
	case "desc":
		return listkit.Desc(cmp)
	default:
		if defaultDesc {
			return listkit.Desc(cmp)
		}
		return cmp
	}
}

func (s *libraryService[T]) Add(ctx context.Context, userID string, in AddItemInput) (*transform.LibraryItem, error) {
	if in.Title == "" {
		return nil, errors.New("title is required")
	}
	row, err := s.makeRow(userID, in)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Add(ctx, row); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrAlreadyInLibrary
		}
		return nil, err
	}
	s.cache.InvalidateNamespace(ctx, cache.LibraryNamespace(userID))

	item, _ := transform.NormalizeLibrary(s.kind, *row)
	return &item, nil
}

func (s *libraryService[T]) Update(ctx context.Context, userID string, id int64, in UpdateItemInput) (*transform.LibraryItem, error) {
	fields := map[string]any{}
	if in.Rating != nil {
		if *in.Rating < 1 || *in.Rating > 10 {
			return nil, ErrInvalidRating
		}
		fields["rating"] = *in.Rating
	}
	if in.Notes != nil {
		fields["notes"] = *in.Notes
	}
	if in.Consumed != nil {
		fields[transform.ConsumedColumn(s.kind)] = *in.Consumed
		if *in.Consumed {
			fields[transform.ConsumedAtColumn(s.kind)] = time.Now()
		} else {
			fields[transform.ConsumedAtColumn(s.kind)] = nil
		}
	}
	if len(fields) == 0 {
		row, err := s.repo.GetByID(ctx, userID, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrNotInLibrary
			}
			return nil, err
		}
		item, _ := transform.NormalizeLibrary(s.kind, *row)
		return &item, nil
	}

	row, err := s.repo.Update(ctx, userID, id, fields)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotInLibrary
		}
		return nil, err
	}
	s.cache.InvalidateNamespace(ctx, cache.LibraryNamespace(userID))

	item, _ := transform.NormalizeLibrary(s.kind, *row)
	return &item, nil
}

// Remove deletes the item and returns the removed row so the client can
// offer an undo.
func (s *libraryService[T]) Remove(ctx context.Context, userID string, id int64) (*transform.LibraryItem, error) {
	row, err := s.repo.Remove(ctx, userID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotInLibrary
		}
		return nil, err
	}
	s.cache.InvalidateNamespace(ctx, cache.LibraryNamespace(userID))

	item, _ := transform.NormalizeLibrary(s.kind, *row)
	return &item, nil
}
