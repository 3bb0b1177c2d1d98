package service

import (
	"context"
	"testing"
	"time"

	"npcfinder/internal/events"
	"npcfinder/internal/http-api/models"
	"npcfinder/internal/http-api/repository"
	"npcfinder/internal/shared"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockBookRecommendationRepository mocks RecommendationRepository[models.BookRecommendation]
type MockBookRecommendationRepository struct {
	mock.Mock
}

func (m *MockBookRecommendationRepository) Create(ctx context.Context, rec *models.BookRecommendation) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockBookRecommendationRepository) Inbox(ctx context.Context, recipientID string) ([]models.BookRecommendation, error) {
	args := m.Called(ctx, recipientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.BookRecommendation), args.Error(1)
}

func (m *MockBookRecommendationRepository) Outbox(ctx context.Context, senderID string) ([]models.BookRecommendation, error) {
	args := m.Called(ctx, senderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.BookRecommendation), args.Error(1)
}

func (m *MockBookRecommendationRepository) GetByID(ctx context.Context, id int64) (*models.BookRecommendation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BookRecommendation), args.Error(1)
}

func (m *MockBookRecommendationRepository) Update(ctx context.Context, id int64, recipientID string, fields map[string]any) (*models.BookRecommendation, error) {
	args := m.Called(ctx, id, recipientID, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BookRecommendation), args.Error(1)
}

func (m *MockBookRecommendationRepository) Delete(ctx context.Context, id int64, senderID string) (*models.BookRecommendation, error) {
	args := m.Called(ctx, id, senderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BookRecommendation), args.Error(1)
}

func (m *MockBookRecommendationRepository) HasPending(ctx context.Context, senderID, recipientID, externalID string) (bool, error) {
	args := m.Called(ctx, senderID, recipientID, externalID)
	return args.Bool(0), args.Error(1)
}

// MockConnectionRepository mocks the ConnectionRepository interface
type MockConnectionRepository struct {
	mock.Mock
}

func (m *MockConnectionRepository) Connect(ctx context.Context, userID, friendID string) error {
	args := m.Called(ctx, userID, friendID)
	return args.Error(0)
}

func (m *MockConnectionRepository) ListFriends(ctx context.Context, userID string) ([]models.Connection, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Connection), args.Error(1)
}

func (m *MockConnectionRepository) Remove(ctx context.Context, userID, friendID string) error {
	args := m.Called(ctx, userID, friendID)
	return args.Error(0)
}

func (m *MockConnectionRepository) AreFriends(ctx context.Context, userID, friendID string) (bool, error) {
	args := m.Called(ctx, userID, friendID)
	return args.Bool(0), args.Error(1)
}

func TestSend_ToSelf(t *testing.T) {
	svc := NewBookRecommendationService(new(MockBookRecommendationRepository), new(MockConnectionRepository), nil, nil)

	_, err := svc.Send(context.Background(), "u1", SendRecommendationInput{
		RecipientIDs: []string{"u1"},
		ExternalID:   "OL123W",
		Title:        "Dune",
	})
	assert.ErrorIs(t, err, ErrSelfRecommend)
}

func TestSend_NotFriends(t *testing.T) {
	conns := new(MockConnectionRepository)
	svc := NewBookRecommendationService(new(MockBookRecommendationRepository), conns, nil, nil)

	conns.On("AreFriends", mock.Anything, "u1", "u2").Return(false, nil)

	_, err := svc.Send(context.Background(), "u1", SendRecommendationInput{
		RecipientIDs: []string{"u2"},
		ExternalID:   "OL123W",
		Title:        "Dune",
	})
	assert.ErrorIs(t, err, ErrNotFriends)
}

func TestSend_DuplicatePending(t *testing.T) {
	repo := new(MockBookRecommendationRepository)
	conns := new(MockConnectionRepository)
	svc := NewBookRecommendationService(repo, conns, nil, nil)

	conns.On("AreFriends", mock.Anything, "u1", "u2").Return(true, nil)
	repo.On("HasPending", mock.Anything, "u1", "u2", "OL123W").Return(true, nil)

	_, err := svc.Send(context.Background(), "u1", SendRecommendationInput{
		RecipientIDs: []string{"u2"},
		ExternalID:   "OL123W",
		Title:        "Dune",
	})
	assert.ErrorIs(t, err, ErrDuplicatePending)
	repo.AssertNotCalled(t, "Create")
}

func TestSend_DuplicateRace(t *testing.T) {
	repo := new(MockBookRecommendationRepository)
	conns := new(MockConnectionRepository)
	svc := NewBookRecommendationService(repo, conns, nil, nil)

	conns.On("AreFriends", mock.Anything, "u1", "u2").Return(true, nil)
	repo.On("HasPending", mock.Anything, "u1", "u2", "OL123W").Return(false, nil)
	// the partial unique index catches what the pre-check missed
	repo.On("Create", mock.Anything, mock.AnythingOfType("*models.BookRecommendation")).Return(repository.ErrDuplicate)

	_, err := svc.Send(context.Background(), "u1", SendRecommendationInput{
		RecipientIDs: []string{"u2"},
		ExternalID:   "OL123W",
		Title:        "Dune",
	})
	assert.ErrorIs(t, err, ErrDuplicatePending)
}

func TestSend_FanOutUsesBookColumns(t *testing.T) {
	repo := new(MockBookRecommendationRepository)
	conns := new(MockConnectionRepository)
	bus := events.NewBus(0)
	defer bus.Close()
	svc := NewBookRecommendationService(repo, conns, nil, bus)

	for _, recipient := range []string{"u2", "u3"} {
		conns.On("AreFriends", mock.Anything, "u1", recipient).Return(true, nil)
		repo.On("HasPending", mock.Anything, "u1", recipient, "OL123W").Return(false, nil)
	}
	repo.On("Create", mock.Anything, mock.MatchedBy(func(rec *models.BookRecommendation) bool {
		return rec.Status == "pending" && rec.SenderNote != nil && *rec.SenderNote == "loved it"
	})).Return(nil).Twice()

	created, err := svc.Send(context.Background(), "u1", SendRecommendationInput{
		RecipientIDs:  []string{"u2", "u3"},
		ExternalID:    "OL123W",
		Title:         "Dune",
		SenderComment: strPtr("loved it"),
	})
	assert.NoError(t, err)
	assert.Len(t, created, 2)
	assert.Equal(t, shared.StatusPending, created[0].Status)
	assert.Equal(t, shared.KindBooks, created[0].Kind)
	repo.AssertExpectations(t)

	backlog := bus.Backlog()
	assert.Len(t, backlog, 2)
	assert.Equal(t, events.TypeNewRecommendation, backlog[0].Type)
}

func TestInbox_HidesPendingSenderComment(t *testing.T) {
	repo := new(MockBookRecommendationRepository)
	svc := NewBookRecommendationService(repo, new(MockConnectionRepository), nil, nil)

	rows := []models.BookRecommendation{
		{ID: 1, SenderID: "u2", RecipientID: "u1", ExternalID: "OL1W", Title: "Dune",
			Status: "pending", SenderNote: strPtr("spoilers inside"), SentAt: time.Now()},
		{ID: 2, SenderID: "u2", RecipientID: "u1", ExternalID: "OL2W", Title: "Hyperion",
			Status: "read", SenderNote: strPtr("the shrike!"), SentAt: time.Now()},
	}
	repo.On("Inbox", mock.Anything, "u1").Return(rows, nil)

	page, err := svc.Inbox(context.Background(), "u1", ListQuery{})
	assert.NoError(t, err)
	assert.Equal(t, 2, page.TotalItems)

	for _, rec := range page.Items {
		switch rec.ID {
		case 1:
			assert.Equal(t, shared.StatusPending, rec.Status)
			assert.Nil(t, rec.SenderComment)
		case 2:
			assert.Equal(t, shared.StatusConsumed, rec.Status)
			assert.NotNil(t, rec.SenderComment)
		}
	}
}

func TestInbox_StatusFilterUsesUniformVocabulary(t *testing.T) {
	repo := new(MockBookRecommendationRepository)
	svc := NewBookRecommendationService(repo, new(MockConnectionRepository), nil, nil)

	rows := []models.BookRecommendation{
		{ID: 1, SenderID: "u2", RecipientID: "u1", ExternalID: "OL1W", Title: "Dune", Status: "pending"},
		{ID: 2, SenderID: "u2", RecipientID: "u1", ExternalID: "OL2W", Title: "Hyperion", Status: "read"},
		{ID: 3, SenderID: "u2", RecipientID: "u1", ExternalID: "OL3W", Title: "Ubik", Status: "hit"},
	}
	repo.On("Inbox", mock.Anything, "u1").Return(rows, nil)

	page, err := svc.Inbox(context.Background(), "u1", ListQuery{Status: shared.StatusConsumed})
	assert.NoError(t, err)
	assert.Equal(t, 1, page.TotalItems)
	assert.Equal(t, "Hyperion", page.Items[0].Title)
}

func TestUpdateStatus_ConsumedWritesKindColumns(t *testing.T) {
	repo := new(MockBookRecommendationRepository)
	svc := NewBookRecommendationService(repo, new(MockConnectionRepository), nil, nil)

	updated := &models.BookRecommendation{
		ID: 1, SenderID: "u2", RecipientID: "u1", ExternalID: "OL1W", Title: "Dune",
		Status: "read", Note: strPtr("fantastic"),
	}
	repo.On("Update", mock.Anything, int64(1), "u1", mock.MatchedBy(func(fields map[string]any) bool {
		if fields["status"] != "read" {
			return false
		}
		if fields["note"] != "fantastic" {
			return false
		}
		_, hasReadAt := fields["read_at"]
		return hasReadAt
	})).Return(updated, nil)

	rec, err := svc.UpdateStatus(context.Background(), "u1", 1, UpdateRecommendationInput{
		Status:  shared.StatusConsumed,
		Comment: strPtr("fantastic"),
	})
	assert.NoError(t, err)
	assert.Equal(t, shared.StatusConsumed, rec.Status)
	repo.AssertExpectations(t)
}

func TestUpdateStatus_NotifiesSenderWithActorName(t *testing.T) {
	repo := new(MockBookRecommendationRepository)
	bus := events.NewBus(0)
	svc := NewBookRecommendationService(repo, new(MockConnectionRepository), nil, bus)

	updated := &models.BookRecommendation{
		ID: 1, SenderID: "u2", RecipientID: "u1", ExternalID: "OL1W", Title: "Dune",
		Status:    "read",
		Recipient: &models.User{ID: "u1", Username: "frodo", DisplayName: "Frodo"},
	}
	repo.On("Update", mock.Anything, int64(1), "u1", mock.Anything).Return(updated, nil)

	_, err := svc.UpdateStatus(context.Background(), "u1", 1, UpdateRecommendationInput{
		Status: shared.StatusConsumed,
	})
	assert.NoError(t, err)

	backlog := bus.Backlog()
	assert.Len(t, backlog, 1)
	assert.Equal(t, events.TypeRecommendationUpdate, backlog[0].Type)
	assert.Equal(t, "u2", backlog[0].UserID)
	assert.Equal(t, `Frodo marked "Dune" as consumed`, backlog[0].Message)
}

func TestUpdateStatus_RejectsPendingAndUnknown(t *testing.T) {
	svc := NewBookRecommendationService(new(MockBookRecommendationRepository), new(MockConnectionRepository), nil, nil)

	_, err := svc.UpdateStatus(context.Background(), "u1", 1, UpdateRecommendationInput{Status: shared.StatusPending})
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = svc.UpdateStatus(context.Background(), "u1", 1, UpdateRecommendationInput{Status: "binged"})
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestUpdateStatus_NotFound(t *testing.T) {
	repo := new(MockBookRecommendationRepository)
	svc := NewBookRecommendationService(repo, new(MockConnectionRepository), nil, nil)

	repo.On("Update", mock.Anything, int64(42), "u1", mock.Anything).Return(nil, repository.ErrNotFound)

	_, err := svc.UpdateStatus(context.Background(), "u1", 42, UpdateRecommendationInput{Status: shared.StatusHit})
	assert.ErrorIs(t, err, ErrRecommendationNotFound)
}

func TestDelete_SenderRetracts(t *testing.T) {
	repo := new(MockBookRecommendationRepository)
	svc := NewBookRecommendationService(repo, new(MockConnectionRepository), nil, nil)

	row := &models.BookRecommendation{ID: 1, SenderID: "u1", RecipientID: "u2", ExternalID: "OL1W", Title: "Dune", Status: "pending"}
	repo.On("Delete", mock.Anything, int64(1), "u1").Return(row, nil)

	rec, err := svc.Delete(context.Background(), "u1", 1)
	assert.NoError(t, err)
	assert.Equal(t, "Dune", rec.Title)
}

func TestSummary_AggregatesAcrossKinds(t *testing.T) {
	bookRepo := new(MockBookRecommendationRepository)
	conns := new(MockConnectionRepository)
	bookSvc := NewBookRecommendationService(bookRepo, conns, nil, nil)

	registry := RecommendationRegistry{shared.KindBooks: bookSvc}
	summarySvc := NewSummaryService(registry, conns)

	rows := []models.BookRecommendation{
		{ID: 1, SenderID: "u2", RecipientID: "u1", ExternalID: "OL1W", Title: "Dune", Status: "pending",
			Sender: &models.User{ID: "u2", Username: "sam", DisplayName: "Sam"}},
		{ID: 2, SenderID: "u2", RecipientID: "u1", ExternalID: "OL2W", Title: "Hyperion", Status: "hit",
			Sender: &models.User{ID: "u2", Username: "sam", DisplayName: "Sam"}},
	}
	bookRepo.On("Inbox", mock.Anything, "u1").Return(rows, nil)
	conns.On("ListFriends", mock.Anything, "u1").Return([]models.Connection{
		{UserID: "u1", FriendID: "u2", Friend: &models.User{ID: "u2", Username: "sam", DisplayName: "Samwise"}},
	}, nil)

	summaries, err := summarySvc.Summary(context.Background(), "u1")
	assert.NoError(t, err)
	assert.Len(t, summaries, 1)
	assert.Equal(t, "u2", summaries[0].SenderID)
	// the friend list's display name wins over the row's
	assert.Equal(t, "Samwise", summaries[0].SenderName)
	assert.Equal(t, 1, summaries[0].Pending)
	assert.Equal(t, 1, summaries[0].Hit)
	assert.Equal(t, 2, summaries[0].Total)
}
