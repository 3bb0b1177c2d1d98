package service

import (
	"context"
	"errors"
	"time"

	"npcfinder/internal/cache"
	"npcfinder/internal/events"
	"npcfinder/internal/http-api/repository"
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrCannotFriendSelf = errors.New("cannot add yourself as a friend")
	ErrFriendNotFound   = errors.New("friend connection not found")
)

// Friend is the public view of a connection.
type Friend struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	ConnectedAt time.Time `json:"connected_at"`
}

type FriendService interface {
	Connect(ctx context.Context, userID, friendUsername string) (*Friend, error)
	List(ctx context.Context, userID string) ([]Friend, error)
	Remove(ctx context.Context, userID, friendID string) error
}

type friendService struct {
	userRepo repository.UserRepository
	connRepo repository.ConnectionRepository
	cache    *cache.QueryCache
	bus      *events.Bus
}

func NewFriendService(userRepo repository.UserRepository, connRepo repository.ConnectionRepository, qc *cache.QueryCache, bus *events.Bus) FriendService {
	return &friendService{
		userRepo: userRepo,
		connRepo: connRepo,
		cache:    qc,
		bus:      bus,
	}
}

// Connect adds a friend by username. Connecting twice is a no-op rather
// than an error.
func (s *friendService) Connect(ctx context.Context, userID, friendUsername string) (*Friend, error) {
	friend, err := s.userRepo.FindByUsername(ctx, friendUsername)
	if err != nil {
		return nil, ErrUserNotFound
	}
	if friend.ID == userID {
		return nil, ErrCannotFriendSelf
	}

	if err := s.connRepo.Connect(ctx, userID, friend.ID); err != nil {
		return nil, err
	}

	s.cache.InvalidateNamespace(ctx, cache.FriendsKey(userID))
	s.cache.InvalidateNamespace(ctx, cache.FriendsKey(friend.ID))

	if s.bus != nil {
		user, err := s.userRepo.FindByID(ctx, userID)
		name := userID
		if err == nil {
			name = displayName(user.DisplayName, user.Username)
		}
		s.bus.Publish(events.Event{
			Type:    events.TypeFriendConnected,
			UserID:  friend.ID,
			ActorID: userID,
			Message: name + " connected with you",
			At:      time.Now(),
		})
	}

	return &Friend{
		ID:          friend.ID,
		Username:    friend.Username,
		DisplayName: displayName(friend.DisplayName, friend.Username),
		ConnectedAt: time.Now(),
	}, nil
}

func (s *friendService) List(ctx context.Context, userID string) ([]Friend, error) {
	key := cache.FriendsKey(userID)
	var friends []Friend
	if _, ok := s.cache.Get(ctx, key, &friends); ok {
		return friends, nil
	}

	conns, err := s.connRepo.ListFriends(ctx, userID)
	if err != nil {
		return nil, err
	}
	friends = make([]Friend, 0, len(conns))
	for _, conn := range conns {
		f := Friend{ID: conn.FriendID, ConnectedAt: conn.CreatedAt}
		if conn.Friend != nil {
			f.Username = conn.Friend.Username
			f.DisplayName = displayName(conn.Friend.DisplayName, conn.Friend.Username)
		}
		friends = append(friends, f)
	}
	s.cache.Set(ctx, key, friends)
	return friends, nil
}

func (s *friendService) Remove(ctx context.Context, userID, friendID string) error {
	if err := s.connRepo.Remove(ctx, userID, friendID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrFriendNotFound
		}
		return err
	}
	s.cache.InvalidateNamespace(ctx, cache.FriendsKey(userID))
	s.cache.InvalidateNamespace(ctx, cache.FriendsKey(friendID))
	return nil
}

func displayName(display, username string) string {
	if display != "" {
		return display
	}
	return username
}
