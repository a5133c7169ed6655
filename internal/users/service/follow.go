package service

import (
	"context"
	"errors"

	"github.com/chirpnet/chirp/internal/users/domain"
	"github.com/chirpnet/chirp/internal/users/store"
)

var ErrSelfFollow = errors.New("self_follow")

// FollowService manages the follow graph.
type FollowService struct {
	Store store.Store
}

// Follow adds an edge from follower to followee. Following someone already
// followed is not an error; the returned flag reports that case.
func (s *FollowService) Follow(ctx context.Context, followerID, followeeID string) (already bool, err error) {
	if followerID == followeeID {
		return false, ErrSelfFollow
	}

	if _, err := s.Store.Users().GetUserByID(ctx, followeeID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, ErrUserNotFound
		}
		return false, err
	}

	err = s.Store.Follows().CreateFollow(ctx, domain.Follow{
		FollowerID: followerID,
		FolloweeID: followeeID,
	})
	if errors.Is(err, store.ErrAlreadyExists) {
		return true, nil
	}
	return false, err
}

// Unfollow removes the edge. Unfollowing someone not followed is not an
// error; the returned flag reports that case.
func (s *FollowService) Unfollow(ctx context.Context, followerID, followeeID string) (already bool, err error) {
	err = s.Store.Follows().DeleteFollow(ctx, followerID, followeeID)
	if errors.Is(err, store.ErrNotFound) {
		return true, nil
	}
	return false, err
}
