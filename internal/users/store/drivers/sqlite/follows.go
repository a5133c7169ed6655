package sqlite

import (
	"context"
	"time"

	"github.com/chirpnet/chirp/internal/users/domain"
	"github.com/chirpnet/chirp/internal/users/store"
)

type followsRepo struct {
	db dbtx
}

func (r *followsRepo) CreateFollow(ctx context.Context, f domain.Follow) error {
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO follows (follower_id, followee_id, created_at)
		VALUES (?, ?, ?)`,
		f.FollowerID, f.FolloweeID, f.CreatedAt,
	)
	return mapConstraint(err)
}

func (r *followsRepo) GetFollow(ctx context.Context, followerID, followeeID string) (domain.Follow, error) {
	var f domain.Follow
	err := r.db.QueryRowContext(ctx, `
		SELECT follower_id, followee_id, created_at
		FROM follows WHERE follower_id = ? AND followee_id = ?`,
		followerID, followeeID,
	).Scan(&f.FollowerID, &f.FolloweeID, &f.CreatedAt)
	if err != nil {
		return domain.Follow{}, mapNotFound(err)
	}
	return f, nil
}

func (r *followsRepo) DeleteFollow(ctx context.Context, followerID, followeeID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM follows WHERE follower_id = ? AND followee_id = ?`,
		followerID, followeeID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *followsRepo) CountFollowers(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM follows WHERE followee_id = ?`, userID).Scan(&n)
	return n, err
}

func (r *followsRepo) CountFollowing(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM follows WHERE follower_id = ?`, userID).Scan(&n)
	return n, err
}

var _ store.Follows = (*followsRepo)(nil)
