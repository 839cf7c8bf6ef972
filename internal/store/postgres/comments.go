package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/linkmarket/link-server/internal/domain"
	"github.com/linkmarket/link-server/internal/store"
)

const commentColumns = `c.id, c.listing_id, c.author_id,
	btrim(u.first_name || ' ' || u.last_name), c.content, c.created_at, c.updated_at`

func scanComment(row pgx.Row) (*domain.Comment, error) {
	var c domain.Comment
	if err := row.Scan(&c.ID, &c.ListingID, &c.AuthorID, &c.AuthorName, &c.Content, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	c.CreatedAt, c.UpdatedAt = c.CreatedAt.UTC(), c.UpdatedAt.UTC()
	return &c, nil
}

// CreateComment inserts a comment and the owner notification together.
func (s *Store) CreateComment(ctx context.Context, c *domain.Comment, n *domain.Notification) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO comments (id, listing_id, author_id, content, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			c.ID, c.ListingID, c.AuthorID, c.Content, c.CreatedAt, c.UpdatedAt)
		if err != nil {
			return fmt.Errorf("insert comment: %w", err)
		}
		if n == nil {
			return nil
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO notifications (id, user_id, type, message, related_id, is_read, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			n.ID, n.UserID, string(n.Type), n.Message, n.RelatedID, n.IsRead, n.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert notification: %w", err)
		}
		return nil
	})
}

// GetComment returns a comment with its author name.
func (s *Store) GetComment(ctx context.Context, id string) (*domain.Comment, error) {
	c, err := scanComment(s.pool.QueryRow(ctx, `SELECT `+commentColumns+`
		FROM comments c JOIN users u ON u.id = c.author_id
		WHERE c.id = $1`, id))
	if err != nil {
		return nil, notFound(err, "comment")
	}
	return c, nil
}

// UpdateComment rewrites a comment's content.
func (s *Store) UpdateComment(ctx context.Context, c *domain.Comment) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE comments SET content = $1, updated_at = $2 WHERE id = $3`, c.Content, c.UpdatedAt, c.ID)
	if err != nil {
		return err
	}
	return requireAffected(tag, "comment")
}

// DeleteComment removes a comment.
func (s *Store) DeleteComment(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireAffected(tag, "comment")
}

// ListComments returns a listing's comments, newest first.
func (s *Store) ListComments(ctx context.Context, listingID string, page store.Page) ([]*domain.Comment, error) {
	page = page.Normalize()
	rows, err := s.pool.Query(ctx, `SELECT `+commentColumns+`
		FROM comments c JOIN users u ON u.id = c.author_id
		WHERE c.listing_id = $1
		ORDER BY c.created_at DESC, c.id
		LIMIT $2 OFFSET $3`, listingID, page.Limit, page.Offset)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.Comment, error) {
		return scanComment(row)
	})
}

// ListNotifications returns a user's notifications, newest first, unread first on ties.
func (s *Store) ListNotifications(ctx context.Context, userID string, page store.Page) ([]*domain.Notification, error) {
	page = page.Normalize()
	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, type, message, related_id, is_read, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC, is_read ASC, id
		LIMIT $2 OFFSET $3`, userID, page.Limit, page.Offset)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.Notification, error) {
		var (
			n   domain.Notification
			typ string
		)
		if err := row.Scan(&n.ID, &n.UserID, &typ, &n.Message, &n.RelatedID, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, err
		}
		n.Type = domain.NotificationType(typ)
		n.CreatedAt = n.CreatedAt.UTC()
		return &n, nil
	})
}

// MarkNotificationRead flags a notification read for its owner.
func (s *Store) MarkNotificationRead(ctx context.Context, id, userID string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	return requireAffected(tag, "notification")
}
