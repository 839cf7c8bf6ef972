package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/linkmarket/link-server/internal/domain"
	"github.com/linkmarket/link-server/internal/store"
)

const commentColumns = `c.id, c.listing_id, c.author_id,
	trim(u.first_name || ' ' || u.last_name), c.content, c.created_at, c.updated_at`

func scanComment(row scanner) (*domain.Comment, error) {
	var (
		c         domain.Comment
		createdAt string
		updatedAt string
	)
	if err := row.Scan(&c.ID, &c.ListingID, &c.AuthorID, &c.AuthorName, &c.Content, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	var err error
	if c.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if c.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateComment inserts a comment and the owner notification together.
// A nil notification inserts the comment alone.
func (s *Store) CreateComment(ctx context.Context, c *domain.Comment, n *domain.Notification) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO comments (id, listing_id, author_id, content, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			c.ID, c.ListingID, c.AuthorID, c.Content, formatTime(c.CreatedAt), formatTime(c.UpdatedAt))
		if err != nil {
			return fmt.Errorf("insert comment: %w", err)
		}
		if n == nil {
			return nil
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO notifications (id, user_id, type, message, related_id, is_read, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			n.ID, n.UserID, string(n.Type), n.Message, n.RelatedID, boolToInt(n.IsRead), formatTime(n.CreatedAt))
		if err != nil {
			return fmt.Errorf("insert notification: %w", err)
		}
		return nil
	})
}

// GetComment returns a comment with its author name.
func (s *Store) GetComment(ctx context.Context, id string) (*domain.Comment, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+commentColumns+`
		FROM comments c JOIN users u ON u.id = c.author_id
		WHERE c.id = ?`, id)
	c, err := scanComment(row)
	if err != nil {
		return nil, notFound(err, "comment")
	}
	return c, nil
}

// UpdateComment rewrites a comment's content.
func (s *Store) UpdateComment(ctx context.Context, c *domain.Comment) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE comments SET content = ?, updated_at = ? WHERE id = ?`,
		c.Content, formatTime(c.UpdatedAt), c.ID)
	if err != nil {
		return err
	}
	return requireAffected(res, "comment")
}

// DeleteComment removes a comment.
func (s *Store) DeleteComment(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM comments WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireAffected(res, "comment")
}

// ListComments returns a listing's comments, newest first.
func (s *Store) ListComments(ctx context.Context, listingID string, page store.Page) ([]*domain.Comment, error) {
	page = page.Normalize()
	rows, err := s.db.QueryContext(ctx, `SELECT `+commentColumns+`
		FROM comments c JOIN users u ON u.id = c.author_id
		WHERE c.listing_id = ?
		ORDER BY c.created_at DESC, c.id
		LIMIT ? OFFSET ?`, listingID, page.Limit, page.Offset)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	comments := []*domain.Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// ListNotifications returns a user's notifications, newest first, unread first on ties.
func (s *Store) ListNotifications(ctx context.Context, userID string, page store.Page) ([]*domain.Notification, error) {
	page = page.Normalize()
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, type, message, related_id, is_read, created_at
		FROM notifications
		WHERE user_id = ?
		ORDER BY created_at DESC, is_read ASC, id
		LIMIT ? OFFSET ?`, userID, page.Limit, page.Offset)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	out := []*domain.Notification{}
	for rows.Next() {
		var (
			n         domain.Notification
			typ       string
			createdAt string
		)
		if err := rows.Scan(&n.ID, &n.UserID, &typ, &n.Message, &n.RelatedID, &n.IsRead, &createdAt); err != nil {
			return nil, err
		}
		n.Type = domain.NotificationType(typ)
		if n.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		out = append(out, &n)
	}
	return out, rows.Err()
}

// MarkNotificationRead flags a notification read. Another user's notification
// is reported as not found.
func (s *Store) MarkNotificationRead(ctx context.Context, id, userID string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE notifications SET is_read = 1 WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return err
	}
	return requireAffected(res, "notification")
}
