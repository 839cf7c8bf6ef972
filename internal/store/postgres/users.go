package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/linkmarket/link-server/internal/domain"
	"github.com/linkmarket/link-server/internal/normalize"
	"github.com/linkmarket/link-server/internal/store"
	"github.com/linkmarket/link-server/internal/store/query"
)

const userColumns = `id, created_at, updated_at, first_name, last_name, email,
	whatsapp_number, password_hash, user_type, account_type,
	country, city, neighborhood, gender, age, products_sold`

func scanUser(row pgx.Row) (*domain.User, error) {
	var (
		u        domain.User
		email    *string
		userType string
		acctType string
	)
	err := row.Scan(
		&u.ID, &u.CreatedAt, &u.UpdatedAt, &u.FirstName, &u.LastName, &email,
		&u.WhatsAppNumber, &u.PasswordHash, &userType, &acctType,
		&u.Country, &u.City, &u.Neighborhood, &u.Gender, &u.Age, &u.ProductsSold,
	)
	if err != nil {
		return nil, err
	}
	u.Email = deref(email)
	u.UserType = domain.UserType(userType)
	u.AccountType = domain.AccountType(acctType)
	u.CreatedAt, u.UpdatedAt = u.CreatedAt.UTC(), u.UpdatedAt.UTC()
	return &u, nil
}

// CreateUser inserts a new user.
func (s *Store) CreateUser(ctx context.Context, u *domain.User) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO users (`+userColumns+`, whatsapp_digits)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		u.ID, u.CreatedAt, u.UpdatedAt, u.FirstName, u.LastName,
		nullIfEmpty(strings.TrimSpace(u.Email)),
		u.WhatsAppNumber, u.PasswordHash, string(u.UserType), string(u.AccountType),
		u.Country, u.City, u.Neighborhood, u.Gender, u.Age, u.ProductsSold,
		normalize.Phone(u.WhatsAppNumber),
	)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists.WithMessage("whatsapp number or email already registered")
	}
	return err
}

// GetUser retrieves a user by ID.
func (s *Store) GetUser(ctx context.Context, id string) (*domain.User, error) {
	u, err := scanUser(s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err, "user")
	}
	return u, nil
}

// GetUserByWhatsApp looks a user up by the digits of their WhatsApp number.
func (s *Store) GetUserByWhatsApp(ctx context.Context, number string) (*domain.User, error) {
	u, err := scanUser(s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE whatsapp_digits = $1`, normalize.Phone(number)))
	if err != nil {
		return nil, notFound(err, "user")
	}
	return u, nil
}

// UpdateUser performs a full row update on an existing user.
func (s *Store) UpdateUser(ctx context.Context, u *domain.User) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE users SET
			updated_at = $1, first_name = $2, last_name = $3, email = $4,
			whatsapp_number = $5, whatsapp_digits = $6, password_hash = $7,
			user_type = $8, account_type = $9, country = $10, city = $11, neighborhood = $12,
			gender = $13, age = $14, products_sold = $15
		WHERE id = $16`,
		u.UpdatedAt, u.FirstName, u.LastName, nullIfEmpty(strings.TrimSpace(u.Email)),
		u.WhatsAppNumber, normalize.Phone(u.WhatsAppNumber), u.PasswordHash,
		string(u.UserType), string(u.AccountType), u.Country, u.City, u.Neighborhood,
		u.Gender, u.Age, u.ProductsSold,
		u.ID,
	)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists.WithMessage("whatsapp number or email already registered")
	}
	if err != nil {
		return err
	}
	return requireAffected(tag, "user")
}

// DeleteUser removes a user and everything that cascades from it.
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireAffected(tag, "user")
}

// SearchSellers matches sellers by products_sold keyword and location substrings.
func (s *Store) SearchSellers(ctx context.Context, q store.SellerSearch) ([]domain.SellerSummary, error) {
	b := query.New(dialect)
	score := b.Score([]string{"u.products_sold"}, q.Keyword)
	b.Where("u.user_type = ?", string(domain.UserTypeSeller)).
		Fuzzy([]string{"u.products_sold"}, q.Keyword).
		Contains("u.country", q.Location.Country).
		Contains("u.city", q.Location.City).
		Contains("u.neighborhood", q.Location.Neighborhood)

	sqlText := fmt.Sprintf(`
		SELECT u.id, u.first_name, u.last_name, u.account_type, u.whatsapp_number,
			u.country, u.city, u.neighborhood, u.products_sold,
			(SELECT COUNT(*) FROM listings l WHERE l.seller_id = u.id) AS listing_count,
			(%s)::float8 AS score
		FROM users u%s
		ORDER BY score DESC, u.created_at DESC
		LIMIT %d`, score, b.Clause(), store.SearchLimit)

	rows, err := s.pool.Query(ctx, sqlText, b.Args()...)
	if err != nil {
		return nil, fmt.Errorf("search sellers: %w", err)
	}
	defer rows.Close()

	sellers := []domain.SellerSummary{}
	for rows.Next() {
		var (
			sum      domain.SellerSummary
			acctType string
		)
		if err := rows.Scan(&sum.ID, &sum.FirstName, &sum.LastName, &acctType, &sum.WhatsAppNumber,
			&sum.Country, &sum.City, &sum.Neighborhood, &sum.ProductsSold,
			&sum.ListingCount, &sum.Similarity); err != nil {
			return nil, err
		}
		sum.AccountType = domain.AccountType(acctType)
		sellers = append(sellers, sum)
	}
	return sellers, rows.Err()
}
