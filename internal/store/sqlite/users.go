package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/linkmarket/link-server/internal/domain"
	"github.com/linkmarket/link-server/internal/normalize"
	"github.com/linkmarket/link-server/internal/store"
	"github.com/linkmarket/link-server/internal/store/query"
)

// userColumns is the ordered list of columns selected in user queries.
// Must match the scan order in scanUser.
const userColumns = `id, created_at, updated_at, first_name, last_name, email,
	whatsapp_number, password_hash, user_type, account_type,
	country, city, neighborhood, gender, age, products_sold`

func scanUser(row scanner) (*domain.User, error) {
	var (
		u         domain.User
		createdAt string
		updatedAt string
		email     *string
		userType  string
		acctType  string
	)
	err := row.Scan(
		&u.ID, &createdAt, &updatedAt, &u.FirstName, &u.LastName, &email,
		&u.WhatsAppNumber, &u.PasswordHash, &userType, &acctType,
		&u.Country, &u.City, &u.Neighborhood, &u.Gender, &u.Age, &u.ProductsSold,
	)
	if err != nil {
		return nil, err
	}
	if email != nil {
		u.Email = *email
	}
	u.UserType = domain.UserType(userType)
	u.AccountType = domain.AccountType(acctType)

	if u.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if u.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser inserts a new user.
// Returns store.ErrAlreadyExists if the WhatsApp number or email is taken.
func (s *Store) CreateUser(ctx context.Context, u *domain.User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`, whatsapp_digits)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, formatTime(u.CreatedAt), formatTime(u.UpdatedAt), u.FirstName, u.LastName,
		nullString(strings.TrimSpace(u.Email)),
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
// Returns store.ErrNotFound if the user does not exist.
func (s *Store) GetUser(ctx context.Context, id string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if err != nil {
		return nil, notFound(err, "user")
	}
	return u, nil
}

// GetUserByWhatsApp looks a user up by the digits of their WhatsApp number.
func (s *Store) GetUserByWhatsApp(ctx context.Context, number string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE whatsapp_digits = ?`, normalize.Phone(number))
	u, err := scanUser(row)
	if err != nil {
		return nil, notFound(err, "user")
	}
	return u, nil
}

// UpdateUser performs a full row update on an existing user.
func (s *Store) UpdateUser(ctx context.Context, u *domain.User) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users SET
			updated_at = ?, first_name = ?, last_name = ?, email = ?,
			whatsapp_number = ?, whatsapp_digits = ?, password_hash = ?,
			user_type = ?, account_type = ?, country = ?, city = ?, neighborhood = ?,
			gender = ?, age = ?, products_sold = ?
		WHERE id = ?`,
		formatTime(u.UpdatedAt), u.FirstName, u.LastName, nullString(strings.TrimSpace(u.Email)),
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
	return requireAffected(res, "user")
}

// DeleteUser removes a user. Listings, interactions, comments and
// notifications go with it through foreign key cascades.
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireAffected(res, "user")
}

// SearchSellers matches sellers by products_sold keyword and location substrings,
// best similarity first.
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
			%s AS score
		FROM users u%s
		ORDER BY score DESC, u.created_at DESC
		LIMIT %d`, score, b.Clause(), store.SearchLimit)

	rows, err := s.db.QueryContext(ctx, sqlText, b.Args()...)
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
