package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var ErrUserNotFound = errors.New("user not found")

type Repository interface {
	createUser(ctx context.Context, user *User) error
	getUserByEmail(ctx context.Context, email string) (*User, error)
	getUserByID(ctx context.Context, id string) (*User, error)
	findIdentityByEmail(ctx context.Context, email string) (externalID string, id string, err error)
	listForNewsDelivery(ctx context.Context) ([]NewsRecipient, error)
}

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) Repository {
	return &userRepository{
		db: db,
	}
}

func (r *userRepository) createUser(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (id, email, full_name, password_hash, country, investment_goals, risk_tolerance, preferred_industry, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
	`
	id := uuid.New()
	_, err := r.db.ExecContext(ctx, query,
		id, user.Email, user.FullName, user.PasswordHash,
		user.Country, user.InvestmentGoals, user.RiskTolerance, user.PreferredIndustry,
	)
	if err != nil {
		return fmt.Errorf("could not create user: %v", err)
	}

	user.ID = id.String()
	return nil
}

func (r *userRepository) getUserByEmail(ctx context.Context, email string) (*User, error) {
	query := `
		SELECT id, COALESCE(external_id, ''), email, full_name, password_hash, country, investment_goals, risk_tolerance, preferred_industry, created_at, updated_at
		FROM users
		WHERE email = $1
	`

	var user User
	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&user.ID, &user.ExternalID, &user.Email, &user.FullName, &user.PasswordHash,
		&user.Country, &user.InvestmentGoals, &user.RiskTolerance, &user.PreferredIndustry,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("could not find user: %v", err)
	}

	return &user, nil
}

func (r *userRepository) getUserByID(ctx context.Context, id string) (*User, error) {
	query := `
		SELECT id, COALESCE(external_id, ''), email, full_name, password_hash, country, investment_goals, risk_tolerance, preferred_industry, created_at, updated_at
		FROM users
		WHERE id::text = $1 OR external_id = $1
	`

	var user User
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID, &user.ExternalID, &user.Email, &user.FullName, &user.PasswordHash,
		&user.Country, &user.InvestmentGoals, &user.RiskTolerance, &user.PreferredIndustry,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("could not find user: %v", err)
	}

	return &user, nil
}

// findIdentityByEmail projects only the identifier columns of the canonical
// user record.
func (r *userRepository) findIdentityByEmail(ctx context.Context, email string) (string, string, error) {
	query := `
		SELECT COALESCE(external_id, ''), id
		FROM users
		WHERE email = $1
	`

	var externalID, id string
	err := r.db.QueryRowContext(ctx, query, email).Scan(&externalID, &id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", "", ErrUserNotFound
		}
		return "", "", fmt.Errorf("could not look up user identity: %v", err)
	}

	return externalID, id, nil
}

func (r *userRepository) listForNewsDelivery(ctx context.Context) ([]NewsRecipient, error) {
	query := `
		SELECT COALESCE(NULLIF(external_id, ''), id::text), email, full_name
		FROM users
		WHERE email <> '' AND full_name <> ''
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("could not list users for news delivery: %v", err)
	}
	defer rows.Close()

	var recipients []NewsRecipient
	for rows.Next() {
		var rec NewsRecipient
		if err := rows.Scan(&rec.ID, &rec.Email, &rec.Name); err != nil {
			return nil, err
		}
		recipients = append(recipients, rec)
	}
	return recipients, rows.Err()
}
