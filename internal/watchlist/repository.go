package watchlist

import (
	"context"
	"database/sql"
	"time"
)

// Entry is the persisted watchlist row, unique per (user, symbol).
type Entry struct {
	UserID  string    `json:"user_id"`
	Symbol  string    `json:"symbol"`
	Company string    `json:"company"`
	AddedAt time.Time `json:"added_at"`
}

type Repository interface {
	listSymbols(ctx context.Context, userID string) ([]string, error)
	exists(ctx context.Context, userID, symbol string) (bool, error)
	upsert(ctx context.Context, userID, symbol, company string) error
	delete(ctx context.Context, userID, symbol string) error
	listAll(ctx context.Context, userID string) ([]Entry, error)
}

type watchlistRepository struct {
	db *sql.DB
}

func NewWatchlistRepository(db *sql.DB) Repository {
	return &watchlistRepository{db: db}
}

func (r *watchlistRepository) listSymbols(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT symbol FROM watchlist_entries WHERE user_id = $1
    `, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var symbols []string
	for rows.Next() {
		var symbol string
		if err := rows.Scan(&symbol); err != nil {
			return nil, err
		}
		symbols = append(symbols, symbol)
	}
	return symbols, rows.Err()
}

func (r *watchlistRepository) exists(ctx context.Context, userID, symbol string) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
        SELECT COUNT(1) FROM watchlist_entries WHERE user_id = $1 AND symbol = $2
    `, userID, symbol).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// upsert inserts the row or, on conflict, updates only the company name.
// added_at and the identity columns are written once on first insert and
// never touched again.
func (r *watchlistRepository) upsert(ctx context.Context, userID, symbol, company string) error {
	_, err := r.db.ExecContext(ctx, `
        INSERT INTO watchlist_entries (user_id, symbol, company, added_at)
        VALUES ($1, $2, $3, NOW())
        ON CONFLICT (user_id, symbol) DO UPDATE SET
            company = EXCLUDED.company;
    `, userID, symbol, company)
	return err
}

func (r *watchlistRepository) delete(ctx context.Context, userID, symbol string) error {
	_, err := r.db.ExecContext(ctx, `
        DELETE FROM watchlist_entries WHERE user_id = $1 AND symbol = $2
    `, userID, symbol)
	return err
}

func (r *watchlistRepository) listAll(ctx context.Context, userID string) ([]Entry, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT user_id, symbol, company, added_at
        FROM watchlist_entries
        WHERE user_id = $1
        ORDER BY added_at DESC, symbol ASC
    `, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var entry Entry
		if err := rows.Scan(&entry.UserID, &entry.Symbol, &entry.Company, &entry.AddedAt); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
