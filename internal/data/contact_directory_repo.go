package data

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/gitwithsonu015/campus-sos/internal/data/pgxutil"
	apperrors "github.com/gitwithsonu015/campus-sos/internal/errors"
)

// ContactDirectoryRepo resolves notification recipients from Postgres.
//
// Two tables back it: emergency_contacts holds per-user phone numbers, and
// devices holds push tokens keyed by broadcast subscription scope.
type ContactDirectoryRepo struct {
	DB *sql.DB
}

// NewContactDirectoryRepo creates a new ContactDirectoryRepo instance.
func NewContactDirectoryRepo(db *sql.DB) *ContactDirectoryRepo {
	return &ContactDirectoryRepo{DB: db}
}

// ContactsFor returns the emergency-contact phone numbers registered for a
// user. An empty result is not an error.
func (r *ContactDirectoryRepo) ContactsFor(ctx context.Context, ownerID string) ([]string, error) {
	query := `
		SELECT phone FROM emergency_contacts
		WHERE user_id = $1 AND phone <> ''
		ORDER BY created_at`

	var phones []string
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, ownerID)
		if err != nil {
			return err
		}
		defer rows.Close()

		phones, err = pgx.CollectRows(rows, pgx.RowTo[string])
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("load emergency contacts: %w", apperrors.MapDBError(err))
	}

	return phones, nil
}

// TokensFor returns the device push tokens subscribed to a broadcast scope.
// Duplicates are possible when one user registered a token twice; callers
// deduplicate before delivery.
func (r *ContactDirectoryRepo) TokensFor(ctx context.Context, scope string) ([]string, error) {
	query := `
		SELECT push_token FROM devices
		WHERE subscription = $1 AND push_token <> ''`

	var tokens []string
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, scope)
		if err != nil {
			return err
		}
		defer rows.Close()

		tokens, err = pgx.CollectRows(rows, pgx.RowTo[string])
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("load subscriber tokens: %w", apperrors.MapDBError(err))
	}

	return tokens, nil
}
