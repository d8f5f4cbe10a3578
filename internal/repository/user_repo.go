package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"qwikstudi-backend/internal/models"
)

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

func (r *UserRepo) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, username, email, password_hash, google_id, auth_provider, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`

	user.ID = uuid.New()
	user.IsActive = true

	return r.pool.QueryRow(ctx, query,
		user.ID, user.Username, user.Email, user.PasswordHash, user.GoogleID, user.AuthProvider, user.IsActive,
	).Scan(&user.CreatedAt)
}

const userColumns = `id, username, email, password_hash, google_id, auth_provider, is_active, created_at, last_login_at`

func (r *UserRepo) scanUser(row interface{ Scan(...interface{}) error }) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.GoogleID,
		&user.AuthProvider, &user.IsActive, &user.CreatedAt, &user.LastLoginAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetByEmail matches case-insensitively; stored emails are lower-cased at
// registration but rows written before that convention may not be.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1)`
	return r.scanUser(r.pool.QueryRow(ctx, query, email))
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return r.scanUser(r.pool.QueryRow(ctx, query, username))
}

// GetByIdentifier resolves a login identifier that may be a username or an
// email. Email comparison is case-insensitive, username is exact.
func (r *UserRepo) GetByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1 OR LOWER(email) = LOWER($1)`
	return r.scanUser(r.pool.QueryRow(ctx, query, identifier))
}

func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanUser(r.pool.QueryRow(ctx, query, id))
}

func (r *UserRepo) GetByGoogleID(ctx context.Context, googleID string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE google_id = $1`
	return r.scanUser(r.pool.QueryRow(ctx, query, googleID))
}

func (r *UserRepo) LinkGoogleID(ctx context.Context, userID uuid.UUID, googleID string) error {
	_, err := r.pool.Exec(ctx, "UPDATE users SET google_id = $1 WHERE id = $2", googleID, userID)
	return err
}

func (r *UserRepo) UpdateLastLogin(ctx context.Context, userID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, "UPDATE users SET last_login_at = $1 WHERE id = $2", time.Now(), userID)
	return err
}

// Search finds users for the share dialog. The caller is excluded from the
// results.
func (r *UserRepo) Search(ctx context.Context, query string, excludeID uuid.UUID, limit int) ([]models.UserSummary, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, username, email FROM users
		WHERE (username ILIKE $1 OR email ILIKE $1) AND id != $2 AND is_active = TRUE
		ORDER BY username
		LIMIT $3
	`, "%"+query+"%", excludeID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]models.UserSummary, 0)
	for rows.Next() {
		var u models.UserSummary
		if err := rows.Scan(&u.ID, &u.Username, &u.Email); err != nil {
			return nil, err
		}
		results = append(results, u)
	}
	return results, rows.Err()
}
