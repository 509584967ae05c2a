package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"userhub/internal/apperror"
	"userhub/internal/config"
	"userhub/internal/database"
	"userhub/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// UserStore 使用者資料的持久化介面
type UserStore interface {
	// Insert 在單一交易內寫入使用者並回填 ID 與 CreatedAt
	Insert(ctx context.Context, u *model.User) (*model.User, error)
	GetByID(ctx context.Context, id int) (*model.User, error)
	// List 依 created_at 由新到舊排序，最多 limit 筆
	List(ctx context.Context, excludeAdmins bool, limit int) ([]model.User, error)
}

// uniqueViolation 為 Postgres SQLSTATE unique_violation
const uniqueViolation = "23505"

const (
	insertUserSQL = `INSERT INTO users (username, email, password_hash, is_admin)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`

	getUserByIDSQL = `SELECT id, username, email, password_hash, is_admin, created_at
		 FROM users WHERE id = $1`

	listUsersSQL = `SELECT id, username, email, password_hash, is_admin, created_at
		 FROM users
		 WHERE ($1::boolean = FALSE OR is_admin = FALSE)
		 ORDER BY created_at DESC, id DESC
		 LIMIT $2`
)

type PostgresUserStore struct {
	db database.DB
}

func NewPostgresUserStore(db database.DB) *PostgresUserStore {
	return &PostgresUserStore{db: db}
}

func (s *PostgresUserStore) Insert(ctx context.Context, u *model.User) (*model.User, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("Insert: begin: %w", err)
	}

	row := tx.QueryRow(ctx, insertUserSQL,
		u.Username,
		u.Email,
		u.PasswordHash,
		u.IsAdmin,
	)
	if err := row.Scan(&u.ID, &u.CreatedAt); err != nil {
		_ = tx.Rollback(ctx)
		return nil, classifyInsertErr(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, classifyInsertErr(err)
	}
	return u, nil
}

func (s *PostgresUserStore) GetByID(ctx context.Context, id int) (*model.User, error) {
	row := s.db.QueryRow(ctx, getUserByIDSQL, id)
	u := &model.User{}
	if err := scanUser(row, u); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.ErrNotFound
		}
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return u, nil
}

func (s *PostgresUserStore) List(ctx context.Context, excludeAdmins bool, limit int) ([]model.User, error) {
	if limit <= 0 {
		limit = config.DefaultListLimit
	}
	rows, err := s.db.Query(ctx, listUsersSQL, excludeAdmins, limit)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer rows.Close()

	users := make([]model.User, 0)
	for rows.Next() {
		var u model.User
		if err := scanUser(rows, &u); err != nil {
			return nil, fmt.Errorf("List: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	return users, nil
}

func scanUser(row pgx.Row, u *model.User) error {
	return row.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.IsAdmin,
		&u.CreatedAt,
	)
}

func classifyInsertErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return apperror.DuplicateKey(fieldFromConstraint(pgErr.ConstraintName), err)
	}
	return fmt.Errorf("Insert: %w", err)
}

// fieldFromConstraint 由 users_<field>_key 取出欄位名稱
func fieldFromConstraint(name string) string {
	switch {
	case strings.Contains(name, "username"):
		return "username"
	case strings.Contains(name, "email"):
		return "email"
	default:
		return ""
	}
}
