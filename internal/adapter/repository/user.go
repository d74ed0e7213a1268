package repository

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/lexloop/lexloop/internal/entity"
	"github.com/lexloop/lexloop/internal/repository"
)

type userRow struct {
	ID           int64        `db:"id"`
	Username     string       `db:"username"`
	Email        string       `db:"email"`
	Phone        string       `db:"phone"`
	PasswordHash string       `db:"password_hash"`
	AvatarURL    string       `db:"avatar_url"`
	LastLogin    sql.NullTime `db:"last_login"`
	CreatedAt    sql.NullTime `db:"created_at"`
	UpdatedAt    sql.NullTime `db:"updated_at"`
}

func (r userRow) toEntity() *entity.User {
	return &entity.User{
		ID:           r.ID,
		Username:     r.Username,
		Email:        r.Email,
		Phone:        r.Phone,
		PasswordHash: r.PasswordHash,
		AvatarURL:    r.AvatarURL,
		LastLogin:    timePtr(r.LastLogin),
		CreatedAt:    r.CreatedAt.Time,
		UpdatedAt:    r.UpdatedAt.Time,
	}
}

type userRepository struct {
	db *sqlx.DB
}

// NewUserRepository builds the sqlx-backed account store.
func NewUserRepository(db *sqlx.DB) repository.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) (*entity.User, error) {
	id, err := insertReturningID(ctx, r.db, `
		INSERT INTO users (username, email, phone, password_hash, avatar_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		user.Username, user.Email, user.Phone, user.PasswordHash, user.AvatarURL,
		user.CreatedAt, user.UpdatedAt)
	if err != nil {
		return nil, conflictOr(err, entity.ErrUserExists)
	}
	return r.GetByID(ctx, id)
}

func (r *userRepository) Update(ctx context.Context, user *entity.User) (*entity.User, error) {
	query := r.db.Rebind(`
		UPDATE users
		SET email = ?, phone = ?, password_hash = ?, avatar_url = ?, last_login = ?, updated_at = ?
		WHERE id = ?`)
	if _, err := r.db.ExecContext(ctx, query,
		user.Email, user.Phone, user.PasswordHash, user.AvatarURL,
		nullTime(user.LastLogin), user.UpdatedAt, user.ID); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, user.ID)
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	var row userRow
	query := r.db.Rebind(`SELECT * FROM users WHERE id = ?`)
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		return nil, notFound(err, entity.ErrUserNotFound)
	}
	return row.toEntity(), nil
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	var row userRow
	query := r.db.Rebind(`SELECT * FROM users WHERE username = ?`)
	if err := r.db.GetContext(ctx, &row, query, username); err != nil {
		return nil, notFound(err, entity.ErrUserNotFound)
	}
	return row.toEntity(), nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	var row userRow
	query := r.db.Rebind(`SELECT * FROM users WHERE email = ?`)
	if err := r.db.GetContext(ctx, &row, query, email); err != nil {
		return nil, notFound(err, entity.ErrUserNotFound)
	}
	return row.toEntity(), nil
}
