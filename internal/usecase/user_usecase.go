package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/lexloop/lexloop/internal/entity"
	"github.com/lexloop/lexloop/internal/repository"
)

// UserUsecase encapsulates account registration, login and profile upkeep.
type UserUsecase interface {
	Register(ctx context.Context, username, email, password string) (*entity.User, error)
	Login(ctx context.Context, username, password string) (*entity.User, error)
	GetProfile(ctx context.Context, userID int64) (*entity.User, error)
	UpdateProfile(ctx context.Context, userID int64, email, phone, avatarURL string) (*entity.User, error)
	ChangePassword(ctx context.Context, userID int64, oldPassword, newPassword string) error
}

// NewUserUsecase wires the repository with default behaviour.
func NewUserUsecase(repo repository.UserRepository) UserUsecase {
	return &userUsecase{
		repo:  repo,
		clock: time.Now,
	}
}

type userUsecase struct {
	repo  repository.UserRepository
	clock func() time.Time
}

func (u *userUsecase) Register(ctx context.Context, username, email, password string) (*entity.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || password == "" {
		return nil, entity.ErrInvalidArgument
	}
	if len(password) < 6 {
		return nil, entity.ErrInvalidArgument
	}

	if _, err := u.repo.FindByUsername(ctx, username); err == nil {
		return nil, entity.ErrUserExists
	} else if !errors.Is(err, entity.ErrNotFound) {
		return nil, err
	}
	if email != "" {
		if _, err := u.repo.FindByEmail(ctx, email); err == nil {
			return nil, entity.ErrUserExists
		} else if !errors.Is(err, entity.ErrNotFound) {
			return nil, err
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := u.clock()
	return u.repo.Create(ctx, &entity.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}

func (u *userUsecase) Login(ctx context.Context, username, password string) (*entity.User, error) {
	user, err := u.repo.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return nil, entity.ErrBadCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, entity.ErrBadCredentials
	}

	now := u.clock()
	user.LastLogin = &now
	user.UpdatedAt = now
	return u.repo.Update(ctx, user)
}

func (u *userUsecase) GetProfile(ctx context.Context, userID int64) (*entity.User, error) {
	return u.repo.GetByID(ctx, userID)
}

func (u *userUsecase) UpdateProfile(ctx context.Context, userID int64, email, phone, avatarURL string) (*entity.User, error) {
	user, err := u.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if email != "" {
		user.Email = strings.TrimSpace(email)
	}
	if phone != "" {
		user.Phone = strings.TrimSpace(phone)
	}
	if avatarURL != "" {
		user.AvatarURL = avatarURL
	}
	user.UpdatedAt = u.clock()
	return u.repo.Update(ctx, user)
}

func (u *userUsecase) ChangePassword(ctx context.Context, userID int64, oldPassword, newPassword string) error {
	if len(newPassword) < 6 {
		return entity.ErrInvalidArgument
	}
	user, err := u.repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)) != nil {
		return entity.ErrBadCredentials
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hash)
	user.UpdatedAt = u.clock()
	_, err = u.repo.Update(ctx, user)
	return err
}
