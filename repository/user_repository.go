package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"KPlayer/model"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

// ErrDuplicateUser is returned when the email is already registered.
var ErrDuplicateUser = errors.New("user already exists")

// UserRepository defines the interface for user data operations.
type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) (string, error)
	GetUserByUID(ctx context.Context, uid string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
}

type gormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a UserRepository on db.
func NewGormUserRepository(db *gorm.DB) UserRepository {
	return &gormUserRepository{db: db}
}

// CreateUser adds a new user and returns its uid.
func (r *gormUserRepository) CreateUser(ctx context.Context, user *model.User) (string, error) {
	existing, err := r.GetUserByEmail(ctx, user.Email)
	if err != nil {
		return "", err
	}
	if existing != nil {
		return "", ErrDuplicateUser
	}

	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		// lost a race with a concurrent sign-up
		if isDuplicateKey(err) {
			return "", ErrDuplicateUser
		}
		return "", fmt.Errorf("failed to create user: %w", err)
	}
	return user.UID, nil
}

// GetUserByUID returns nil, nil when the user does not exist.
func (r *gormUserRepository) GetUserByUID(ctx context.Context, uid string) (*model.User, error) {
	return r.first(ctx, "uid = ?", uid)
}

// GetUserByEmail returns nil, nil when the email is unknown.
func (r *gormUserRepository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.first(ctx, "email = ?", strings.ToLower(strings.TrimSpace(email)))
}

func (r *gormUserRepository) first(ctx context.Context, query string, arg string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Where(query, arg).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user (%s): %w", arg, err)
	}
	return &user, nil
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr.Number == 1062 {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") || strings.Contains(msg, "UNIQUE constraint failed")
}
