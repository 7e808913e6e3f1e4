// Package auth manages staff accounts, password hashing and bearer tokens.
package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"mirmaia/pos/domain"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrEmailTaken         = errors.New("email already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidUser        = errors.New("invalid user")
)

type Users struct {
	db *sqlx.DB
}

func NewUsers(db *sqlx.DB) *Users {
	return &Users{db: db}
}

// Authenticate checks an email and password pair against active accounts.
func (u *Users) Authenticate(ctx context.Context, email, password string) (domain.User, error) {
	var user domain.User
	err := u.db.GetContext(ctx, &user, u.db.Rebind(`SELECT id, name, email, password, role, is_active, created_at
		FROM users WHERE email = ?`), normalizeEmail(email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, ErrInvalidCredentials
		}
		return domain.User{}, fmt.Errorf("load user: %w", err)
	}
	if !user.IsActive {
		return domain.User{}, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return domain.User{}, ErrInvalidCredentials
	}
	user.Password = ""
	return user, nil
}

// Create registers a staff account with a hashed password.
func (u *Users) Create(ctx context.Context, name, email, password, role string) (domain.User, error) {
	name, email = strings.TrimSpace(name), normalizeEmail(email)
	if name == "" || email == "" || password == "" {
		return domain.User{}, fmt.Errorf("%w: name, email and password are required", ErrInvalidUser)
	}
	if role == "" {
		role = domain.RoleCashier
	}
	if !domain.ValidRole(role) {
		return domain.User{}, fmt.Errorf("%w: role must be admin or cashier", ErrInvalidUser)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	user := domain.User{Name: name, Email: email, Role: role, IsActive: true}
	err = u.db.QueryRowxContext(ctx, u.db.Rebind(`INSERT INTO users (name, email, password, role) VALUES (?, ?, ?, ?) RETURNING id, created_at`),
		name, email, string(hashed), role).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		msg := strings.ToLower(err.Error())
		if strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate key") {
			return domain.User{}, ErrEmailTaken
		}
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (u *Users) Get(ctx context.Context, id int64) (domain.User, error) {
	var user domain.User
	err := u.db.GetContext(ctx, &user, u.db.Rebind(`SELECT id, name, email, role, is_active, created_at FROM users WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

func (u *Users) List(ctx context.Context) ([]domain.User, error) {
	users := []domain.User{}
	if err := u.db.SelectContext(ctx, &users, `SELECT id, name, email, role, is_active, created_at FROM users ORDER BY name`); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// SetActive enables or disables sign-in for a user.
func (u *Users) SetActive(ctx context.Context, id int64, active bool) error {
	res, err := u.db.ExecContext(ctx, u.db.Rebind(`UPDATE users SET is_active = ? WHERE id = ?`), active, id)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrUserNotFound
	}
	return nil
}

// ChangePassword replaces the password of a user.
func (u *Users) ChangePassword(ctx context.Context, id int64, password string) error {
	if password == "" {
		return fmt.Errorf("%w: new_password is required", ErrInvalidUser)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if _, err := u.db.ExecContext(ctx, u.db.Rebind(`UPDATE users SET password = ? WHERE id = ?`), string(hashed), id); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

// EnsureAdmin creates the bootstrap administrator when no admin exists yet.
func (u *Users) EnsureAdmin(ctx context.Context, name, email, password string, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	if email == "" || password == "" {
		return nil
	}
	var admins int
	if err := u.db.GetContext(ctx, &admins, u.db.Rebind(`SELECT COUNT(*) FROM users WHERE role = ?`), domain.RoleAdmin); err != nil {
		return fmt.Errorf("count admins: %w", err)
	}
	if admins > 0 {
		return nil
	}
	user, err := u.Create(ctx, name, email, password, domain.RoleAdmin)
	if err != nil {
		return err
	}
	logger.Info("bootstrap admin created", zap.Int64("user_id", user.ID), zap.String("email", user.Email))
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
