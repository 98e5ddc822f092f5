package users

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"optica/internal/errs"
)

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) Register(ctx context.Context, email, name, password string) (User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return User{}, errs.Validation("a valid email is required")
	}
	if len(password) < 8 {
		return User{}, errs.Validation("password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}

	u := User{ID: uuid.NewString(), Email: email, Name: name, Role: RoleUser}
	err = r.DB.QueryRow(ctx, `
		INSERT INTO users(id, email, name, password_hash, role)
		VALUES ($1,$2,$3,$4,$5) RETURNING created_at`,
		u.ID, u.Email, u.Name, string(hash), u.Role).Scan(&u.CreatedAt)
	if isUniqueViolation(err) {
		return User{}, errs.Validation("email already registered")
	}
	if err != nil {
		return User{}, err
	}
	return u, nil
}

// Authenticate verifies credentials and returns the account. The same error
// covers unknown email and wrong password.
func (r *Repo) Authenticate(ctx context.Context, email, password string) (User, error) {
	u, err := r.getByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, errs.ErrNotFound) {
		return User{}, errs.ErrUnauthenticated
	}
	if err != nil {
		return User{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return User{}, errs.ErrUnauthenticated
	}
	return u, nil
}

func (r *Repo) GetByID(ctx context.Context, id string) (User, error) {
	var u User
	err := r.DB.QueryRow(ctx, `
		SELECT id, email, name, role, password_hash, created_at FROM users WHERE id=$1`, id).
		Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, errs.ErrNotFound
	}
	return u, err
}

func (r *Repo) getByEmail(ctx context.Context, email string) (User, error) {
	var u User
	err := r.DB.QueryRow(ctx, `
		SELECT id, email, name, role, password_hash, created_at FROM users WHERE email=$1`, email).
		Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, errs.ErrNotFound
	}
	return u, err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
