package user

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `id, email, username, password, first_name, last_name, role, created_at, updated_at`

type PostgresRepo struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewPostgresRepo(db *pgxpool.Pool, timeout time.Duration) *PostgresRepo {
	return &PostgresRepo{db: db, timeout: timeout}
}

func (r *PostgresRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

func scanUser(row pgx.Row, u *User) error {
	return row.Scan(
		&u.ID, &u.Email, &u.Username, &u.Password,
		&u.FirstName, &u.LastName, &u.Role,
		&u.CreatedAt, &u.UpdatedAt,
	)
}

func mapUniqueError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrAlreadyExists
	}
	return err
}

func (r *PostgresRepo) Create(ctx context.Context, u *User) error {
	const query = `
		INSERT INTO users (email, username, password, first_name, last_name, role)
		VALUES ($1, $2, $3, $4, $5, COALESCE(NULLIF($6, ''), 'USER'))
		RETURNING id, role, created_at, updated_at
	`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	err := r.db.QueryRow(timeoutCtx, query,
		u.Email, u.Username, u.Password, u.FirstName, u.LastName, u.Role,
	).Scan(&u.ID, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	return mapUniqueError(err)
}

func (r *PostgresRepo) GetByID(ctx context.Context, id string) (User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id = $1 LIMIT 1`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	var u User
	if err := scanUser(r.db.QueryRow(timeoutCtx, query, id), &u); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return u, nil
}

func (r *PostgresRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE email = $1 LIMIT 1`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	var u User
	if err := scanUser(r.db.QueryRow(timeoutCtx, query, email), &u); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return u, nil
}

func (r *PostgresRepo) List(ctx context.Context, limit, offset int) ([]User, int, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	var total int
	if err := r.db.QueryRow(timeoutCtx, `SELECT count(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, err
	}

	const query = `SELECT ` + userColumns + ` FROM users ORDER BY created_at ASC LIMIT $1 OFFSET $2`
	rows, err := r.db.Query(timeoutCtx, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		var u User
		if err := rows.Scan(
			&u.ID, &u.Email, &u.Username, &u.Password,
			&u.FirstName, &u.LastName, &u.Role,
			&u.CreatedAt, &u.UpdatedAt,
		); err != nil {
			return nil, 0, err
		}
		out = append(out, u)
	}
	return out, total, rows.Err()
}

func (r *PostgresRepo) Update(ctx context.Context, id string, p UpdatePayload) (User, error) {
	fields := []string{}
	args := []interface{}{id}
	argn := 2

	add := func(col string, val interface{}) {
		fields = append(fields, col+" = $"+strconv.Itoa(argn))
		args = append(args, val)
		argn++
	}
	if p.Username != nil {
		add("username", *p.Username)
	}
	if p.FirstName != nil {
		add("first_name", *p.FirstName)
	}
	if p.LastName != nil {
		add("last_name", *p.LastName)
	}
	if len(fields) == 0 {
		return r.GetByID(ctx, id)
	}
	fields = append(fields, "updated_at = now()")

	query := "UPDATE users SET " + strings.Join(fields, ", ") + " WHERE id = $1 RETURNING " + userColumns

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	var u User
	if err := scanUser(r.db.QueryRow(timeoutCtx, query, args...), &u); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, mapUniqueError(err)
	}
	return u, nil
}

func (r *PostgresRepo) Delete(ctx context.Context, id string) error {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	tag, err := r.db.Exec(timeoutCtx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
