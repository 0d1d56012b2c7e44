package book

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const bookColumns = `id, isbn, title, author, pages, publisher, language, published_at, created_by, created_at, updated_at`

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

func scanBook(row pgx.Row, b *Book) error {
	return row.Scan(
		&b.ID, &b.ISBN, &b.Title, &b.Author, &b.Pages, &b.Publisher,
		&b.Language, &b.PublishedAt, &b.CreatedBy, &b.CreatedAt, &b.UpdatedAt,
	)
}

// mapConstraintError converts Postgres constraint violations to domain errors.
// 23505 = unique_violation, 23503 = foreign_key_violation.
func mapConstraintError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case "23505":
		if pgErr.ConstraintName == "books_isbn_key" {
			return ErrDuplicateISBN
		}
		return err
	case "23503":
		return ErrInvalidReference
	default:
		return err
	}
}

func (r *PostgresRepo) Create(ctx context.Context, p CreatePayload) (Book, error) {
	query := fmt.Sprintf(`
		INSERT INTO books (isbn, title, author, pages, publisher, language, published_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING %s`, bookColumns)

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	var b Book
	err := scanBook(r.db.QueryRow(timeoutCtx, query,
		p.ISBN, p.Title, p.Author, p.Pages, p.Publisher, p.Language, p.PublishedAt, p.CreatedBy,
	), &b)
	if err != nil {
		return Book{}, mapConstraintError(err)
	}
	return b, nil
}

func (r *PostgresRepo) GetByID(ctx context.Context, id string) (Book, error) {
	query := fmt.Sprintf(`SELECT %s FROM books WHERE id = $1 LIMIT 1`, bookColumns)

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	var b Book
	err := scanBook(r.db.QueryRow(timeoutCtx, query, id), &b)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Book{}, ErrNotFound
		}
		return Book{}, err
	}
	return b, nil
}

func (r *PostgresRepo) GetByISBN(ctx context.Context, isbn string) (Book, error) {
	query := fmt.Sprintf(`SELECT %s FROM books WHERE isbn = $1 LIMIT 1`, bookColumns)

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	var b Book
	err := scanBook(r.db.QueryRow(timeoutCtx, query, isbn), &b)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Book{}, ErrNotFound
		}
		return Book{}, err
	}
	return b, nil
}

func (r *PostgresRepo) List(ctx context.Context, q Query) ([]Book, int, error) {
	clauses := []string{"1=1"}
	args := []any{}
	argn := 1

	if q.Author != "" {
		clauses = append(clauses, fmt.Sprintf("author ILIKE $%d", argn))
		args = append(args, "%"+q.Author+"%")
		argn++
	}

	if q.Publisher != "" {
		clauses = append(clauses, fmt.Sprintf("publisher = $%d", argn))
		args = append(args, q.Publisher)
		argn++
	}

	if q.Language != "" {
		clauses = append(clauses, fmt.Sprintf("language = $%d", argn))
		args = append(args, q.Language)
		argn++
	}

	if q.Q != "" {
		clauses = append(clauses, fmt.Sprintf("(isbn ILIKE $%d OR title ILIKE $%d OR author ILIKE $%d)", argn, argn+1, argn+2))
		pattern := "%" + q.Q + "%"
		args = append(args, pattern, pattern, pattern)
		argn += 3
	}

	where := "WHERE " + strings.Join(clauses, " AND ")

	countSQL := fmt.Sprintf("SELECT COUNT(*) FROM books %s", where)
	var total int
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	if err := r.db.QueryRow(timeoutCtx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	dataSQL := fmt.Sprintf(`
		SELECT %s
		FROM books
		%s
		ORDER BY title ASC
		LIMIT $%d OFFSET $%d`,
		bookColumns, where, argn, argn+1)

	argsWithPage := append([]any{}, args...)
	argsWithPage = append(argsWithPage, q.Limit, q.Offset)
	timeoutCtx2, cancel2 := r.withTimeout(ctx)
	defer cancel2()
	rows, err := r.db.Query(timeoutCtx2, dataSQL, argsWithPage...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Book
	for rows.Next() {
		var b Book
		if err := rows.Scan(
			&b.ID, &b.ISBN, &b.Title, &b.Author, &b.Pages, &b.Publisher,
			&b.Language, &b.PublishedAt, &b.CreatedBy, &b.CreatedAt, &b.UpdatedAt,
		); err != nil {
			return nil, 0, err
		}
		out = append(out, b)
	}
	return out, total, rows.Err()
}

func (r *PostgresRepo) Update(ctx context.Context, id string, p UpdatePayload) (Book, error) {
	sets := []string{"updated_at = now()"}
	args := []any{}
	argn := 1

	if p.Title != nil {
		sets = append(sets, fmt.Sprintf("title = $%d", argn))
		args = append(args, *p.Title)
		argn++
	}
	if p.Author != nil {
		sets = append(sets, fmt.Sprintf("author = $%d", argn))
		args = append(args, *p.Author)
		argn++
	}
	if p.Pages != nil {
		sets = append(sets, fmt.Sprintf("pages = $%d", argn))
		args = append(args, *p.Pages)
		argn++
	}
	if p.Publisher != nil {
		sets = append(sets, fmt.Sprintf("publisher = $%d", argn))
		args = append(args, *p.Publisher)
		argn++
	}
	if p.Language != nil {
		sets = append(sets, fmt.Sprintf("language = $%d", argn))
		args = append(args, *p.Language)
		argn++
	}
	if p.PublishedAt != nil {
		sets = append(sets, fmt.Sprintf("published_at = $%d", argn))
		args = append(args, *p.PublishedAt)
		argn++
	}

	query := fmt.Sprintf(`
		UPDATE books SET %s
		WHERE id = $%d
		RETURNING %s`,
		strings.Join(sets, ", "), argn, bookColumns)
	args = append(args, id)

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	var b Book
	err := scanBook(r.db.QueryRow(timeoutCtx, query, args...), &b)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Book{}, ErrNotFound
		}
		return Book{}, mapConstraintError(err)
	}
	return b, nil
}

func (r *PostgresRepo) Delete(ctx context.Context, id string) error {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	tag, err := r.db.Exec(timeoutCtx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return mapConstraintError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
