package bookshelf

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"bookshelfapi/internal/book"
)

const shelfColumns = `id, user_id, name, description, created_at, updated_at`
const entryColumns = `id, bookshelf_id, book_id, user_id, status, notes, created_at, updated_at`

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

func scanShelf(row pgx.Row, s *Bookshelf) error {
	return row.Scan(&s.ID, &s.UserID, &s.Name, &s.Description, &s.CreatedAt, &s.UpdatedAt)
}

func scanEntry(row pgx.Row, e *Entry) error {
	return row.Scan(&e.ID, &e.BookshelfID, &e.BookID, &e.UserID, &e.Status, &e.Notes, &e.CreatedAt, &e.UpdatedAt)
}

// mapConstraintError converts Postgres constraint violations to domain errors.
// The unique constraint on (bookshelf_id, book_id, user_id) and on books.isbn
// are the arbiters under concurrency; foreign keys catch dangling references.
func mapConstraintError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case "23505":
		switch pgErr.ConstraintName {
		case "bookshelf_books_triple_key":
			return ErrAlreadyShelved
		case "books_isbn_key":
			return book.ErrDuplicateISBN
		}
		return err
	case "23503":
		return ErrInvalidReference
	default:
		return err
	}
}

func (r *PostgresRepo) Create(ctx context.Context, userID, name, description string) (Bookshelf, error) {
	const query = `
		INSERT INTO bookshelves (user_id, name, description)
		VALUES ($1, $2, $3)
		RETURNING ` + shelfColumns

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	var s Bookshelf
	if err := scanShelf(r.db.QueryRow(timeoutCtx, query, userID, name, description), &s); err != nil {
		return Bookshelf{}, mapConstraintError(err)
	}
	return s, nil
}

func (r *PostgresRepo) GetByID(ctx context.Context, id string) (Bookshelf, []book.Book, error) {
	const shelfSQL = `SELECT ` + shelfColumns + ` FROM bookshelves WHERE id = $1 LIMIT 1`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	var s Bookshelf
	if err := scanShelf(r.db.QueryRow(timeoutCtx, shelfSQL, id), &s); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Bookshelf{}, nil, ErrNotFound
		}
		return Bookshelf{}, nil, err
	}

	const booksSQL = `
		SELECT b.id, b.isbn, b.title, b.author, b.pages, b.publisher, b.language,
		       b.published_at, b.created_by, b.created_at, b.updated_at
		FROM bookshelf_books bb
		JOIN books b ON b.id = bb.book_id
		WHERE bb.bookshelf_id = $1
		ORDER BY bb.created_at ASC
	`
	timeoutCtx2, cancel2 := r.withTimeout(ctx)
	defer cancel2()
	rows, err := r.db.Query(timeoutCtx2, booksSQL, id)
	if err != nil {
		return Bookshelf{}, nil, err
	}
	defer rows.Close()

	var books []book.Book
	for rows.Next() {
		var b book.Book
		if err := rows.Scan(
			&b.ID, &b.ISBN, &b.Title, &b.Author, &b.Pages, &b.Publisher, &b.Language,
			&b.PublishedAt, &b.CreatedBy, &b.CreatedAt, &b.UpdatedAt,
		); err != nil {
			return Bookshelf{}, nil, err
		}
		books = append(books, b)
	}
	return s, books, rows.Err()
}

func (r *PostgresRepo) ListByUser(ctx context.Context, userID string) ([]Bookshelf, error) {
	const query = `SELECT ` + shelfColumns + ` FROM bookshelves WHERE user_id = $1 ORDER BY created_at ASC`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	rows, err := r.db.Query(timeoutCtx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Bookshelf
	for rows.Next() {
		var s Bookshelf
		if err := rows.Scan(&s.ID, &s.UserID, &s.Name, &s.Description, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) Update(ctx context.Context, id, name, description string) (Bookshelf, error) {
	const query = `
		UPDATE bookshelves
		SET name = $2, description = $3, updated_at = now()
		WHERE id = $1
		RETURNING ` + shelfColumns

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	var s Bookshelf
	if err := scanShelf(r.db.QueryRow(timeoutCtx, query, id, name, description), &s); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Bookshelf{}, ErrNotFound
		}
		return Bookshelf{}, err
	}
	return s, nil
}

// Delete removes the shelf and its association rows in one transaction so no
// orphaned rows survive.
func (r *PostgresRepo) Delete(ctx context.Context, id string) error {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	tx, err := r.db.Begin(timeoutCtx)
	if err != nil {
		return err
	}
	defer tx.Rollback(timeoutCtx)

	if _, err := tx.Exec(timeoutCtx, `DELETE FROM bookshelf_books WHERE bookshelf_id = $1`, id); err != nil {
		return err
	}

	tag, err := tx.Exec(timeoutCtx, `DELETE FROM bookshelves WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return tx.Commit(timeoutCtx)
}

func (r *PostgresRepo) AddBook(ctx context.Context, p EntryPayload) (Entry, error) {
	const query = `
		INSERT INTO bookshelf_books (bookshelf_id, book_id, user_id, status, notes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + entryColumns

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	var e Entry
	err := scanEntry(r.db.QueryRow(timeoutCtx, query,
		p.BookshelfID, p.BookID, p.UserID, p.Status, p.Notes,
	), &e)
	if err != nil {
		return Entry{}, mapConstraintError(err)
	}
	return e, nil
}

func (r *PostgresRepo) UpdateEntry(ctx context.Context, bookshelfID, bookID, userID, status string, notes *string) (Entry, error) {
	const query = `
		UPDATE bookshelf_books
		SET status = $4, notes = $5, updated_at = now()
		WHERE bookshelf_id = $1 AND book_id = $2 AND user_id = $3
		RETURNING ` + entryColumns

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	var e Entry
	err := scanEntry(r.db.QueryRow(timeoutCtx, query, bookshelfID, bookID, userID, status, notes), &e)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Entry{}, ErrNotFound
		}
		return Entry{}, err
	}
	return e, nil
}

func (r *PostgresRepo) RemoveBook(ctx context.Context, bookshelfID, bookID, userID string) error {
	const query = `
		DELETE FROM bookshelf_books
		WHERE bookshelf_id = $1 AND book_id = $2 AND user_id = $3
	`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	tag, err := r.db.Exec(timeoutCtx, query, bookshelfID, bookID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// FindOrCreateAndShelve runs the find-or-create-and-associate flow in a single
// transaction. Two concurrent calls for the same new ISBN can both pass the
// lookup; the unique constraint on books.isbn decides the winner and the loser
// rolls back with book.ErrDuplicateISBN. Callers retry; the repo does not.
func (r *PostgresRepo) FindOrCreateAndShelve(ctx context.Context, p book.CreatePayload, t ShelfTarget) (book.Book, Entry, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	tx, err := r.db.Begin(timeoutCtx)
	if err != nil {
		return book.Book{}, Entry{}, err
	}
	defer tx.Rollback(timeoutCtx)

	const findSQL = `
		SELECT id, isbn, title, author, pages, publisher, language, published_at, created_by, created_at, updated_at
		FROM books
		WHERE isbn = $1
		LIMIT 1
	`
	var b book.Book
	err = tx.QueryRow(timeoutCtx, findSQL, p.ISBN).Scan(
		&b.ID, &b.ISBN, &b.Title, &b.Author, &b.Pages, &b.Publisher, &b.Language,
		&b.PublishedAt, &b.CreatedBy, &b.CreatedAt, &b.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		const createSQL = `
			INSERT INTO books (isbn, title, author, pages, publisher, language, published_at, created_by)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING id, isbn, title, author, pages, publisher, language, published_at, created_by, created_at, updated_at
		`
		err = tx.QueryRow(timeoutCtx, createSQL,
			p.ISBN, p.Title, p.Author, p.Pages, p.Publisher, p.Language, p.PublishedAt, p.CreatedBy,
		).Scan(
			&b.ID, &b.ISBN, &b.Title, &b.Author, &b.Pages, &b.Publisher, &b.Language,
			&b.PublishedAt, &b.CreatedBy, &b.CreatedAt, &b.UpdatedAt,
		)
	}
	if err != nil {
		return book.Book{}, Entry{}, mapConstraintError(err)
	}

	const entrySQL = `
		INSERT INTO bookshelf_books (bookshelf_id, book_id, user_id, status, notes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + entryColumns

	var e Entry
	err = scanEntry(tx.QueryRow(timeoutCtx, entrySQL,
		t.BookshelfID, b.ID, t.UserID, t.Status, t.Notes,
	), &e)
	if err != nil {
		return book.Book{}, Entry{}, mapConstraintError(err)
	}

	if err := tx.Commit(timeoutCtx); err != nil {
		return book.Book{}, Entry{}, err
	}
	return b, e, nil
}
