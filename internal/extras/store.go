package extras

import (
	"encoding/json"
	"errors"
	"log/slog"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	coverPrefix  = "cover:"
	reviewPrefix = "review:"
)

func coverKey(bookID string) []byte {
	return []byte(coverPrefix + bookID)
}

func reviewKey(bookID, reviewID string) []byte {
	return []byte(reviewPrefix + bookID + ":" + reviewID)
}

// Store wraps a Badger database holding covers and reviews as JSON documents.
type Store struct {
	db     *badger.DB
	logger *slog.Logger
}

// Open opens (or creates) the Badger database at path.
func Open(path string, logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil // Badger's own logging is too chatty
	opts.SyncWrites = true
	opts.CompactL0OnClose = true

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &Store{db: db, logger: logger}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// PutCover stores cover metadata for a book, overwriting any previous cover.
func (s *Store) PutCover(c Cover) (Cover, error) {
	c.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(c)
	if err != nil {
		return Cover{}, err
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(coverKey(c.BookID), data)
	})
	if err != nil {
		return Cover{}, err
	}
	return c, nil
}

func (s *Store) GetCover(bookID string) (Cover, error) {
	var c Cover
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(coverKey(bookID))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &c)
		})
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return Cover{}, ErrNotFound
		}
		return Cover{}, err
	}
	return c, nil
}

// AddReview stores a new review under a generated id.
func (s *Store) AddReview(bookID, userID, username, text string) (Review, error) {
	id, err := gonanoid.New()
	if err != nil {
		return Review{}, err
	}
	rev := Review{
		ID:        id,
		BookID:    bookID,
		UserID:    userID,
		Username:  username,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}
	data, err := json.Marshal(rev)
	if err != nil {
		return Review{}, err
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(reviewKey(bookID, id), data)
	})
	if err != nil {
		return Review{}, err
	}
	return rev, nil
}

// ListReviews returns all reviews for a book, newest first.
func (s *Store) ListReviews(bookID string) ([]Review, error) {
	var out []Review
	prefix := []byte(reviewPrefix + bookID + ":")
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var rev Review
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rev)
			})
			if err != nil {
				return err
			}
			out = append(out, rev)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) DeleteReview(bookID, reviewID string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		key := reviewKey(bookID, reviewID)
		if _, err := txn.Get(key); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrNotFound
			}
			return err
		}
		return txn.Delete(key)
	})
}

// PurgeBook removes the cover and all reviews for a book. Called best-effort
// after a catalog delete; until it runs, stale documents may still be read.
func (s *Store) PurgeBook(bookID string) error {
	prefix := []byte(reviewPrefix + bookID + ":")
	var keys [][]byte
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		return nil
	})
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete(coverKey(bookID)); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		for _, key := range keys {
			if err := txn.Delete(key); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}
		}
		return nil
	})
}
