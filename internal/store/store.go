// Package store holds the authors and books served by the schema. It is an
// in-memory store safe for concurrent use; nothing is persisted.
package store

import (
	"context"
	"sync"
	"time"

	"github.com/hanpama/bookgraph/internal/eventbus"
	"github.com/hanpama/bookgraph/internal/events"
)

type Author struct {
	ID   int    `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

type Book struct {
	ID       int    `json:"id" yaml:"id"`
	Name     string `json:"name" yaml:"name"`
	AuthorID int    `json:"authorId" yaml:"authorId"`
}

// Store keeps authors and books in insertion order. Reads return copies;
// appends assign ids from store-owned counters under the write lock, so two
// concurrent appends never share an id.
type Store struct {
	mu           sync.RWMutex
	authors      []Author
	books        []Book
	nextAuthorID int
	nextBookID   int
}

// New returns a store holding the given records. Counters start after the
// highest id present.
func New(authors []Author, books []Book) *Store {
	s := &Store{
		authors:      append([]Author(nil), authors...),
		books:        append([]Book(nil), books...),
		nextAuthorID: 1,
		nextBookID:   1,
	}
	for _, a := range s.authors {
		if a.ID >= s.nextAuthorID {
			s.nextAuthorID = a.ID + 1
		}
	}
	for _, b := range s.books {
		if b.ID >= s.nextBookID {
			s.nextBookID = b.ID + 1
		}
	}
	return s
}

// Authors returns all authors in insertion order.
func (s *Store) Authors() []Author {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Author(nil), s.authors...)
}

// Books returns all books in insertion order.
func (s *Store) Books() []Book {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Book(nil), s.books...)
}

// AuthorByID returns the first author with id.
func (s *Store) AuthorByID(id int) (Author, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.authors {
		if a.ID == id {
			return a, true
		}
	}
	return Author{}, false
}

// BookByID returns the first book with id.
func (s *Store) BookByID(id int) (Book, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, b := range s.books {
		if b.ID == id {
			return b, true
		}
	}
	return Book{}, false
}

// BooksByAuthor returns the books written by authorID, in insertion order.
// The result is empty, never nil.
func (s *Store) BooksByAuthor(authorID int) []Book {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []Book{}
	for _, b := range s.books {
		if b.AuthorID == authorID {
			out = append(out, b)
		}
	}
	return out
}

// AddAuthor appends an author with a fresh id.
func (s *Store) AddAuthor(ctx context.Context, name string) Author {
	start := time.Now()
	s.mu.Lock()
	a := Author{ID: s.nextAuthorID, Name: name}
	s.nextAuthorID++
	s.authors = append(s.authors, a)
	s.mu.Unlock()

	eventbus.Publish(ctx, events.StoreWrite{Entity: "author", ID: a.ID, Duration: time.Since(start)})
	return a
}

// AddBook appends a book with a fresh id. authorID is not checked against
// the known authors.
func (s *Store) AddBook(ctx context.Context, name string, authorID int) Book {
	start := time.Now()
	s.mu.Lock()
	b := Book{ID: s.nextBookID, Name: name, AuthorID: authorID}
	s.nextBookID++
	s.books = append(s.books, b)
	s.mu.Unlock()

	eventbus.Publish(ctx, events.StoreWrite{Entity: "book", ID: b.ID, Duration: time.Since(start)})
	return b
}
