package store

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Seed is the on-disk form of the initial data:
//
//	authors:
//	  - {id: 1, name: Ernest Hemingway}
//	books:
//	  - {id: 1, name: The Sun Also Rises, authorId: 1}
type Seed struct {
	Authors []Author `yaml:"authors"`
	Books   []Book   `yaml:"books"`
}

// DefaultSeed returns the three authors and nine books served when no seed
// file is configured.
func DefaultSeed() Seed {
	return Seed{
		Authors: []Author{
			{ID: 1, Name: "Ernest Hemingway"},
			{ID: 2, Name: "F. Scott Fitzgerald"},
			{ID: 3, Name: "William Faulkner"},
		},
		Books: []Book{
			{ID: 1, Name: "The Sun Also Rises", AuthorID: 1},
			{ID: 2, Name: "A Farewell to Arms", AuthorID: 1},
			{ID: 3, Name: "For Whom the Bell Tolls", AuthorID: 1},
			{ID: 4, Name: "The Great Gatsby", AuthorID: 2},
			{ID: 5, Name: "This Side of Paradise", AuthorID: 2},
			{ID: 6, Name: "Tender is the Night", AuthorID: 2},
			{ID: 7, Name: "The Sound and the Fury", AuthorID: 3},
			{ID: 8, Name: "Absalom, Absalom", AuthorID: 3},
			{ID: 9, Name: "Light in August", AuthorID: 3},
		},
	}
}

// NewDefault returns a store holding DefaultSeed.
func NewDefault() *Store {
	seed := DefaultSeed()
	return New(seed.Authors, seed.Books)
}

// DecodeSeed reads a YAML seed document. Unknown keys are rejected and ids
// must be positive and unique per entity.
func DecodeSeed(r io.Reader) (Seed, error) {
	var seed Seed
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&seed); err != nil && err != io.EOF {
		return Seed{}, fmt.Errorf("decode seed: %w", err)
	}
	if err := seed.check(); err != nil {
		return Seed{}, err
	}
	return seed, nil
}

// LoadSeed reads the seed file at path.
func LoadSeed(path string) (Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Seed{}, fmt.Errorf("read seed: %w", err)
	}
	seed, err := DecodeSeed(bytes.NewReader(data))
	if err != nil {
		return Seed{}, fmt.Errorf("%s: %w", path, err)
	}
	return seed, nil
}

func (s Seed) check() error {
	authors := make(map[int]bool, len(s.Authors))
	for i, a := range s.Authors {
		if a.ID <= 0 {
			return fmt.Errorf("authors[%d]: id must be positive", i)
		}
		if authors[a.ID] {
			return fmt.Errorf("authors[%d]: duplicate id %d", i, a.ID)
		}
		authors[a.ID] = true
	}
	books := make(map[int]bool, len(s.Books))
	for i, b := range s.Books {
		if b.ID <= 0 {
			return fmt.Errorf("books[%d]: id must be positive", i)
		}
		if books[b.ID] {
			return fmt.Errorf("books[%d]: duplicate id %d", i, b.ID)
		}
		books[b.ID] = true
	}
	return nil
}
