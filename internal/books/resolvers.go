package books

import (
	"context"
	"fmt"

	"github.com/hanpama/bookgraph/internal/store"
)

type resolvers struct {
	store *store.Store
}

// bookAuthor resolves the author whose id equals the book's authorId, or
// null when there is none.
func (r *resolvers) bookAuthor(_ context.Context, source any, _ map[string]any) (any, error) {
	book, err := asBook(source)
	if err != nil {
		return nil, err
	}
	if a, ok := r.store.AuthorByID(book.AuthorID); ok {
		return a, nil
	}
	return nil, nil
}

// authorBooks resolves the author's books in store order; an author without
// books gets an empty list.
func (r *resolvers) authorBooks(_ context.Context, source any, _ map[string]any) (any, error) {
	author, err := asAuthor(source)
	if err != nil {
		return nil, err
	}
	return r.store.BooksByAuthor(author.ID), nil
}

func (r *resolvers) book(_ context.Context, _ any, args map[string]any) (any, error) {
	id, ok := args["id"].(int)
	if !ok {
		return nil, nil
	}
	if b, ok := r.store.BookByID(id); ok {
		return b, nil
	}
	return nil, nil
}

func (r *resolvers) books(context.Context, any, map[string]any) (any, error) {
	return r.store.Books(), nil
}

func (r *resolvers) author(_ context.Context, _ any, args map[string]any) (any, error) {
	id, ok := args["id"].(int)
	if !ok {
		return nil, nil
	}
	if a, ok := r.store.AuthorByID(id); ok {
		return a, nil
	}
	return nil, nil
}

func (r *resolvers) authors(context.Context, any, map[string]any) (any, error) {
	return r.store.Authors(), nil
}

func (r *resolvers) addBook(ctx context.Context, _ any, args map[string]any) (any, error) {
	name, _ := args["name"].(string)
	authorID, _ := args["authorId"].(int)
	return r.store.AddBook(ctx, name, authorID), nil
}

func (r *resolvers) addAuthor(ctx context.Context, _ any, args map[string]any) (any, error) {
	name, _ := args["name"].(string)
	return r.store.AddAuthor(ctx, name), nil
}

func asBook(source any) (store.Book, error) {
	switch v := source.(type) {
	case store.Book:
		return v, nil
	case *store.Book:
		return *v, nil
	}
	return store.Book{}, fmt.Errorf("expected a book, got %T", source)
}

func asAuthor(source any) (store.Author, error) {
	switch v := source.(type) {
	case store.Author:
		return v, nil
	case *store.Author:
		return *v, nil
	}
	return store.Author{}, fmt.Errorf("expected an author, got %T", source)
}
