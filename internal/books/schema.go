// Package books defines the graph of authors and the books they wrote, backed
// by a store.Store.
package books

import (
	"fmt"

	schema "github.com/hanpama/bookgraph/internal/schema"
	"github.com/hanpama/bookgraph/internal/store"
)

// NewSchema builds the books schema over s. Query resolvers only read from s;
// the addBook and addAuthor mutations append to it.
func NewSchema(s *store.Store) (*schema.Schema, error) {
	r := &resolvers{store: s}
	sch, err := schema.NewBuilder("").
		SetQueryType("Query").
		SetMutationType("Mutation").
		AddType(bookType(r)).
		AddType(authorType(r)).
		AddType(queryType(r)).
		AddType(mutationType(r)).
		Build()
	if err != nil {
		return nil, fmt.Errorf("books schema: %w", err)
	}
	return sch, nil
}
