package books

import (
	schema "github.com/hanpama/bookgraph/internal/schema"
)

func bookType(r *resolvers) *schema.Type {
	return schema.NewObject("Book", "This represents a book written by an author.").
		AddField(schema.NewField("id", "", schema.NonNullType(schema.NamedType(schema.IntName)))).
		AddField(schema.NewField("name", "", schema.NonNullType(schema.NamedType(schema.StringName)))).
		AddField(schema.NewField("authorId", "", schema.NonNullType(schema.NamedType(schema.IntName)))).
		AddField(schema.NewField("author", "", schema.NamedType("Author")).
			SetResolveFunc(r.bookAuthor))
}

func authorType(r *resolvers) *schema.Type {
	return schema.NewObject("Author", "This represents an author of a book.").
		AddField(schema.NewField("id", "", schema.NonNullType(schema.NamedType(schema.IntName)))).
		AddField(schema.NewField("name", "", schema.NonNullType(schema.NamedType(schema.StringName)))).
		AddField(schema.NewField("books", "", schema.ListType(schema.NamedType("Book"))).
			SetResolveFunc(r.authorBooks))
}

func queryType(r *resolvers) *schema.Type {
	return schema.NewObject("Query", "Root Query").
		AddField(schema.NewField("book", "A Single Book", schema.NamedType("Book")).
			AddArgument(schema.NewInputValue("id", "", schema.NamedType(schema.IntName))).
			SetResolveFunc(r.book)).
		AddField(schema.NewField("books", "List of All Books", schema.ListType(schema.NamedType("Book"))).
			SetResolveFunc(r.books)).
		AddField(schema.NewField("authors", "List of all Authors", schema.ListType(schema.NamedType("Author"))).
			SetResolveFunc(r.authors)).
		AddField(schema.NewField("author", "A Single Author", schema.NamedType("Author")).
			AddArgument(schema.NewInputValue("id", "", schema.NamedType(schema.IntName))).
			SetResolveFunc(r.author))
}

func mutationType(r *resolvers) *schema.Type {
	return schema.NewObject("Mutation", "Root Mutation").
		AddField(schema.NewField("addBook", "Add a Book", schema.NamedType("Book")).
			AddArgument(schema.NewInputValue("name", "", schema.NonNullType(schema.NamedType(schema.StringName)))).
			AddArgument(schema.NewInputValue("authorId", "", schema.NonNullType(schema.NamedType(schema.IntName)))).
			SetResolveFunc(r.addBook)).
		AddField(schema.NewField("addAuthor", "Add an Author", schema.NamedType("Author")).
			AddArgument(schema.NewInputValue("name", "", schema.NonNullType(schema.NamedType(schema.StringName)))).
			SetResolveFunc(r.addAuthor))
}
