// Package language parses GraphQL documents. It is a thin layer over
// gqlparser so the rest of the module depends on one set of AST names.
package language

import (
	"errors"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
)

// ParseQuery parses an executable document. Syntax errors are returned as
// *Error carrying the source location.
func ParseQuery(source string) (*QueryDocument, error) {
	doc, err := parser.ParseQuery(&ast.Source{Input: source})
	if err != nil {
		return nil, asError(err)
	}
	return doc, nil
}

// ParseSchema parses an SDL document.
func ParseSchema(name, source string) (*SchemaDocument, error) {
	doc, err := parser.ParseSchema(&ast.Source{Name: name, Input: source})
	if err != nil {
		return nil, asError(err)
	}
	return doc, nil
}

func asError(err error) error {
	var ge *Error
	if errors.As(err, &ge) {
		return ge
	}
	return &Error{Message: err.Error()}
}
