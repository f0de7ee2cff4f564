// Package events defines the lifecycle events published on the eventbus.
// Every event is published with the request context, so subscribers can
// correlate them through reqid.
package events

import (
	"net/http"
	"time"
)

// HTTPStart is published when the GraphQL handler accepts a request.
type HTTPStart struct {
	Request *http.Request
}

// HTTPFinish is published once the response has been written.
type HTTPFinish struct {
	Request  *http.Request
	Status   int
	Duration time.Duration
}

// GraphQLStart is published for each parsed operation, before execution.
// Batched requests publish one pair per entry.
type GraphQLStart struct {
	Query         string
	OperationName string
	OperationType string // "query" or "mutation"; empty when not resolvable
}

// GraphQLFinish mirrors GraphQLStart after execution. Errors holds the
// message of every located error in the result, in order, and Codes their
// extension codes.
type GraphQLFinish struct {
	Query         string
	OperationName string
	OperationType string
	Errors        []string
	Codes         []string
	Duration      time.Duration
}

// StoreWrite is published after the store appends an entity.
type StoreWrite struct {
	Entity   string // "book" or "author"
	ID       int
	Duration time.Duration
}
