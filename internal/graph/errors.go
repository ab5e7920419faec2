package graph

import "errors"

var (
	// ErrNodeNotFound is returned when a query references an id that was
	// never inserted.
	ErrNodeNotFound = errors.New("node not found")

	// ErrInvalidEdge is returned for self-loops and for edges whose
	// endpoints are not in the graph.
	ErrInvalidEdge = errors.New("invalid edge")

	// ErrDuplicateNode is returned by the document decoder when an id is
	// listed twice. AddNode itself replaces silently.
	ErrDuplicateNode = errors.New("duplicate node id")

	ErrUnsupportedFormat = errors.New("unsupported graph format")
)
