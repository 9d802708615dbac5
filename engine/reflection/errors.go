package reflection

import "errors"

var (
	// ErrNoSuchPath is returned when a navigation is not valid for the cursor's node, or an index
	// is out of range.
	ErrNoSuchPath = errors.New("no such path")

	// ErrUnsupportedLayout is returned by the binding-layout builder for binding types the
	// backend cannot express.
	ErrUnsupportedLayout = errors.New("unsupported layout")

	// ErrUnsupportedKind is returned by traversals that meet a node kind they do not know.
	ErrUnsupportedKind = errors.New("unsupported node kind")
)
