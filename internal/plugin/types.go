package plugin

import "fmt"

// Type identifies the category of plugin.
type Type string

const (
	// TypeContent transforms document content.
	TypeContent Type = "content"

	// TypeCollection changes which documents take part in a build.
	TypeCollection Type = "collection"

	// TypeLinks derives cross-page relationships.
	TypeLinks Type = "links"

	// TypePublisher reports build results to external systems.
	TypePublisher Type = "publisher"
)

// IsValid returns true if the plugin type is recognized.
func (t Type) IsValid() bool {
	switch t {
	case TypeContent, TypeCollection, TypeLinks, TypePublisher:
		return true
	default:
		return false
	}
}

// String returns the string representation of the plugin type.
func (t Type) String() string {
	return string(t)
}

// Error represents an error that occurred within a plugin.
type Error struct {
	// Plugin identifies which plugin failed.
	Plugin string

	// Hook names the hook point or lifecycle step that failed.
	Hook string

	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("plugin %s failed during %s: %v", e.Plugin, e.Hook, e.Err)
}

// Unwrap returns the underlying error for error inspection.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a new plugin error.
func NewError(plugin, hook string, err error) *Error {
	return &Error{Plugin: plugin, Hook: hook, Err: err}
}
