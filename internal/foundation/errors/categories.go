package errors

// ErrorCategory groups errors by the part of a build that produced them.
type ErrorCategory string

const (
	// Input and configuration.
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"
	CategoryNotFound   ErrorCategory = "not_found"

	// Build stages.
	CategoryContent  ErrorCategory = "content"
	CategoryArchive  ErrorCategory = "archive"
	CategoryTemplate ErrorCategory = "template"
	CategoryOutput   ErrorCategory = "output"

	// Local IO and external systems.
	CategoryFileSystem ErrorCategory = "filesystem"
	CategoryCache      ErrorCategory = "cache"
	CategoryNotify     ErrorCategory = "notify"
	CategoryNetwork    ErrorCategory = "network"

	CategoryInternal ErrorCategory = "internal"
)

// ErrorSeverity decides whether a build stops. Fatal and error stop the
// current stage; warnings are recorded in the build report.
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"
	SeverityError   ErrorSeverity = "error"
	SeverityWarning ErrorSeverity = "warning"
)

// sourceKeys name context entries that point at files on disk. They are
// listed first when an error is shown to a user.
var sourceKeys = []string{"source", "first", "second", "path", "template", "dest_path"}

// ErrorContext holds structured details rendered into the error text.
type ErrorContext map[string]any

// Set adds or replaces a value, allocating the map when needed.
func (c ErrorContext) Set(key string, value any) ErrorContext {
	if c == nil {
		c = make(ErrorContext)
	}
	c[key] = value
	return c
}

func (c ErrorContext) Get(key string) (any, bool) {
	v, ok := c[key]
	return v, ok
}

func (c ErrorContext) GetString(key string) (string, bool) {
	s, ok := c[key].(string)
	return s, ok
}
