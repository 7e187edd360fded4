// Package errors provides the classified error model used across siteforge.
//
// A ClassifiedError carries a category, a severity and a context map.
// Context entries are rendered into the error text, so fatal content errors
// always name the source files involved:
//
//	err := errors.ContentError("duplicate file id").
//		WithContext("file_id", id).
//		WithContext("first", first.ID).
//		WithContext("second", second.ID).
//		Build()
//
// The CLI adapter maps categories to exit codes; the HTTP adapter serves the
// same errors as JSON from the preview server.
package errors
