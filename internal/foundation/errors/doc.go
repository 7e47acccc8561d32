// Package errors provides the classified error primitives used across mdsite.
//
// Every failure that crosses a package boundary is a ClassifiedError carrying a
// category, a severity and structured context. The HTTP and CLI adapters turn a
// category into a status code or exit code so callers never branch on message text.
//
// The categories cover the error kinds of the content engine:
//   - CategoryNotFound: a missing content file, content type directory or template
//   - CategoryMalformed: a front matter block that cannot be parsed
//   - CategoryConfig: a required configuration value is absent
//   - CategoryUnsupported: an unknown option value, such as a status code name
//
// Example usage:
//
//	err := errors.NotFoundError("content file not found").
//		WithContext("path", relPath).
//		WithCause(statErr).
//		Build()
package errors
