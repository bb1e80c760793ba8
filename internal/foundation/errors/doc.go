// Package errors provides foundational, type-safe error primitives used across hyde.
//
// This package contains classified error types and helpers for robust error handling,
// including a fluent builder API for constructing ClassifiedError values with context.
//
// Key features:
//   - ErrorCategory: Broad error classification (config, front matter, render, destination, etc.)
//   - ErrorSeverity: Impact level (fatal, error)
//   - ClassifiedError: Structured error with category, severity, and context
//   - ErrorBuilder: Fluent API for creating classified errors
//   - CLI adapter for exit codes and error presentation
//
// Example usage:
//
//	err := errors.WrapError(cause, errors.CategoryRender, "render failed").
//		WithContext("template", "index.html").
//		Build()
package errors
