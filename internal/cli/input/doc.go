// Package input validates and collects form input for CLI commands.
//
// Validation runs before any network call. Failures are returned as
// *domain.ValidationError with one FieldError per bad field, named by
// the field's JSON name.
package input
