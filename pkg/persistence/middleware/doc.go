// Package middleware provides StateStore decorators applied to persisted sessions:
// redaction of sensitive text and AES-GCM encryption at rest.
package middleware
