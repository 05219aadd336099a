/*
Package errors implements custom error interfaces for tidemark.

The idea is to reuse as many errors declared here as possible. Errors are
declared in a global scope which makes their comparison easy. Each error is
registered with a unique code that can be returned over the ABCI boundary
without leaking internal details.

Create new error instances using the Wrap function. Use Is to test an error
kind, never direct equality on wrapped instances.
*/
package errors
