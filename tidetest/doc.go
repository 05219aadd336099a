/*
Package tidetest provides mocks and helpers for testing
extensions.

Use Auth or CtxAuth instead of a full signature extension,
Tx and Msg as lightweight transaction stubs, and the store
helpers to run against the same storage engine as production.
*/
package tidetest
