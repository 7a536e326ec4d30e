// Package service implements the application operations behind the HTTP API:
// task lifecycle and ownership checks, categories, comments and user sessions.
//
// Every operation that acts on behalf of a user takes the caller's id as an
// explicit parameter. Services depend on store interfaces and a
// store.Transactor, never on a database handle, so they can be exercised with
// in-memory fakes.
package service
