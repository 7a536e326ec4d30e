// Package auth issues and validates HMAC-signed JWT session tokens and hashes
// passwords with bcrypt. A token carries the user's session generation so that
// logging out can revoke every token issued before it.
package auth
