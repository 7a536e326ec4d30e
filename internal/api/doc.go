// Package api holds the HTTP handlers of the task service. Handlers decode
// and validate requests, call the service layer and translate its errors
// into status codes and sanitized messages. Routing lives in cmd/server;
// middleware and shared response helpers live in the subpackages.
package api
