// Package domain contains the core business entities of the task tracker:
// users, tasks with calendar due dates, shared categories and comments,
// together with their validation rules. It is independent of any storage or
// delivery mechanism.
package domain
