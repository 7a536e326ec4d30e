// Package store defines the persistence interfaces for users, tasks,
// categories, task/category links and comments, the sentinel errors every
// implementation reports, and the transaction helper services use to group
// several store calls atomically.
package store
