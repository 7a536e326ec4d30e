// Package reminder delivers task notifications off the request path.
//
// A Dispatcher persists each event as a pending Reminder row, queues it on a
// bounded in-memory queue and hands it to a Sender from a pool of workers.
// Unfinished reminders are recovered when the dispatcher starts, and pending or
// processing reminders left outside the queue are periodically re-queued. A Scheduler runs a
// daily cron sweep that raises due-soon reminders for incomplete tasks.
package reminder
