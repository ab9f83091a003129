// Package domain contains the core business entities of the task board: users
// with their roles, tasks with their status and priority enumerations, and the
// error taxonomy every other layer speaks. It has no knowledge of storage or
// transport.
package domain
