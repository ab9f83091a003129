// Package service contains the application use cases of the task board.
// It orchestrates domain objects and the store interfaces (internal/store)
// to implement registration, login, session checks, user administration and
// task management, and it announces committed task mutations through an
// events.EventEmitter.
//
// Services receive their dependencies through constructor injection and never
// depend on a concrete store or transport. Store errors are translated into
// the domain error taxonomy (domain.ErrValidation, domain.ErrConflict,
// domain.ErrNotFound and friends) so the API layer can map them to status
// codes with errors.Is.
package service
