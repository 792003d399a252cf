// Package interfaces defines the persistence contracts of the service.
package interfaces

import "github.com/m-mizutani/goerr/v2"

// ErrNotFound is returned by all repositories when the requested entity
// does not exist. Backends wrap it so callers can match with errors.Is.
var ErrNotFound = goerr.New("not found")

// Repository defines the interface for data persistence.
type Repository interface {
	Assessment() AssessmentRepository
	History() HistoryRepository
	Department() DepartmentRepository

	// Close releases backend resources. Safe to call once.
	Close() error
}
