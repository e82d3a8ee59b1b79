// package repositories provides persistence layer implementations for all model types.
//
// Each repository implements models.Repository[T] for a specific entity type,
// handling CRUD operations over the SQLite database opened by shared.NewDatabase.
package repositories
