package models

import "context"

// Model defines the base interface for persistent models.
type Model interface {
	Validate() error // Validate checks if the model's data is valid and returns an error if not
}

// Repository defines the interface for data access operations.
// Implementations handle database interactions for specific model types.
type Repository[T Model] interface {
	Create(ctx context.Context, model T) error    // Create inserts a new model and assigns its ID
	Get(ctx context.Context, id int64) (T, error) // Get retrieves a model by its ID
	Update(ctx context.Context, model T) error    // Update modifies an existing model
	Delete(ctx context.Context, id int64) error   // Delete removes a model by its ID
	List(ctx context.Context) ([]T, error)        // List retrieves all models in store order
}

// MovieStore is the [Repository] for [Movie] rows.
type MovieStore interface {
	Repository[*Movie]
	Count(ctx context.Context) (int, error)
}
