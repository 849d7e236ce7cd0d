package faq

import "context"

// Repository is the persistence boundary for FAQ records.
type Repository interface {
	FindAll(ctx context.Context) ([]Record, error)
	FindByDepartment(ctx context.Context, department string) ([]Record, error)
	Search(ctx context.Context, query SearchQuery) ([]Record, error)
	// Insert assigns the ID and returns the stored record.
	Insert(ctx context.Context, record Record) (Record, error)
	UpdateByID(ctx context.Context, id string, patch Patch) (Record, bool, error)
	DeleteByID(ctx context.Context, id string) (Record, bool, error)
}
