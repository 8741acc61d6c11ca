package interfaces

// Repository bundles the persistent stores behind a single handle
type Repository interface {
	Issue() IssueRepository
	Memory() MemoryRepository
	Close() error
}
