// Package repository provides data access interfaces and implementations
// for the paper summarization service.
//
// # Overview
//
// This package defines repository interfaces and their PostgreSQL
// implementations following the repository pattern to keep persistence
// concerns out of the pipeline logic.
//
// # Repository Interfaces
//
//   - PaperRepository: paper registration, status tracking, and DOI dedup
//   - TopicRepository: topic taxonomy and paper-topic associations
//   - SummaryRepository: individual summaries and cross-paper syntheses
//   - ExtractedDataRepository: per-paper extraction artifacts
//   - CitationRepository: formatted citations attached to papers
//
// # Thread Safety
//
// All repository implementations are safe for concurrent use by multiple
// goroutines. The underlying pgxpool handles connection pooling.
//
// # Error Handling
//
// All methods return domain-specific errors from the domain package.
// Database errors are wrapped with context using fmt.Errorf and %w.
// Common errors include:
//
//   - domain.ErrNotFound: resource does not exist
//   - domain.ErrAlreadyExists: unique constraint violation
//   - domain.ErrInvalidInput: invalid parameters provided
//   - domain.ErrStatusRegression: status update would move a paper backwards
//
// # Transactions
//
// Repositories accept the DBTX interface, so a pgx.Tx from
// database.DB.WithTransaction can be substituted for the pool to make a
// group of operations atomic.
package repository

import (
	"github.com/KALYANSAI-3114/Research-Paper-Summarization-Multi-Agent-System/internal/database"
)

// DBTX is the database interface supporting both pool and transaction
// contexts. Repository constructors accept it so callers can pass either
// the shared pool or a pgx.Tx:
//
//	err := db.WithTransaction(ctx, func(tx pgx.Tx) error {
//	    txRepo := repository.NewPgPaperRepository(tx)
//	    return txRepo.AdvanceStatus(ctx, id, domain.PaperStatusProcessed)
//	})
type DBTX = database.DBTX

// Filter pagination defaults and limits.
const (
	defaultFilterLimit = 100
	maxFilterLimit     = 1000
)

// applyPaginationDefaults normalizes limit and offset values for filter
// queries. It clamps limit to [1, maxFilterLimit] and ensures offset >= 0.
func applyPaginationDefaults(limit, offset *int) {
	if *limit <= 0 {
		*limit = defaultFilterLimit
	}
	if *limit > maxFilterLimit {
		*limit = maxFilterLimit
	}
	if *offset < 0 {
		*offset = 0
	}
}
