package sqlite

import (
	"database/sql"

	portsrepo "github.com/mark-schultz-wu/envelope-buddy/internal/core/ports/repositories"
)

func NewRepositoryProvider(db *sql.DB) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		EnvelopeRepo:    newSQLiteEnvelopeRepository(db),
		TransactionRepo: newSQLiteTransactionRepository(db),
		ProductRepo:     newSQLiteProductRepository(db),
		SystemStateRepo: newSQLiteSystemStateRepository(db),
		ReportingRepo:   newSQLiteReportingRepository(db),
	}
}
