package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"
	portsrepo "github.com/mark-schultz-wu/envelope-buddy/internal/core/ports/repositories"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		EnvelopeRepo:    newPgxEnvelopeRepository(dbPool),
		TransactionRepo: newPgxTransactionRepository(dbPool),
		ProductRepo:     newPgxProductRepository(dbPool),
		SystemStateRepo: newPgxSystemStateRepository(dbPool),
		ReportingRepo:   newPgxReportingRepository(dbPool),
	}
}
