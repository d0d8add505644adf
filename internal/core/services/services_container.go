package services

import (
	portsrepo "github.com/mark-schultz-wu/envelope-buddy/internal/core/ports/repositories"
	portssvc "github.com/mark-schultz-wu/envelope-buddy/internal/core/ports/services"
	"github.com/mark-schultz-wu/envelope-buddy/internal/notify"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(repos portsrepo.RepositoryProvider, notifier notify.Notifier) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// Envelope service first since transactions and products resolve
	// envelopes through it
	container.Envelope = NewEnvelopeService(repos.EnvelopeRepo)

	container.Transaction = NewTransactionService(repos.TransactionRepo, container.Envelope)
	container.Product = NewProductService(repos.ProductRepo, container.Envelope, container.Transaction)
	container.Rollover = NewRolloverService(repos.SystemStateRepo, notifier)
	container.Reporting = NewReportingService(repos.EnvelopeRepo, repos.TransactionRepo, repos.ReportingRepo)

	return container
}

// Helper to check interface implementations at compile time
var (
	_ portssvc.EnvelopeSvcFacade    = (*EnvelopeService)(nil)
	_ portssvc.TransactionSvcFacade = (*TransactionService)(nil)
	_ portssvc.ProductSvcFacade     = (*ProductService)(nil)
	_ portssvc.RolloverSvcFacade    = (*RolloverService)(nil)
	_ portssvc.ReportingSvcFacade   = (*ReportingService)(nil)
)
