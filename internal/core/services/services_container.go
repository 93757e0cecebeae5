package services

import (
	portsrepo "github.com/SscSPs/family_bank/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/family_bank/internal/core/ports/services"
	"github.com/SscSPs/family_bank/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies.
// publisher may be nil, in which case committed entries are not announced.
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, verifier portssvc.TokenVerifier, publisher portssvc.EntryPublisher) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{Verifier: verifier}

	ledgerOpts := []LedgerOption{
		WithStoreTimeout(cfg.StoreTimeout),
		WithRoleIndex(cfg.UseRoleIndex),
	}
	if publisher != nil {
		ledgerOpts = append(ledgerOpts, WithEntryPublisher(publisher))
	}

	// The ledger is the only service that talks to the store.
	container.Ledger = NewLedgerService(repos.ItemStore, ledgerOpts...)
	container.Family = NewFamilyService(container.Ledger)
	container.Interest = NewInterestService(container.Ledger)

	return container
}

// Helper to check interface implementations at compile time
var (
	_ portssvc.LedgerSvcFacade = (*ledgerService)(nil)
	_ portssvc.FamilySvcFacade = (*familyService)(nil)
	_ portssvc.InterestSvc     = (*interestService)(nil)
)
