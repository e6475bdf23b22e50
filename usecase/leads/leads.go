package leads

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/roamio/backend/domain"
	"github.com/roamio/backend/repository"
	"github.com/roamio/backend/usecase"
)

// Service captures booking inquiries. Anonymous submissions are a
// first-class case; only the admin surface requires a principal.
type Service struct {
	leads    repository.LeadRepository
	router   *repository.Router
	notifier usecase.Notifier
	logger   *zap.Logger
}

func New(leads repository.LeadRepository, router *repository.Router, notifier usecase.Notifier, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		leads:    leads,
		router:   router,
		notifier: notifier,
		logger:   logger,
	}
}

// Submit validates the payload, checks the referenced package actually
// exists, persists the lead, and fires the notification. The persisted lead
// is the source of truth; a failed notification is logged and swallowed.
func (s *Service) Submit(ctx context.Context, lead *domain.Lead) (*domain.Lead, error) {
	if err := lead.Validate(); err != nil {
		return nil, err
	}

	store, err := s.router.StoreFor(lead.PackageType)
	if err != nil {
		return nil, err
	}
	pkg, err := store.GetByID(ctx, lead.PackageID)
	if err != nil {
		return nil, err
	}

	created, err := s.leads.Create(ctx, lead)
	if err != nil {
		return nil, err
	}

	s.notify(ctx, created, pkg)
	return created, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Lead, error) {
	return s.leads.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, filter repository.LeadFilter) ([]domain.Lead, error) {
	return s.leads.List(ctx, filter)
}

func (s *Service) UpdateStatus(ctx context.Context, id, status string) error {
	if status == "" {
		return domain.ErrInvalidPayload
	}
	return s.leads.UpdateStatus(ctx, id, status)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.leads.Delete(ctx, id)
}

func (s *Service) notify(ctx context.Context, lead *domain.Lead, pkg *domain.Package) {
	if s.notifier == nil {
		return
	}
	event := usecase.NotifyEvent{
		Kind:           "lead.created",
		RecipientEmail: lead.Email,
		Payload: map[string]string{
			"lead_id":      lead.ID,
			"package_name": pkg.Name,
			"package_type": string(pkg.Type),
			"travelers":    fmt.Sprintf("%d", len(lead.Travelers)),
			"start_date":   lead.StartDate.Format("2006-01-02"),
		},
	}
	if err := s.notifier.Notify(ctx, event); err != nil {
		s.logger.Warn("lead notification failed",
			zap.String("lead_id", lead.ID), zap.Error(err))
	}
}
