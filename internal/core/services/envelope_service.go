package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/mark-schultz-wu/envelope-buddy/internal/apperrors"
	"github.com/mark-schultz-wu/envelope-buddy/internal/core/domain"
	portsrepo "github.com/mark-schultz-wu/envelope-buddy/internal/core/ports/repositories"
	"github.com/mark-schultz-wu/envelope-buddy/internal/dto"
	"github.com/mark-schultz-wu/envelope-buddy/internal/middleware"
	"github.com/shopspring/decimal"
)

type EnvelopeService struct {
	envelopeRepo portsrepo.EnvelopeRepositoryFacade
}

func NewEnvelopeService(repo portsrepo.EnvelopeRepositoryFacade) *EnvelopeService {
	return &EnvelopeService{envelopeRepo: repo}
}

// validateEnvelopeRequest normalizes and checks a create request. Returns the
// trimmed name, the owner (nil for shared envelopes) and the allocation.
func validateEnvelopeRequest(req dto.CreateEnvelopeRequest) (string, *string, decimal.Decimal, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return "", nil, decimal.Zero, fmt.Errorf("envelope name must not be empty: %w", apperrors.ErrConfig)
	}
	if math.IsNaN(req.Allocation) || math.IsInf(req.Allocation, 0) || req.Allocation < 0 {
		return "", nil, decimal.Zero, fmt.Errorf("allocation must be a non-negative finite number: %w", apperrors.ErrInvalidAmount)
	}
	var owner *string
	if req.IsIndividual {
		if req.UserID == nil || strings.TrimSpace(*req.UserID) == "" {
			return "", nil, decimal.Zero, fmt.Errorf("individual envelope requires a user: %w", apperrors.ErrConfig)
		}
		u := strings.TrimSpace(*req.UserID)
		owner = &u
	}
	return name, owner, decimal.NewFromFloat(req.Allocation), nil
}

func (s *EnvelopeService) CreateEnvelope(ctx context.Context, req dto.CreateEnvelopeRequest) (*domain.Envelope, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	name, owner, allocation, err := validateEnvelopeRequest(req)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	envelope := domain.Envelope{
		Name:         name,
		Category:     strings.TrimSpace(req.Category),
		Allocation:   allocation,
		Balance:      allocation, // A fresh envelope starts fully funded
		Rollover:     req.Rollover,
		IsIndividual: req.IsIndividual,
		UserID:       owner,
		AuditFields: domain.AuditFields{
			CreatedAt: now,
			UpdatedAt: now,
		},
	}

	saved, err := s.envelopeRepo.SaveEnvelope(ctx, envelope)
	if err != nil {
		if !errors.Is(err, apperrors.ErrDuplicate) {
			logger.Error("Failed to save envelope in repository", slog.String("error", err.Error()), slog.String("name", name))
		}
		return nil, err
	}

	logger.Info("Envelope created", slog.Int64("envelope_id", saved.ID), slog.String("name", saved.Name))
	return saved, nil
}

func (s *EnvelopeService) CreateOrReenableEnvelope(ctx context.Context, req dto.CreateEnvelopeRequest) (*domain.Envelope, error) {
	envelope, _, err := s.createOrReenable(ctx, req)
	return envelope, err
}

// createOrReenable reports via its bool whether an envelope was created or
// revived, as opposed to an in-place update of an active match.
func (s *EnvelopeService) createOrReenable(ctx context.Context, req dto.CreateEnvelopeRequest) (*domain.Envelope, bool, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	name, owner, allocation, err := validateEnvelopeRequest(req)
	if err != nil {
		return nil, false, err
	}

	existing, err := s.envelopeRepo.FindAnyEnvelopeByName(ctx, name, owner)
	if errors.Is(err, apperrors.ErrNotFound) {
		envelope, err := s.CreateEnvelope(ctx, req)
		return envelope, err == nil, err
	}
	if err != nil {
		return nil, false, err
	}

	now := time.Now()
	revived := existing.IsDeleted
	existing.Category = strings.TrimSpace(req.Category)
	existing.Allocation = allocation
	existing.Rollover = req.Rollover
	existing.UpdatedAt = now
	if revived {
		// A revived envelope starts over fully funded
		existing.IsDeleted = false
		existing.Balance = allocation
	}

	if err := s.envelopeRepo.UpdateEnvelope(ctx, *existing); err != nil {
		logger.Error("Failed to update envelope in repository", slog.String("error", err.Error()), slog.Int64("envelope_id", existing.ID))
		return nil, false, err
	}

	if revived {
		logger.Info("Envelope re-enabled", slog.Int64("envelope_id", existing.ID), slog.String("name", existing.Name))
	}
	return existing, revived, nil
}

func (s *EnvelopeService) UpdateEnvelope(ctx context.Context, id int64, req dto.UpdateEnvelopeRequest) (*domain.Envelope, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	envelope, err := s.GetEnvelopeByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Category != nil {
		envelope.Category = strings.TrimSpace(*req.Category)
	}
	if req.Allocation != nil {
		if math.IsNaN(*req.Allocation) || math.IsInf(*req.Allocation, 0) || *req.Allocation < 0 {
			return nil, fmt.Errorf("allocation must be a non-negative finite number: %w", apperrors.ErrInvalidAmount)
		}
		envelope.Allocation = decimal.NewFromFloat(*req.Allocation)
	}
	if req.Rollover != nil {
		envelope.Rollover = *req.Rollover
	}
	envelope.UpdatedAt = time.Now()

	if err := s.envelopeRepo.UpdateEnvelope(ctx, *envelope); err != nil {
		logger.Error("Failed to update envelope in repository", slog.String("error", err.Error()), slog.Int64("envelope_id", id))
		return nil, err
	}
	return envelope, nil
}

func (s *EnvelopeService) GetEnvelopeByID(ctx context.Context, id int64) (*domain.Envelope, error) {
	envelope, err := s.envelopeRepo.FindEnvelopeByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if envelope.IsDeleted {
		return nil, apperrors.ErrNotFound
	}
	return envelope, nil
}

func (s *EnvelopeService) GetEnvelopeByName(ctx context.Context, name string, userID string) (*domain.Envelope, error) {
	return s.envelopeRepo.FindEnvelopeByName(ctx, strings.TrimSpace(name), userID)
}

// ListEnvelopes returns the active envelopes visible to userID: every shared
// envelope plus the user's own individual ones.
func (s *EnvelopeService) ListEnvelopes(ctx context.Context, userID string) ([]domain.Envelope, error) {
	envelopes, err := s.envelopeRepo.FindActiveEnvelopes(ctx)
	if err != nil {
		return nil, err
	}
	visible := make([]domain.Envelope, 0, len(envelopes))
	for _, e := range envelopes {
		if e.AccessibleBy(userID) {
			visible = append(visible, e)
		}
	}
	return visible, nil
}

func (s *EnvelopeService) ListCategories(ctx context.Context) ([]string, error) {
	return s.envelopeRepo.ListCategories(ctx)
}

// DeleteEnvelope soft-deletes the named envelope. The name is resolved with
// the usual individual-over-shared precedence, so a user can never reach
// another user's individual envelope here. Returns whether a row changed.
func (s *EnvelopeService) DeleteEnvelope(ctx context.Context, name string, userID string) (bool, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	envelope, err := s.envelopeRepo.FindEnvelopeByName(ctx, strings.TrimSpace(name), userID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if envelope.IsIndividual && !envelope.AccessibleBy(userID) {
		logger.Warn("Refused to delete another user's envelope", slog.Int64("envelope_id", envelope.ID), slog.String("user_id", userID))
		return false, nil
	}

	if err := s.envelopeRepo.SoftDeleteEnvelope(ctx, envelope.ID, time.Now()); err != nil {
		logger.Error("Failed to soft-delete envelope", slog.String("error", err.Error()), slog.Int64("envelope_id", envelope.ID))
		return false, err
	}

	logger.Info("Envelope deleted", slog.Int64("envelope_id", envelope.ID), slog.String("name", envelope.Name))
	return true, nil
}

// SeedFromConfig applies seed definitions with create-or-reenable semantics:
// shared seeds once, individual seeds once per configured user. Returns how
// many envelopes were created or revived.
func (s *EnvelopeService) SeedFromConfig(ctx context.Context, seeds []dto.EnvelopeSeed, users []string) (int, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	created := 0
	for _, seed := range seeds {
		reqs := make([]dto.CreateEnvelopeRequest, 0, 1)
		if seed.IsIndividual {
			for _, user := range users {
				u := user
				reqs = append(reqs, dto.CreateEnvelopeRequest{
					Name:         seed.Name,
					Category:     seed.Category,
					Allocation:   seed.Allocation,
					Rollover:     seed.Rollover,
					IsIndividual: true,
					UserID:       &u,
				})
			}
		} else {
			reqs = append(reqs, dto.CreateEnvelopeRequest{
				Name:       seed.Name,
				Category:   seed.Category,
				Allocation: seed.Allocation,
				Rollover:   seed.Rollover,
			})
		}

		for _, req := range reqs {
			_, fresh, err := s.createOrReenable(ctx, req)
			if err != nil {
				return created, fmt.Errorf("seeding envelope %q: %w", seed.Name, err)
			}
			if fresh {
				created++
			}
		}
	}

	logger.Info("Envelope seeding complete", slog.Int("seeds", len(seeds)), slog.Int("created_or_revived", created))
	return created, nil
}
