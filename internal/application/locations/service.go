package locations

import (
	"context"
	"strings"

	"easyshifthq-backend/internal/application/policies"
	"easyshifthq-backend/internal/domain"
	"easyshifthq-backend/internal/pkg/constants"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Service manages the work locations of a tenant.
type Service struct {
	Store domain.UnitOfWork
}

// Input is the editable payload for create and update.
type Input struct {
	Name             string  `json:"name"`
	Address          string  `json:"address"`
	TimeZone         string  `json:"time_zone"`
	JurisdictionCode *string `json:"jurisdiction_code"`
	Notes            *string `json:"notes"`
}

func (in Input) fields() domain.LocationFields {
	return domain.LocationFields{
		Name:             in.Name,
		Address:          in.Address,
		TimeZone:         in.TimeZone,
		JurisdictionCode: in.JurisdictionCode,
		Notes:            in.Notes,
	}
}

type ListResult struct {
	TotalCount    int64             `json:"total_count"`
	FilteredCount int64             `json:"filtered_count"`
	Items         []domain.Location `json:"items"`
}

func (s *Service) Get(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Location, error) {
	if err := policies.RequirePermission(actor, constants.LocationView); err != nil {
		return nil, err
	}
	return s.Store.Locations().Get(ctx, actor.TenantID, id)
}

// List returns one page of locations with the unfiltered and filtered totals.
func (s *Service) List(ctx context.Context, actor domain.Actor, f domain.LocationFilter) (*ListResult, error) {
	if err := policies.RequirePermission(actor, constants.LocationView); err != nil {
		return nil, err
	}
	p, err := s.Store.Locations().List(ctx, actor.TenantID, f)
	if err != nil {
		return nil, err
	}
	items := p.Items
	if items == nil {
		items = []domain.Location{}
	}
	return &ListResult{TotalCount: p.TotalCount, FilteredCount: p.FilteredCount, Items: items}, nil
}

func (s *Service) Active(ctx context.Context, actor domain.Actor) ([]domain.Location, error) {
	if err := policies.RequirePermission(actor, constants.LocationView); err != nil {
		return nil, err
	}
	return s.Store.Locations().ListActive(ctx, actor.TenantID)
}

func (s *Service) ByJurisdiction(ctx context.Context, actor domain.Actor, code string) ([]domain.Location, error) {
	if err := policies.RequirePermission(actor, constants.LocationView); err != nil {
		return nil, err
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, domain.Validation("jurisdiction_code", "Jurisdiction code is required")
	}
	return s.Store.Locations().ListByJurisdiction(ctx, actor.TenantID, code)
}

func (s *Service) ByTimeZone(ctx context.Context, actor domain.Actor, tz string) ([]domain.Location, error) {
	if err := policies.RequirePermission(actor, constants.LocationView); err != nil {
		return nil, err
	}
	tz = strings.TrimSpace(tz)
	if tz == "" {
		return nil, domain.Validation("time_zone", "Time zone is required")
	}
	return s.Store.Locations().ListByTimeZone(ctx, actor.TenantID, tz)
}

func (s *Service) Create(ctx context.Context, actor domain.Actor, in Input) (*domain.Location, error) {
	if err := policies.RequirePermission(actor, constants.LocationCreate); err != nil {
		return nil, err
	}
	l, err := domain.NewLocation(actor.TenantID, in.fields())
	if err != nil {
		return nil, err
	}
	if err := s.Store.Locations().Insert(ctx, l); err != nil {
		return nil, err
	}
	log.Info().Str("location_id", l.ID.String()).Str("name", l.Name).Msg("location created")
	return l, nil
}

func (s *Service) Update(ctx context.Context, actor domain.Actor, id uuid.UUID, in Input) (*domain.Location, error) {
	if err := policies.RequirePermission(actor, constants.LocationEdit); err != nil {
		return nil, err
	}
	return s.mutate(ctx, actor, id, func(l *domain.Location) error {
		return l.Update(in.fields())
	})
}

// SetActive toggles whether the location is offered for scheduling.
func (s *Service) SetActive(ctx context.Context, actor domain.Actor, id uuid.UUID, active bool) (*domain.Location, error) {
	if err := policies.RequirePermission(actor, constants.LocationManageActivity); err != nil {
		return nil, err
	}
	return s.mutate(ctx, actor, id, func(l *domain.Location) error {
		l.SetActive(active)
		return nil
	})
}

func (s *Service) Delete(ctx context.Context, actor domain.Actor, id uuid.UUID) error {
	if err := policies.RequirePermission(actor, constants.LocationDelete); err != nil {
		return err
	}
	if err := s.Store.Locations().Delete(ctx, actor.TenantID, id); err != nil {
		return err
	}
	log.Info().Str("location_id", id.String()).Msg("location deleted")
	return nil
}

func (s *Service) mutate(ctx context.Context, actor domain.Actor, id uuid.UUID, apply func(*domain.Location) error) (*domain.Location, error) {
	var l *domain.Location
	err := s.Store.Transaction(ctx, func(tx domain.Repositories) error {
		var err error
		l, err = tx.Locations().Get(ctx, actor.TenantID, id)
		if err != nil {
			return err
		}
		if err := apply(l); err != nil {
			return err
		}
		return tx.Locations().Update(ctx, l)
	})
	if err != nil {
		return nil, err
	}
	return l, nil
}
