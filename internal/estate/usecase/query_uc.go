package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/Abdurahmanit/GroupProject/estate-service/internal/estate/domain"
	"github.com/Abdurahmanit/GroupProject/estate-service/internal/estate/policy"
	"github.com/Abdurahmanit/GroupProject/estate-service/internal/platform/logger"
	"go.uber.org/zap"
)

// AgentRoster lists agent accounts for the administrator report.
type AgentRoster interface {
	AgentProfiles(ctx context.Context) ([]domain.AgentProfile, error)
}

// QueryUsecase serves the read paths. Nothing here takes a property scope.
type QueryUsecase struct {
	reader domain.PropertyReader
	cache  domain.PropertyCache
	agents AgentRoster
	logger *logger.Logger
}

// NewQueryUsecase builds the read side. cache and agents may be nil.
func NewQueryUsecase(reader domain.PropertyReader, cache domain.PropertyCache, agents AgentRoster, log *logger.Logger) *QueryUsecase {
	return &QueryUsecase{reader: reader, cache: cache, agents: agents, logger: log.Named("query_uc")}
}

// GetProperty returns a property with its images. Pending listings are only
// visible to staff and to their seller; live and sold ones are public.
func (uc *QueryUsecase) GetProperty(ctx context.Context, actor domain.Actor, id string) (*domain.PropertyDetails, error) {
	details, err := uc.details(ctx, id)
	if err != nil {
		return nil, err
	}
	p := details.Property
	if p.Status == domain.StatusPending && !actor.IsStaff() && p.SellerID != actor.ID {
		return nil, fmt.Errorf("%w: property %s", domain.ErrNotFound, id)
	}
	return details, nil
}

// details is cache-aside. The cache generation is read before the store so a
// fill that raced an invalidation is refused instead of stored.
func (uc *QueryUsecase) details(ctx context.Context, id string) (*domain.PropertyDetails, error) {
	var generation int64
	fill := false
	if uc.cache != nil {
		cached, err := uc.cache.GetProperty(ctx, id)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			uc.logger.Warn("QueryUsecase.GetProperty: cache read failed", zap.String("property_id", id), zap.Error(err))
		}
		if generation, err = uc.cache.Generation(ctx, id); err == nil {
			fill = true
		} else {
			uc.logger.Warn("QueryUsecase.GetProperty: cache generation read failed", zap.String("property_id", id), zap.Error(err))
		}
	}

	p, err := uc.reader.GetProperty(ctx, id)
	if err != nil {
		return nil, err
	}
	images, err := uc.reader.ListImages(ctx, id)
	if err != nil {
		return nil, err
	}
	details := &domain.PropertyDetails{Property: p, Images: images, PrimaryImage: domain.PrimaryImage(images)}

	if fill {
		err := uc.cache.SetProperty(ctx, details, generation)
		switch {
		case errors.Is(err, domain.ErrConflict):
			uc.logger.Debug("QueryUsecase.GetProperty: cache fill superseded", zap.String("property_id", id))
		case err != nil:
			uc.logger.Warn("QueryUsecase.GetProperty: cache write failed", zap.String("property_id", id), zap.Error(err))
		}
	}
	return details, nil
}

// ListLive lists live properties, optionally of one type.
func (uc *QueryUsecase) ListLive(ctx context.Context, propertyType domain.PropertyType) ([]*domain.Property, error) {
	if propertyType != "" && !propertyType.IsValid() {
		return nil, fmt.Errorf("%w: unknown property type %q", domain.ErrValidation, propertyType)
	}
	return uc.reader.ListProperties(ctx, domain.PropertyFilter{Status: domain.StatusLive, Type: propertyType})
}

// ListPending is the verification queue.
func (uc *QueryUsecase) ListPending(ctx context.Context, actor domain.Actor) ([]*domain.Property, error) {
	if err := policy.Authorize(actor, policy.OpViewQueue); err != nil {
		return nil, err
	}
	return uc.reader.ListProperties(ctx, domain.PropertyFilter{Status: domain.StatusPending})
}

// ListBySeller returns every listing of the calling seller.
func (uc *QueryUsecase) ListBySeller(ctx context.Context, actor domain.Actor) ([]*domain.Property, error) {
	if err := policy.Authorize(actor, policy.OpViewOwn); err != nil {
		return nil, err
	}
	return uc.reader.ListProperties(ctx, domain.PropertyFilter{SellerID: actor.ID})
}

func (uc *QueryUsecase) ListHeldBookings(ctx context.Context, actor domain.Actor) ([]*domain.Booking, error) {
	if err := policy.Authorize(actor, policy.OpViewQueue); err != nil {
		return nil, err
	}
	return uc.reader.ListBookings(ctx, domain.BookingStatusHold)
}

// SellerStats tallies the calling seller's listings.
func (uc *QueryUsecase) SellerStats(ctx context.Context, actor domain.Actor) (domain.PropertyCounts, error) {
	if err := policy.Authorize(actor, policy.OpViewOwn); err != nil {
		return domain.PropertyCounts{}, err
	}
	return uc.reader.CountProperties(ctx, domain.PropertyFilter{SellerID: actor.ID})
}

// AgentStats tallies the listings the calling agent verified and the size of
// the verification queue.
func (uc *QueryUsecase) AgentStats(ctx context.Context, actor domain.Actor) (*domain.AgentStats, error) {
	if err := policy.Authorize(actor, policy.OpViewAssigned); err != nil {
		return nil, err
	}
	assigned, err := uc.reader.CountProperties(ctx, domain.PropertyFilter{AgentID: actor.ID})
	if err != nil {
		return nil, err
	}
	queue, err := uc.reader.CountProperties(ctx, domain.PropertyFilter{Status: domain.StatusPending})
	if err != nil {
		return nil, err
	}
	return &domain.AgentStats{Assigned: assigned, PendingQueue: queue.Total}, nil
}

// AdminReport builds the administrator dashboard. Every known agent gets a
// row; agents counted in the store but missing from the roster are appended
// with only their id.
func (uc *QueryUsecase) AdminReport(ctx context.Context, actor domain.Actor) (*domain.AdminReport, error) {
	if err := policy.Authorize(actor, policy.OpViewReports); err != nil {
		return nil, err
	}
	totals, err := uc.reader.CountProperties(ctx, domain.PropertyFilter{})
	if err != nil {
		return nil, err
	}
	byAgent, err := uc.reader.CountPropertiesByAgent(ctx)
	if err != nil {
		return nil, err
	}

	var profiles []domain.AgentProfile
	if uc.agents != nil {
		if profiles, err = uc.agents.AgentProfiles(ctx); err != nil {
			return nil, err
		}
	}

	report := &domain.AdminReport{Properties: totals, ByAgent: make([]domain.AgentReport, 0, len(profiles))}
	seen := make(map[string]bool, len(profiles))
	for _, agent := range profiles {
		seen[agent.ID] = true
		report.Agents++
		if agent.Status == "pending" {
			report.PendingAgents++
		}
		report.ByAgent = append(report.ByAgent, domain.AgentReport{Agent: agent, Properties: byAgent[agent.ID]})
	}
	orphans := make([]string, 0)
	for id := range byAgent {
		if !seen[id] {
			orphans = append(orphans, id)
		}
	}
	sort.Strings(orphans)
	for _, id := range orphans {
		report.ByAgent = append(report.ByAgent, domain.AgentReport{Agent: domain.AgentProfile{ID: id}, Properties: byAgent[id]})
	}
	return report, nil
}
