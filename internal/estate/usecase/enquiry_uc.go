package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Abdurahmanit/GroupProject/estate-service/internal/estate/domain"
	"github.com/Abdurahmanit/GroupProject/estate-service/internal/estate/policy"
	"github.com/Abdurahmanit/GroupProject/estate-service/internal/platform/logger"
	"go.uber.org/zap"
)

// AgentDirectory confirms that a feedback target is a known agent.
type AgentDirectory interface {
	AgentExists(ctx context.Context, id string) error
}

// EnquiryInput is what a visitor fills in on a live listing.
type EnquiryInput struct {
	Name    string
	Phone   string
	Message string
}

type EnquiryUsecase struct {
	reader    domain.PropertyReader
	enquiries domain.EnquiryRepository
	agents    AgentDirectory
	fx        *Effects
	logger    *logger.Logger
}

// NewEnquiryUsecase wires the enquiry flow. agents may be nil, in which case
// feedback targets are not checked.
func NewEnquiryUsecase(reader domain.PropertyReader, enquiries domain.EnquiryRepository, agents AgentDirectory, fx *Effects, log *logger.Logger) *EnquiryUsecase {
	return &EnquiryUsecase{
		reader:    reader,
		enquiries: enquiries,
		agents:    agents,
		fx:        fx,
		logger:    log.Named("enquiry_uc"),
	}
}

// Send records an enquiry addressed to the agent of a live property.
func (uc *EnquiryUsecase) Send(ctx context.Context, actor domain.Actor, propertyID string, in EnquiryInput) (id string, err error) {
	ctx, end := uc.fx.begin(ctx, "EnquiryUsecase.Send", actor)
	defer func() { end(err) }()

	if err := policy.Authorize(actor, policy.OpSendEnquiry); err != nil {
		return "", err
	}
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Phone) == "" {
		return "", fmt.Errorf("%w: name and phone are required", domain.ErrValidation)
	}
	if strings.TrimSpace(in.Message) == "" {
		return "", fmt.Errorf("%w: message cannot be empty", domain.ErrValidation)
	}

	p, err := uc.reader.GetProperty(ctx, propertyID)
	if err != nil {
		return "", err
	}
	if p.Status != domain.StatusLive {
		return "", fmt.Errorf("%w: property %s is not live", domain.ErrConflict, propertyID)
	}

	e := &domain.Enquiry{
		PropertyID: p.ID,
		AgentID:    p.AgentID,
		SenderID:   actor.ID,
		BuyerName:  strings.TrimSpace(in.Name),
		BuyerPhone: strings.TrimSpace(in.Phone),
		Message:    strings.TrimSpace(in.Message),
		CreatedAt:  time.Now().UTC(),
	}
	if err := uc.enquiries.CreateEnquiry(ctx, e); err != nil {
		uc.logger.Error("EnquiryUsecase.Send: failed to store enquiry", zap.String("property_id", propertyID), zap.Error(err))
		return "", err
	}

	uc.logger.Info("EnquiryUsecase.Send: enquiry created", zap.String("enquiry_id", e.ID), zap.String("agent_id", e.AgentID))
	uc.fx.publish(ctx, SubjectEnquiryCreated, EnquiryEvent{
		EnquiryID:  e.ID,
		PropertyID: e.PropertyID,
		AgentID:    e.AgentID,
		OccurredAt: e.CreatedAt,
	})
	return e.ID, nil
}

// ListForAgent returns the enquiries addressed to the calling agent. An
// administrator sees nothing here because no property is assigned to one.
func (uc *EnquiryUsecase) ListForAgent(ctx context.Context, actor domain.Actor) ([]*domain.Enquiry, error) {
	if err := policy.Authorize(actor, policy.OpViewQueue); err != nil {
		return nil, err
	}
	return uc.enquiries.ListEnquiriesByAgent(ctx, actor.ID)
}

func (uc *EnquiryUsecase) Feedback(ctx context.Context, actor domain.Actor, agentID string, rating int32, comment string) (id string, err error) {
	ctx, end := uc.fx.begin(ctx, "EnquiryUsecase.Feedback", actor)
	defer func() { end(err) }()

	if err := policy.Authorize(actor, policy.OpLeaveFeedback); err != nil {
		return "", err
	}
	f, err := domain.NewFeedback(agentID, actor.ID, rating, comment)
	if err != nil {
		return "", err
	}
	if uc.agents != nil {
		if err := uc.agents.AgentExists(ctx, agentID); err != nil {
			return "", err
		}
	}
	if err := uc.enquiries.CreateFeedback(ctx, f); err != nil {
		return "", err
	}
	uc.logger.Info("EnquiryUsecase.Feedback: feedback stored", zap.String("agent_id", agentID), zap.Int32("rating", rating))
	return f.ID, nil
}
