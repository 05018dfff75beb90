package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/Abdurahmanit/GroupProject/estate-service/internal/estate/domain"
	"github.com/google/uuid"
)

type EnquiryRepository struct {
	mu        sync.RWMutex
	enquiries []*domain.Enquiry
	feedback  []*domain.Feedback
}

func NewEnquiryRepository() *EnquiryRepository {
	return &EnquiryRepository{}
}

func (r *EnquiryRepository) CreateEnquiry(ctx context.Context, e *domain.Enquiry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e.ID = uuid.NewString()
	cp := *e
	r.enquiries = append(r.enquiries, &cp)
	return nil
}

func (r *EnquiryRepository) ListEnquiriesByAgent(ctx context.Context, agentID string) ([]*domain.Enquiry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.Enquiry, 0)
	for _, e := range r.enquiries {
		if e.AgentID == agentID {
			cp := *e
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *EnquiryRepository) CreateFeedback(ctx context.Context, f *domain.Feedback) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	f.ID = uuid.NewString()
	cp := *f
	r.feedback = append(r.feedback, &cp)
	return nil
}
