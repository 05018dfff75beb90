package mongodb

import (
	"context"

	"github.com/Abdurahmanit/GroupProject/estate-service/internal/estate/domain"
	"github.com/Abdurahmanit/GroupProject/estate-service/internal/platform/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

type enquiryRepository struct {
	enquiries *mongo.Collection
	feedback  *mongo.Collection
	log       *logger.Logger
}

func NewEnquiryRepository(db *mongo.Database, log *logger.Logger) domain.EnquiryRepository {
	return &enquiryRepository{
		enquiries: db.Collection(enquiriesCollection),
		feedback:  db.Collection(feedbackCollection),
		log:       log.Named("enquiry_repo"),
	}
}

func (r *enquiryRepository) CreateEnquiry(ctx context.Context, e *domain.Enquiry) error {
	doc := enquiryDocument{
		ID:         primitive.NewObjectID(),
		PropertyID: e.PropertyID,
		AgentID:    e.AgentID,
		SenderID:   e.SenderID,
		BuyerName:  e.BuyerName,
		BuyerPhone: e.BuyerPhone,
		Message:    e.Message,
		CreatedAt:  e.CreatedAt,
	}
	if _, err := r.enquiries.InsertOne(ctx, doc); err != nil {
		r.log.Error("failed to insert enquiry", zap.String("property_id", e.PropertyID), zap.Error(err))
		return translateError("insert enquiry", err)
	}
	e.ID = doc.ID.Hex()
	return nil
}

func (r *enquiryRepository) ListEnquiriesByAgent(ctx context.Context, agentID string) ([]*domain.Enquiry, error) {
	cursor, err := r.enquiries.Find(ctx, bson.M{"agent_id": agentID}, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, translateError("list enquiries", err)
	}
	defer cursor.Close(ctx)

	var docs []enquiryDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, translateError("decode enquiries", err)
	}
	out := make([]*domain.Enquiry, 0, len(docs))
	for i := range docs {
		out = append(out, toDomainEnquiry(&docs[i]))
	}
	return out, nil
}

func (r *enquiryRepository) CreateFeedback(ctx context.Context, f *domain.Feedback) error {
	doc := feedbackDocument{
		ID:        primitive.NewObjectID(),
		AgentID:   f.AgentID,
		AuthorID:  f.AuthorID,
		Rating:    f.Rating,
		Comment:   f.Comment,
		CreatedAt: f.CreatedAt,
	}
	if _, err := r.feedback.InsertOne(ctx, doc); err != nil {
		r.log.Error("failed to insert feedback", zap.String("agent_id", f.AgentID), zap.Error(err))
		return translateError("insert feedback", err)
	}
	f.ID = doc.ID.Hex()
	return nil
}
