package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/Abdurahmanit/GroupProject/estate-service/internal/estate/domain"
	"github.com/Abdurahmanit/GroupProject/estate-service/internal/identity"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type accountDocument struct {
	ID           primitive.ObjectID     `bson:"_id,omitempty"`
	Name         string                 `bson:"name"`
	Email        string                 `bson:"email"`
	Phone        string                 `bson:"phone,omitempty"`
	PasswordHash string                 `bson:"password_hash"`
	Status       identity.AccountStatus `bson:"status"`
	CreatedAt    time.Time              `bson:"created_at"`
}

type credentialStore struct {
	role       domain.Role
	collection *mongo.Collection
}

// NewCredentialStore returns the store of one role. Each role of the closed
// set has its own collection.
func NewCredentialStore(db *mongo.Database, role domain.Role) (identity.CredentialStore, error) {
	var name string
	switch role {
	case domain.RoleSeller:
		name = sellersCollection
	case domain.RoleAgent:
		name = agentsCollection
	case domain.RoleAdmin:
		name = adminsCollection
	default:
		return nil, fmt.Errorf("no credential collection for role %q", role)
	}
	return &credentialStore{role: role, collection: db.Collection(name)}, nil
}

func (s *credentialStore) toAccount(d *accountDocument) *identity.Account {
	return &identity.Account{
		ID:           d.ID.Hex(),
		Role:         s.role,
		Name:         d.Name,
		Email:        d.Email,
		Phone:        d.Phone,
		PasswordHash: d.PasswordHash,
		Status:       d.Status,
		CreatedAt:    d.CreatedAt,
	}
}

func (s *credentialStore) Create(ctx context.Context, acc *identity.Account) error {
	doc := accountDocument{
		ID:           primitive.NewObjectID(),
		Name:         acc.Name,
		Email:        acc.Email,
		Phone:        acc.Phone,
		PasswordHash: acc.PasswordHash,
		Status:       acc.Status,
		CreatedAt:    acc.CreatedAt,
	}
	if _, err := s.collection.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s account %s already exists", domain.ErrConflict, s.role, acc.Email)
		}
		return fmt.Errorf("failed to create %s account: %w", s.role, err)
	}
	acc.ID = doc.ID.Hex()
	acc.Role = s.role
	return nil
}

func (s *credentialStore) findOne(ctx context.Context, filter bson.M, what string) (*identity.Account, error) {
	var doc accountDocument
	if err := s.collection.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, translateError(fmt.Sprintf("%s account %s", s.role, what), err)
	}
	return s.toAccount(&doc), nil
}

func (s *credentialStore) FindByEmail(ctx context.Context, email string) (*identity.Account, error) {
	return s.findOne(ctx, bson.M{"email": email}, email)
}

func (s *credentialStore) FindByID(ctx context.Context, id string) (*identity.Account, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s account %s", domain.ErrNotFound, s.role, id)
	}
	return s.findOne(ctx, bson.M{"_id": objID}, id)
}

func (s *credentialStore) SetStatus(ctx context.Context, id string, status identity.AccountStatus) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s account %s", domain.ErrNotFound, s.role, id)
	}
	res, err := s.collection.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$set": bson.M{"status": status}})
	if err != nil {
		return translateError("set account status", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: %s account %s", domain.ErrNotFound, s.role, id)
	}
	return nil
}

func (s *credentialStore) List(ctx context.Context, status identity.AccountStatus) ([]*identity.Account, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	cursor, err := s.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, translateError("list "+string(s.role)+" accounts", err)
	}
	defer cursor.Close(ctx)

	var docs []accountDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, translateError("decode "+string(s.role)+" accounts", err)
	}
	out := make([]*identity.Account, 0, len(docs))
	for i := range docs {
		out = append(out, s.toAccount(&docs[i]))
	}
	return out, nil
}
