package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/Abdurahmanit/GroupProject/estate-service/internal/app/config"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	propertiesCollection = "properties"
	bookingsCollection   = "bookings"
	paymentsCollection   = "payments"
	imagesCollection     = "images"
	enquiriesCollection  = "enquiries"
	feedbackCollection   = "feedback"
	sellersCollection    = "sellers"
	agentsCollection     = "agents"
	adminsCollection     = "admins"

	pingTimeout = 5 * time.Second
)

func NewClient(ctx context.Context, cfg config.MongoDBConfig) (*mongo.Client, error) {
	clientOptions := options.Client().ApplyURI(cfg.URI)
	if cfg.User != "" && cfg.Password != "" {
		clientOptions.SetAuth(options.Credential{
			Username: cfg.User,
			Password: cfg.Password,
		})
	}

	connectTimeout := cfg.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = 10 * time.Second
	}
	connectCtx, cancelConnect := context.WithTimeout(ctx, connectTimeout)
	defer cancelConnect()

	client, err := mongo.Connect(connectCtx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	pingCtx, cancelPing := context.WithTimeout(ctx, pingTimeout)
	defer cancelPing()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}
	return client, nil
}

// EnsureIndexes creates the collections' indexes. Creating an index also
// creates the collection, which multi-document transactions require.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		propertiesCollection: {
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "type", Value: 1}}},
			{Keys: bson.D{{Key: "seller_id", Value: 1}}},
			{Keys: bson.D{{Key: "agent_id", Value: 1}, {Key: "status", Value: 1}}},
		},
		bookingsCollection: {
			{Keys: bson.D{{Key: "property_id", Value: 1}, {Key: "status", Value: 1}}},
			// At most one hold booking per property, enforced by the server too.
			{
				Keys: bson.D{{Key: "property_id", Value: 1}},
				Options: options.Index().
					SetName("one_hold_per_property").
					SetUnique(true).
					SetPartialFilterExpression(bson.M{"status": "hold"}),
			},
		},
		paymentsCollection: {
			{Keys: bson.D{{Key: "booking_id", Value: 1}, {Key: "status", Value: 1}}},
		},
		imagesCollection: {
			{Keys: bson.D{{Key: "property_id", Value: 1}, {Key: "created_at", Value: 1}}},
		},
		enquiriesCollection: {
			{Keys: bson.D{{Key: "agent_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		feedbackCollection: {
			{Keys: bson.D{{Key: "agent_id", Value: 1}}},
		},
		sellersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		agentsCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		adminsCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
	}
	for name, models := range indexes {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", name, err)
		}
	}
	return nil
}
