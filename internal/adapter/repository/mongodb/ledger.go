package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Abdurahmanit/GroupProject/estate-service/internal/estate/domain"
	"github.com/Abdurahmanit/GroupProject/estate-service/internal/platform/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
	"go.uber.org/zap"
)

const (
	writeConflictCode = 112
	duplicateKeyCode  = 11000
	abortTimeout      = 5 * time.Second
)

// Locker queues contenders for a key before they open a transaction.
type Locker interface {
	WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error
}

type Ledger struct {
	client     *mongo.Client
	properties *mongo.Collection
	bookings   *mongo.Collection
	payments   *mongo.Collection
	images     *mongo.Collection
	locker     Locker
	txTimeout  time.Duration
	log        *logger.Logger
}

// NewLedger returns a Mongo backed ledger. locker may be nil.
func NewLedger(client *mongo.Client, database string, locker Locker, txTimeout time.Duration, log *logger.Logger) *Ledger {
	db := client.Database(database)
	return &Ledger{
		client:     client,
		properties: db.Collection(propertiesCollection),
		bookings:   db.Collection(bookingsCollection),
		payments:   db.Collection(paymentsCollection),
		images:     db.Collection(imagesCollection),
		locker:     locker,
		txTimeout:  txTimeout,
		log:        log.Named("mongo_ledger"),
	}
}

func (l *Ledger) CreateProperty(ctx context.Context, p *domain.Property) error {
	p.Version = 1
	doc, err := toPropertyDocument(p)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	doc.ID = primitive.NewObjectID()
	if _, err := l.properties.InsertOne(ctx, doc); err != nil {
		return translateError("insert property", err)
	}
	p.ID = doc.ID.Hex()
	l.log.Debug("property created", zap.String("property_id", p.ID))
	return nil
}

func (l *Ledger) WithinProperty(ctx context.Context, propertyID string, fn func(ctx context.Context, tx domain.LedgerTx) error) error {
	objID, err := primitive.ObjectIDFromHex(propertyID)
	if err != nil {
		return fmt.Errorf("%w: property %s", domain.ErrNotFound, propertyID)
	}
	if l.txTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.txTimeout)
		defer cancel()
	}

	run := func(ctx context.Context) error {
		return l.runTransaction(ctx, objID, fn)
	}
	if l.locker == nil {
		return run(ctx)
	}
	return l.locker.WithLock(ctx, "property:"+propertyID, run)
}

// runTransaction opens one snapshot transaction. Its first write bumps the
// property's lock_seq so concurrent scopes on the same property abort with a
// write conflict instead of interleaving.
func (l *Ledger) runTransaction(ctx context.Context, objID primitive.ObjectID, fn func(ctx context.Context, tx domain.LedgerTx) error) error {
	sess, err := l.client.StartSession()
	if err != nil {
		return fmt.Errorf("%w: start session: %v", domain.ErrTransient, err)
	}
	defer sess.EndSession(context.Background())

	txnOpts := options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority())
	if err := sess.StartTransaction(txnOpts); err != nil {
		return fmt.Errorf("%w: start transaction: %v", domain.ErrTransient, err)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		abortCtx, cancel := context.WithTimeout(context.Background(), abortTimeout)
		defer cancel()
		if err := sess.AbortTransaction(abortCtx); err != nil {
			l.log.Warn("abort transaction failed", zap.String("property_id", objID.Hex()), zap.Error(err))
		}
	}()

	sc := mongo.NewSessionContext(ctx, sess)
	res, err := l.properties.UpdateOne(sc, bson.M{"_id": objID}, bson.M{"$inc": bson.M{"lock_seq": 1}})
	if err != nil {
		return translateError("claim property", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: property %s", domain.ErrNotFound, objID.Hex())
	}

	if err := fn(sc, &ledgerTx{l: l, propertyID: objID.Hex()}); err != nil {
		l.log.Debug("scope rolled back", zap.String("property_id", objID.Hex()), zap.Error(err))
		return err
	}
	if err := sess.CommitTransaction(sc); err != nil {
		return translateError("commit", err)
	}
	committed = true
	return nil
}

// translateError maps driver errors onto the domain taxonomy.
func translateError(op string, err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, op)
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %s: %v", domain.ErrTransient, op, err)
	}
	var se mongo.ServerError
	if errors.As(err, &se) {
		switch {
		case se.HasErrorCode(duplicateKeyCode):
			return fmt.Errorf("%w: %s: duplicate key", domain.ErrConflict, op)
		case se.HasErrorLabel("TransientTransactionError"),
			se.HasErrorLabel("UnknownTransactionCommitResult"),
			se.HasErrorCode(writeConflictCode):
			return fmt.Errorf("%w: %s: %v", domain.ErrTransient, op, err)
		}
	}
	if mongo.IsTimeout(err) || mongo.IsNetworkError(err) {
		return fmt.Errorf("%w: %s: %v", domain.ErrTransient, op, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (l *Ledger) ReadBooking(ctx context.Context, id string) (*domain.Booking, error) {
	return findBooking(ctx, l.bookings, id)
}

func (l *Ledger) ReadPayment(ctx context.Context, id string) (*domain.Payment, error) {
	return findPayment(ctx, l.payments, id)
}

func (l *Ledger) GetProperty(ctx context.Context, id string) (*domain.Property, error) {
	return findProperty(ctx, l.properties, id)
}

func propertyQuery(filter domain.PropertyFilter) bson.M {
	query := bson.M{}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.Type != "" {
		query["type"] = filter.Type
	}
	if filter.SellerID != "" {
		query["seller_id"] = filter.SellerID
	}
	if filter.AgentID != "" {
		query["agent_id"] = filter.AgentID
	}
	return query
}

func (l *Ledger) ListProperties(ctx context.Context, filter domain.PropertyFilter) ([]*domain.Property, error) {
	cursor, err := l.properties.Find(ctx, propertyQuery(filter), options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, translateError("list properties", err)
	}
	defer cursor.Close(ctx)

	var docs []propertyDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, translateError("decode properties", err)
	}
	out := make([]*domain.Property, 0, len(docs))
	for i := range docs {
		p, err := toDomainProperty(&docs[i])
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (l *Ledger) ListImages(ctx context.Context, propertyID string) ([]*domain.Image, error) {
	cursor, err := l.images.Find(ctx, bson.M{"property_id": propertyID}, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, translateError("list images", err)
	}
	defer cursor.Close(ctx)

	var docs []imageDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, translateError("decode images", err)
	}
	out := make([]*domain.Image, 0, len(docs))
	for i := range docs {
		out = append(out, toDomainImage(&docs[i]))
	}
	return out, nil
}

func (l *Ledger) ListBookings(ctx context.Context, status domain.BookingStatus) ([]*domain.Booking, error) {
	query := bson.M{}
	if status != "" {
		query["status"] = status
	}
	cursor, err := l.bookings.Find(ctx, query, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, translateError("list bookings", err)
	}
	defer cursor.Close(ctx)

	var docs []bookingDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, translateError("decode bookings", err)
	}
	out := make([]*domain.Booking, 0, len(docs))
	for i := range docs {
		out = append(out, toDomainBooking(&docs[i]))
	}
	return out, nil
}

type statusCount struct {
	ID struct {
		AgentID string                `bson:"agent_id"`
		Status  domain.PropertyStatus `bson:"status"`
	} `bson:"_id"`
	Count int64 `bson:"count"`
}

func (l *Ledger) aggregateStatus(ctx context.Context, match bson.M, group bson.M) ([]statusCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{"_id": group, "count": bson.M{"$sum": 1}}}},
	}
	cursor, err := l.properties.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, translateError("count properties", err)
	}
	defer cursor.Close(ctx)

	var rows []statusCount
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, translateError("decode property counts", err)
	}
	return rows, nil
}

func (l *Ledger) CountProperties(ctx context.Context, filter domain.PropertyFilter) (domain.PropertyCounts, error) {
	rows, err := l.aggregateStatus(ctx, propertyQuery(filter), bson.M{"status": "$status"})
	if err != nil {
		return domain.PropertyCounts{}, err
	}
	var counts domain.PropertyCounts
	for _, r := range rows {
		counts.Add(r.ID.Status, r.Count)
	}
	return counts, nil
}

func (l *Ledger) CountPropertiesByAgent(ctx context.Context) (map[string]domain.PropertyCounts, error) {
	match := bson.M{"agent_id": bson.M{"$nin": bson.A{"", nil}}}
	rows, err := l.aggregateStatus(ctx, match, bson.M{"agent_id": "$agent_id", "status": "$status"})
	if err != nil {
		return nil, err
	}
	out := make(map[string]domain.PropertyCounts)
	for _, r := range rows {
		counts := out[r.ID.AgentID]
		counts.Add(r.ID.Status, r.Count)
		out[r.ID.AgentID] = counts
	}
	return out, nil
}

func findProperty(ctx context.Context, coll *mongo.Collection, id string) (*domain.Property, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: property %s", domain.ErrNotFound, id)
	}
	var doc propertyDocument
	if err := coll.FindOne(ctx, bson.M{"_id": objID}).Decode(&doc); err != nil {
		return nil, translateError("property "+id, err)
	}
	return toDomainProperty(&doc)
}

func findBooking(ctx context.Context, coll *mongo.Collection, id string) (*domain.Booking, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: booking %s", domain.ErrNotFound, id)
	}
	var doc bookingDocument
	if err := coll.FindOne(ctx, bson.M{"_id": objID}).Decode(&doc); err != nil {
		return nil, translateError("booking "+id, err)
	}
	return toDomainBooking(&doc), nil
}

func findPayment(ctx context.Context, coll *mongo.Collection, id string) (*domain.Payment, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: payment %s", domain.ErrNotFound, id)
	}
	var doc paymentDocument
	if err := coll.FindOne(ctx, bson.M{"_id": objID}).Decode(&doc); err != nil {
		return nil, translateError("payment "+id, err)
	}
	return toDomainPayment(&doc)
}
