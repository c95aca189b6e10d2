package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/mamadbah2/pigfarm/internal/domain/models"
	"github.com/mamadbah2/pigfarm/internal/repository"
)

const (
	collSows       = "sows"
	collBoars      = "boars"
	collBreedings  = "breedings"
	collFarrowings = "farrowings"
	collPiglets    = "piglets"
	collPens       = "pens"
	collHealth     = "health_records"
	collFeed       = "feed_records"
	collUsers      = "users"
	collLogs       = "activity_logs"
	collSettings   = "settings"
)

var _ repository.Store = (*MongoDBRepository)(nil)

// MongoDBRepository implements repository.Store on MongoDB. Transactions need
// a replica set or sharded cluster.
type MongoDBRepository struct {
	client *mongo.Client
	db     *mongo.Database
	logger *zap.Logger
}

// NewMongoDBRepository connects, pings and makes sure every index exists.
func NewMongoDBRepository(ctx context.Context, uri string, dbName string, logger *zap.Logger) (*MongoDBRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	r := &MongoDBRepository{
		client: client,
		db:     client.Database(dbName),
		logger: logger,
	}

	if err := r.EnsureIndexes(ctx); err != nil {
		return nil, err
	}

	return r, nil
}

// EnsureIndexes creates the unique indexes the domain relies on. The unique
// index on farrowings.breeding_id is what keeps a breeding to one farrowing
// when two writers pass validation at the same time.
func (r *MongoDBRepository) EnsureIndexes(ctx context.Context) error {
	unique := func(field string) mongo.IndexModel {
		return mongo.IndexModel{
			Keys:    bson.D{{Key: field, Value: 1}},
			Options: options.Index().SetUnique(true).SetName(field + "_unique"),
		}
	}
	plain := func(field string) mongo.IndexModel {
		return mongo.IndexModel{Keys: bson.D{{Key: field, Value: 1}}}
	}

	specs := map[string][]mongo.IndexModel{
		collSows:       {unique("tag_number")},
		collBoars:      {unique("tag_number")},
		collFarrowings: {unique("breeding_id"), plain("sow_id")},
		collBreedings:  {plain("sow_id"), plain("boar_id")},
		collPiglets:    {plain("farrowing_id")},
		collPens:       {unique("pen_number")},
		collUsers:      {unique("username")},
		collLogs:       {plain("created_at")},
	}

	for name, idx := range specs {
		if _, err := r.db.Collection(name).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("create indexes on %s: %w", name, err)
		}
	}

	r.logger.Debug("mongodb indexes ensured", zap.Int("collections", len(specs)))
	return nil
}

// RunInTransaction runs fn inside a multi-document transaction. The context
// handed to fn carries the session and must be used for every call.
func (r *MongoDBRepository) RunInTransaction(ctx context.Context, fn func(ctx context.Context, tx repository.Tx) error) error {
	session, err := r.client.StartSession()
	if err != nil {
		return fmt.Errorf("start mongodb session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (any, error) {
		return nil, fn(sessCtx, &txn{db: r.db})
	})
	return err
}

// View runs fn without a transaction.
func (r *MongoDBRepository) View(ctx context.Context, fn func(ctx context.Context, tx repository.Tx) error) error {
	return fn(ctx, &txn{db: r.db})
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

type txn struct {
	db *mongo.Database
}

func (t *txn) Sows() repository.Collection[models.Sow] {
	return &collection[models.Sow]{coll: t.db.Collection(collSows)}
}

func (t *txn) Boars() repository.Collection[models.Boar] {
	return &collection[models.Boar]{coll: t.db.Collection(collBoars)}
}

func (t *txn) Breedings() repository.Collection[models.Breeding] {
	return &collection[models.Breeding]{coll: t.db.Collection(collBreedings)}
}

func (t *txn) Farrowings() repository.Collection[models.Farrowing] {
	return &collection[models.Farrowing]{coll: t.db.Collection(collFarrowings)}
}

func (t *txn) Piglets() repository.Collection[models.Piglet] {
	return &collection[models.Piglet]{coll: t.db.Collection(collPiglets)}
}

func (t *txn) Pens() repository.Collection[models.Pen] {
	return &collection[models.Pen]{coll: t.db.Collection(collPens)}
}

func (t *txn) HealthRecords() repository.Collection[models.HealthRecord] {
	return &collection[models.HealthRecord]{coll: t.db.Collection(collHealth)}
}

func (t *txn) FeedRecords() repository.Collection[models.FeedRecord] {
	return &collection[models.FeedRecord]{coll: t.db.Collection(collFeed)}
}

func (t *txn) Users() repository.Collection[models.User] {
	return &collection[models.User]{coll: t.db.Collection(collUsers)}
}

func (t *txn) ActivityLogs() repository.Collection[models.ActivityLog] {
	return &collection[models.ActivityLog]{coll: t.db.Collection(collLogs)}
}

func (t *txn) Settings() repository.Collection[models.Setting] {
	return &collection[models.Setting]{coll: t.db.Collection(collSettings)}
}

func (t *txn) DeletePigletsByFarrowing(ctx context.Context, farrowingID string) (int64, error) {
	res, err := t.db.Collection(collPiglets).DeleteMany(ctx, bson.M{"farrowing_id": farrowingID})
	if err != nil {
		return 0, fmt.Errorf("delete piglets of farrowing %s: %w", farrowingID, err)
	}
	return res.DeletedCount, nil
}

func (t *txn) DeleteActivityLogsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := t.db.Collection(collLogs).DeleteMany(ctx, bson.M{"created_at": bson.M{"$lt": cutoff}})
	if err != nil {
		return 0, fmt.Errorf("delete activity logs before %s: %w", cutoff.Format(time.RFC3339), err)
	}
	return res.DeletedCount, nil
}

type collection[T models.Record] struct {
	coll *mongo.Collection
}

func (c *collection[T]) Get(ctx context.Context, id string) (T, error) {
	var record T
	err := c.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&record)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return record, repository.ErrNotFound
	}
	if err != nil {
		return record, fmt.Errorf("find %s %s: %w", c.coll.Name(), id, err)
	}
	return record, nil
}

func (c *collection[T]) List(ctx context.Context) ([]T, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := c.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", c.coll.Name(), err)
	}

	out := make([]T, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", c.coll.Name(), err)
	}
	return out, nil
}

func (c *collection[T]) Insert(ctx context.Context, record T) error {
	if _, err := c.coll.InsertOne(ctx, record); err != nil {
		return translateWriteError(c.coll.Name(), err)
	}
	return nil
}

func (c *collection[T]) Replace(ctx context.Context, record T) error {
	res, err := c.coll.ReplaceOne(ctx, bson.M{"_id": record.Key()}, record)
	if err != nil {
		return translateWriteError(c.coll.Name(), err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (c *collection[T]) Delete(ctx context.Context, id string) error {
	res, err := c.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete %s %s: %w", c.coll.Name(), id, err)
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func translateWriteError(coll string, err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: %s: %v", repository.ErrDuplicateKey, coll, err)
	}
	return fmt.Errorf("write %s: %w", coll, err)
}
