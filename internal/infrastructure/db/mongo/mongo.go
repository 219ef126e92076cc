package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/micromarket/marketplace-api/internal/core/domain"
)

const defaultTimeout = 10 * time.Second

// Config captures the minimal settings required to establish a MongoDB connection.
type Config struct {
	URI      string
	Database string
	AppName  string
	Timeout  time.Duration
}

// Connect establishes a MongoDB client, verifies connectivity with a ping, and
// returns both the client and the selected database. A default timeout is
// applied when none is provided.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	opts := options.Client().ApplyURI(cfg.URI)
	if cfg.AppName != "" {
		opts.SetAppName(cfg.AppName)
	}

	client, err := mongo.Connect(connectCtx, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(connectCtx)
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}

	db := client.Database(cfg.Database)
	return client, db, nil
}

// objectID parses a hex id. Malformed ids are a client error, not a miss.
func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, domain.Invalid("invalid id %q", id)
	}
	return oid, nil
}

// searchFilter builds a case-insensitive substring match over q.Fields. The
// search text is matched literally.
func searchFilter(q domain.ListQuery) bson.M {
	if q.Search == "" || len(q.Fields) == 0 {
		return bson.M{}
	}
	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(q.Search), Options: "i"}
	or := make(bson.A, 0, len(q.Fields))
	for _, f := range q.Fields {
		or = append(or, bson.M{f: pattern})
	}
	return bson.M{"$or": or}
}

// listOptions applies paging and creation-time ordering, with _id as tie-break.
func listOptions(q domain.ListQuery) *options.FindOptions {
	dir := -1
	if q.Sort == domain.OldestFirst {
		dir = 1
	}
	return options.Find().
		SetSort(bson.D{{Key: "created_at", Value: dir}, {Key: "_id", Value: dir}}).
		SetSkip(int64(q.Skip)).
		SetLimit(int64(q.Limit))
}

func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}
