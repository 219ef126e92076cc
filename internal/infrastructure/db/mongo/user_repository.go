package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"

	"github.com/micromarket/marketplace-api/internal/core/domain"
	"github.com/micromarket/marketplace-api/internal/core/ports"
	"github.com/micromarket/marketplace-api/internal/pkg/metrics"
)

const (
	usersCollection = "users"
	guardCollection = "admin_guard"
	adminGuardID    = "admins"
)

// UserRepository implements ports.UserRepository using MongoDB.
//
// Guarded mutations run in a transaction that first bumps a shared guard
// document. Two concurrent transactions therefore conflict on that write, and
// the retried one re-counts admins against committed state. This requires a
// replica set or sharded cluster.
type UserRepository struct {
	client *mongo.Client
	coll   *mongo.Collection
	guard  *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{
		client: db.Client(),
		coll:   db.Collection(usersCollection),
		guard:  db.Collection(guardCollection),
	}
}

var _ ports.UserRepository = (*UserRepository)(nil)

type mongoUser struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty"`
	Name         string               `bson:"name"`
	Email        string               `bson:"email"`
	PasswordHash string               `bson:"password_hash,omitempty"`
	Role         string               `bson:"role"`
	Favorites    []primitive.ObjectID `bson:"favorites"`
	CreatedAt    time.Time            `bson:"created_at"`
	UpdatedAt    time.Time            `bson:"updated_at"`
}

func (m *mongoUser) toDomain() *domain.User {
	role, err := domain.ParseRole(m.Role)
	if err != nil {
		role = domain.RoleUser
	}
	favs := make([]string, len(m.Favorites))
	for i, f := range m.Favorites {
		favs[i] = f.Hex()
	}
	return &domain.User{
		ID:           m.ID.Hex(),
		Name:         m.Name,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		Role:         role,
		Favorites:    domain.NewFavoriteSet(favs...),
		CreatedAt:    m.CreatedAt.UTC(),
		UpdatedAt:    m.UpdatedAt.UTC(),
	}
}

var withoutPassword = bson.M{"password_hash": 0}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoUser{
		ID:           primitive.NewObjectID(),
		Name:         user.Name,
		Email:        domain.NormalizeEmail(user.Email),
		PasswordHash: user.PasswordHash,
		Role:         user.Role.String(),
		Favorites:    []primitive.ObjectID{},
		CreatedAt:    user.CreatedAt.UTC(),
		UpdatedAt:    user.UpdatedAt.UTC(),
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mu mongoUser
	if err := r.coll.FindOne(ctx, bson.M{"email": domain.NormalizeEmail(email)}).Decode(&mu); err != nil {
		if isNoDocuments(err) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return mu.toDomain(), nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mu mongoUser
	opts := options.FindOne().SetProjection(withoutPassword)
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}, opts).Decode(&mu); err != nil {
		if isNoDocuments(err) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return mu.toDomain(), nil
}

func (r *UserRepository) List(ctx context.Context, q domain.ListQuery) ([]*domain.User, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := searchFilter(q)
	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	cur, err := r.coll.Find(ctx, filter, listOptions(q).SetProjection(withoutPassword))
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	var docs []mongoUser
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("decode users: %w", err)
	}

	users := make([]*domain.User, len(docs))
	for i := range docs {
		users[i] = docs[i].toDomain()
	}
	return users, total, nil
}

// AddFavorite relies on $addToSet so concurrent adds of the same product
// store it once.
func (r *UserRepository) AddFavorite(ctx context.Context, userID, productID string) (bool, error) {
	return r.updateFavorites(ctx, "add", userID, productID, "$addToSet")
}

func (r *UserRepository) RemoveFavorite(ctx context.Context, userID, productID string) (bool, error) {
	return r.updateFavorites(ctx, "remove", userID, productID, "$pull")
}

func (r *UserRepository) updateFavorites(ctx context.Context, op, userID, productID, operator string) (bool, error) {
	uid, err := objectID(userID)
	if err != nil {
		return false, err
	}
	pid, err := objectID(productID)
	if err != nil {
		return false, err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": uid}, bson.M{operator: bson.M{"favorites": pid}})
	if err != nil {
		metrics.FavoritesOpsTotal.WithLabelValues(op, "error").Inc()
		return false, fmt.Errorf("%s favorite: %w", op, err)
	}
	if res.MatchedCount == 0 {
		metrics.FavoritesOpsTotal.WithLabelValues(op, "error").Inc()
		return false, domain.ErrUserNotFound
	}
	changed := res.ModifiedCount > 0
	result := "noop"
	if changed {
		result = "changed"
	}
	metrics.FavoritesOpsTotal.WithLabelValues(op, result).Inc()
	return changed, nil
}

func (r *UserRepository) DeleteGuarded(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	_, err = r.guarded(ctx, "delete", func(sc mongo.SessionContext) (interface{}, error) {
		current, err := r.loadForGuard(sc, oid)
		if err != nil {
			return nil, err
		}
		if current.Role == domain.RoleAdmin.String() {
			if err := r.requireAnotherAdmin(sc); err != nil {
				return nil, err
			}
		}
		if _, err := r.coll.DeleteOne(sc, bson.M{"_id": oid}); err != nil {
			return nil, fmt.Errorf("delete user: %w", err)
		}
		return nil, nil
	})
	return err
}

func (r *UserRepository) SetRoleGuarded(ctx context.Context, id string, role domain.Role) (*domain.User, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	out, err := r.guarded(ctx, "set_role", func(sc mongo.SessionContext) (interface{}, error) {
		current, err := r.loadForGuard(sc, oid)
		if err != nil {
			return nil, err
		}
		if current.Role == domain.RoleAdmin.String() && role != domain.RoleAdmin {
			if err := r.requireAnotherAdmin(sc); err != nil {
				return nil, err
			}
		}

		var updated mongoUser
		err = r.coll.FindOneAndUpdate(sc,
			bson.M{"_id": oid},
			bson.M{"$set": bson.M{"role": role.String(), "updated_at": time.Now().UTC()}},
			options.FindOneAndUpdate().
				SetReturnDocument(options.After).
				SetProjection(withoutPassword),
		).Decode(&updated)
		if err != nil {
			return nil, fmt.Errorf("set role: %w", err)
		}
		return updated.toDomain(), nil
	})
	if err != nil {
		return nil, err
	}
	return out.(*domain.User), nil
}

// guarded runs fn in a transaction after bumping the guard document, and
// records the outcome.
func (r *UserRepository) guarded(ctx context.Context, op string, fn func(mongo.SessionContext) (interface{}, error)) (interface{}, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	session, err := r.client.StartSession()
	if err != nil {
		metrics.AdminGuardTotal.WithLabelValues(op, "error").Inc()
		return nil, fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	txnOpts := options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority())

	out, err := session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		if _, err := r.guard.UpdateOne(sc,
			bson.M{"_id": adminGuardID},
			bson.M{"$inc": bson.M{"version": 1}},
			options.Update().SetUpsert(true),
		); err != nil {
			return nil, fmt.Errorf("bump admin guard: %w", err)
		}
		return fn(sc)
	}, txnOpts)

	switch {
	case err == nil:
		metrics.AdminGuardTotal.WithLabelValues(op, "ok").Inc()
	case errors.Is(err, domain.ErrLastAdmin):
		metrics.AdminGuardTotal.WithLabelValues(op, "last_admin").Inc()
	default:
		metrics.AdminGuardTotal.WithLabelValues(op, "error").Inc()
	}
	return out, err
}

func (r *UserRepository) loadForGuard(sc mongo.SessionContext, oid primitive.ObjectID) (*mongoUser, error) {
	var mu mongoUser
	err := r.coll.FindOne(sc, bson.M{"_id": oid}, options.FindOne().SetProjection(bson.M{"role": 1})).Decode(&mu)
	if err != nil {
		if isNoDocuments(err) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &mu, nil
}

func (r *UserRepository) requireAnotherAdmin(sc mongo.SessionContext) error {
	admins, err := r.coll.CountDocuments(sc, bson.M{"role": domain.RoleAdmin.String()})
	if err != nil {
		return fmt.Errorf("count admins: %w", err)
	}
	if admins <= 1 {
		return domain.ErrLastAdmin
	}
	return nil
}

// EnsureIndexes creates necessary indexes on the users collection.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "role", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	return err
}
