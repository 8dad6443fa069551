// internal/app/store/gifts/giftstore.go
package giftstore

import (
	"context"
	"time"

	"github.com/presently-app/presently/internal/app/system/apperr"
	"github.com/presently-app/presently/internal/app/system/htmlsanitize"
	"github.com/presently-app/presently/internal/app/system/txn"
	"github.com/presently-app/presently/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Store reads and writes gifts. Every read is visibility-filtered: the
// profile a gift is suggested for never sees it unless they suggested
// it themselves, and a hidden gift is indistinguishable from a missing
// one.
type Store struct {
	c      *mongo.Collection
	claims *mongo.Collection
	client *mongo.Client
}

func New(db *mongo.Database) *Store {
	return &Store{
		c:      db.Collection("gifts"),
		claims: db.Collection("claims"),
		client: db.Client(),
	}
}

// visibleTo is the filter clause hiding gifts from their intended
// recipient. Self-suggestions stay visible to their author.
func visibleTo(viewer primitive.ObjectID) bson.M {
	return bson.M{"$or": bson.A{
		bson.M{"suggested_for": bson.M{"$ne": viewer}},
		bson.M{"suggested_by": viewer},
	}}
}

// Create inserts a gift suggestion. Name is required; URLs are kept
// only when absolute http(s).
func (s *Store) Create(ctx context.Context, g models.Gift) (models.Gift, error) {
	g.Name = htmlsanitize.Text(g.Name)
	if g.Name == "" {
		return models.Gift{}, apperr.Invalid("gift name must not be empty")
	}
	g.Description = htmlsanitize.Text(g.Description)
	g.ImageURL = htmlsanitize.URL(g.ImageURL)
	g.ShopURL = htmlsanitize.URL(g.ShopURL)

	now := time.Now().UTC()
	g.ID = primitive.NilObjectID
	g.CreatedAt = now
	g.UpdatedAt = now

	res, err := s.c.InsertOne(ctx, g)
	if err != nil {
		return models.Gift{}, err
	}
	g.ID = res.InsertedID.(primitive.ObjectID)
	return g, nil
}

// GetVisible returns the gift if the viewer may see it. A gift hidden
// from the viewer reports NotFound, same as a gift that does not exist.
func (s *Store) GetVisible(ctx context.Context, id, viewer primitive.ObjectID) (models.Gift, error) {
	filter := visibleTo(viewer)
	filter["_id"] = id

	var g models.Gift
	err := s.c.FindOne(ctx, filter).Decode(&g)
	if err == mongo.ErrNoDocuments {
		return models.Gift{}, apperr.NotFound("gift")
	}
	if err != nil {
		return models.Gift{}, err
	}
	return g, nil
}

// GetByID returns the gift without visibility filtering. For internal
// use only (claim creation, cascades); handlers use GetVisible.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Gift, error) {
	var g models.Gift
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&g)
	if err == mongo.ErrNoDocuments {
		return models.Gift{}, apperr.NotFound("gift")
	}
	if err != nil {
		return models.Gift{}, err
	}
	return g, nil
}

// ListVisible returns the occasion's gifts the viewer may see.
func (s *Store) ListVisible(ctx context.Context, occasionID, viewer primitive.ObjectID) ([]models.Gift, error) {
	filter := visibleTo(viewer)
	filter["occasion_id"] = occasionID

	cur, err := s.c.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Gift
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Update rewrites the gift's descriptive fields.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, name, description, imageURL, shopURL string) (models.Gift, error) {
	name = htmlsanitize.Text(name)
	if name == "" {
		return models.Gift{}, apperr.Invalid("gift name must not be empty")
	}

	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"name":        name,
		"description": htmlsanitize.Text(description),
		"image_url":   htmlsanitize.URL(imageURL),
		"shop_url":    htmlsanitize.URL(shopURL),
		"updated_at":  time.Now().UTC(),
	}})
	if err != nil {
		return models.Gift{}, err
	}
	if res.MatchedCount == 0 {
		return models.Gift{}, apperr.NotFound("gift")
	}
	return s.GetByID(ctx, id)
}

// DeleteCascade removes the gift together with its claims. Inside a
// transaction when the deployment supports them; otherwise claims go
// first so a crash between the two deletes never leaves a claim on a
// live gift.
func (s *Store) DeleteCascade(ctx context.Context, id primitive.ObjectID) error {
	del := func(ctx context.Context) error {
		if _, err := s.claims.DeleteMany(ctx, bson.M{"gift_id": id}); err != nil {
			return err
		}
		_, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
		return err
	}

	err := txn.WithTransaction(ctx, s.client, del)
	if txn.IsNotSupported(err) {
		return del(ctx)
	}
	return err
}

// DeleteByOccasion removes every gift for the occasion. Claims are the
// cascade's responsibility and are deleted before gifts.
func (s *Store) DeleteByOccasion(ctx context.Context, occasionID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"occasion_id": occasionID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
