// Package mongo implements the habit store on a MongoDB collection.
package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"example.com/habits/internal/domain"
)

// CollectionName is the collection habits are stored in.
const CollectionName = "habits"

type habitDocument struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	Name          string             `bson:"name"`
	Description   *string            `bson:"description"`
	CreatedAt     string             `bson:"created_at"`
	Streak        int                `bson:"streak"`
	LastCompleted *string            `bson:"last_completed"`
}

func (d habitDocument) toDomain() domain.Habit {
	return domain.Habit{
		ID:            d.ID.Hex(),
		Name:          d.Name,
		Description:   d.Description,
		CreatedAt:     d.CreatedAt,
		Streak:        d.Streak,
		LastCompleted: d.LastCompleted,
	}
}

// Repository stores habits as documents keyed by ObjectID.
type Repository struct {
	client *mongo.Client
	coll   *mongo.Collection
	now    func() time.Time
}

// Connect dials uri and returns a Repository over database.habits.
func Connect(ctx context.Context, uri, database string) (*Repository, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	repo := NewRepository(client.Database(database).Collection(CollectionName))
	repo.client = client
	return repo, nil
}

// NewRepository wraps an existing collection.
func NewRepository(coll *mongo.Collection) *Repository {
	return &Repository{coll: coll, now: time.Now}
}

// Create implements domain.HabitRepository.
func (r *Repository) Create(ctx context.Context, name string, description *string) (domain.Habit, error) {
	doc := habitDocument{
		ID:          primitive.NewObjectID(),
		Name:        name,
		Description: description,
		CreatedAt:   r.now().UTC().Format(time.RFC3339Nano),
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return domain.Habit{}, err
	}
	return doc.toDomain(), nil
}

// Get implements domain.HabitRepository. Ids that are not valid ObjectIDs cannot resolve.
func (r *Repository) Get(ctx context.Context, id string) (*domain.Habit, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}

	var doc habitDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	habit := doc.toDomain()
	return &habit, nil
}

// List implements domain.HabitRepository.
func (r *Repository) List(ctx context.Context) ([]domain.Habit, error) {
	cursor, err := r.coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, err
	}

	var docs []habitDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	habits := make([]domain.Habit, 0, len(docs))
	for _, doc := range docs {
		habits = append(habits, doc.toDomain())
	}
	return habits, nil
}

// Update implements domain.HabitRepository.
func (r *Repository) Update(ctx context.Context, id string, fields domain.CompletionUpdate) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrHabitNotFound
	}

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{
			"streak":         fields.Streak,
			"last_completed": fields.LastCompleted,
		}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrHabitNotFound
	}
	return nil
}

// Close disconnects the client when the repository owns it.
func (r *Repository) Close(ctx context.Context) error {
	if r.client == nil {
		return nil
	}
	return r.client.Disconnect(ctx)
}
