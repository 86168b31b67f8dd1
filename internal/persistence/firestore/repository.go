// Package firestore implements the habit store on a Cloud Firestore collection.
package firestore

import (
	"context"
	"errors"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"example.com/habits/internal/domain"
)

// CollectionName is the collection habits are stored in.
const CollectionName = "habits"

type habitDocument struct {
	Name          string  `firestore:"name"`
	Description   *string `firestore:"description"`
	CreatedAt     string  `firestore:"created_at"`
	Streak        int     `firestore:"streak"`
	LastCompleted *string `firestore:"last_completed"`
}

func (d habitDocument) toDomain(id string) domain.Habit {
	return domain.Habit{
		ID:            id,
		Name:          d.Name,
		Description:   d.Description,
		CreatedAt:     d.CreatedAt,
		Streak:        d.Streak,
		LastCompleted: d.LastCompleted,
	}
}

// Repository stores habits as Firestore documents with generated ids.
type Repository struct {
	client *firestore.Client
	coll   *firestore.CollectionRef
	now    func() time.Time
}

// Connect creates a client for projectID. An empty credentialsFile falls back to
// application default credentials, which also covers FIRESTORE_EMULATOR_HOST.
func Connect(ctx context.Context, projectID, credentialsFile string) (*Repository, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, err
	}
	return NewRepository(client), nil
}

// NewRepository wraps an existing client.
func NewRepository(client *firestore.Client) *Repository {
	return &Repository{
		client: client,
		coll:   client.Collection(CollectionName),
		now:    time.Now,
	}
}

// Create implements domain.HabitRepository.
func (r *Repository) Create(ctx context.Context, name string, description *string) (domain.Habit, error) {
	ref := r.coll.NewDoc()
	doc := habitDocument{
		Name:        name,
		Description: description,
		CreatedAt:   r.now().UTC().Format(time.RFC3339Nano),
	}
	if _, err := ref.Create(ctx, doc); err != nil {
		return domain.Habit{}, err
	}
	return doc.toDomain(ref.ID), nil
}

// Get implements domain.HabitRepository.
func (r *Repository) Get(ctx context.Context, id string) (*domain.Habit, error) {
	ref := r.docRef(id)
	if ref == nil {
		return nil, nil
	}
	snap, err := ref.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, err
	}
	habit, err := decode(snap)
	if err != nil {
		return nil, err
	}
	return &habit, nil
}

// List implements domain.HabitRepository.
func (r *Repository) List(ctx context.Context) ([]domain.Habit, error) {
	iter := r.coll.Documents(ctx)
	defer iter.Stop()

	habits := make([]domain.Habit, 0)
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, err
		}
		habit, err := decode(snap)
		if err != nil {
			return nil, err
		}
		habits = append(habits, habit)
	}
	return habits, nil
}

// Update implements domain.HabitRepository. Firestore rejects updates to missing
// documents, so no separate existence check is needed.
func (r *Repository) Update(ctx context.Context, id string, fields domain.CompletionUpdate) error {
	ref := r.docRef(id)
	if ref == nil {
		return domain.ErrHabitNotFound
	}
	_, err := ref.Update(ctx, []firestore.Update{
		{Path: "streak", Value: fields.Streak},
		{Path: "last_completed", Value: fields.LastCompleted},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return domain.ErrHabitNotFound
		}
		return err
	}
	return nil
}

// Close releases the client.
func (r *Repository) Close(context.Context) error {
	return r.client.Close()
}

func (r *Repository) docRef(id string) *firestore.DocumentRef {
	if !validDocumentID(id) {
		return nil
	}
	return r.coll.Doc(id)
}

func validDocumentID(id string) bool {
	return id != "" && id != "." && id != ".." && !strings.Contains(id, "/")
}

func decode(snap *firestore.DocumentSnapshot) (domain.Habit, error) {
	var doc habitDocument
	if err := snap.DataTo(&doc); err != nil {
		return domain.Habit{}, err
	}
	return doc.toDomain(snap.Ref.ID), nil
}
