package draft

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	apperrors "github.com/matzehuels/slicetopo/pkg/errors"
	"github.com/matzehuels/slicetopo/pkg/serialize"
)

// MongoConfig configures a MongoStore.
type MongoConfig struct {
	URI        string // default mongodb://localhost:27017
	Database   string // default slicetopo
	Collection string // default drafts
}

// MongoStore keeps one MongoDB document per draft, keyed by draft name.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// mongoRecord is the stored shape. The export document is kept as its JSON
// text so the stored form matches the file and redis backends exactly.
type mongoRecord struct {
	Name        string    `bson:"_id"`
	Revision    string    `bson:"revision"`
	UpdatedAt   time.Time `bson:"updatedAt"`
	Nodes       int       `bson:"nodes"`
	Connections int       `bson:"connections"`
	Document    string    `bson:"document"`
}

// NewMongoStore connects to MongoDB and pings the primary.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	if cfg.URI == "" {
		cfg.URI = "mongodb://localhost:27017"
	}
	if cfg.Database == "" {
		cfg.Database = "slicetopo"
	}
	if cfg.Collection == "" {
		cfg.Collection = "drafts"
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidConfig, err, "mongo uri %q", cfg.URI)
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, apperrors.Wrap(apperrors.ErrCodeNetwork, err, "connect to mongo")
	}
	return &MongoStore{
		client: client,
		coll:   client.Database(cfg.Database).Collection(cfg.Collection),
	}, nil
}

func (s *MongoStore) Save(ctx context.Context, name string, doc serialize.Document) (Draft, error) {
	d, err := newDraft(name, doc)
	if err != nil {
		return Draft{}, err
	}
	data, err := json.Marshal(d.Document)
	if err != nil {
		return Draft{}, fmt.Errorf("marshal draft: %w", err)
	}
	info := d.info()
	rec := mongoRecord{
		Name:        name,
		Revision:    d.Revision,
		UpdatedAt:   d.UpdatedAt,
		Nodes:       info.Nodes,
		Connections: info.Connections,
		Document:    string(data),
	}
	opts := options.Replace().SetUpsert(true)
	if _, err := s.coll.ReplaceOne(ctx, bson.M{"_id": name}, rec, opts); err != nil {
		return Draft{}, fmt.Errorf("mongo replace %s: %w", name, err)
	}
	return d, nil
}

func (s *MongoStore) Load(ctx context.Context, name string) (Draft, error) {
	if err := apperrors.ValidateDraftName(name); err != nil {
		return Draft{}, err
	}
	var rec mongoRecord
	err := s.coll.FindOne(ctx, bson.M{"_id": name}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Draft{}, notFound(name)
	}
	if err != nil {
		return Draft{}, fmt.Errorf("mongo find %s: %w", name, err)
	}

	d := Draft{Name: rec.Name, Revision: rec.Revision, UpdatedAt: rec.UpdatedAt.UTC()}
	if err := json.Unmarshal([]byte(rec.Document), &d.Document); err != nil {
		return Draft{}, fmt.Errorf("parse draft %s: %w", name, err)
	}
	return d, nil
}

func (s *MongoStore) Delete(ctx context.Context, name string) error {
	if err := apperrors.ValidateDraftName(name); err != nil {
		return err
	}
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": name}); err != nil {
		return fmt.Errorf("mongo delete %s: %w", name, err)
	}
	return nil
}

func (s *MongoStore) List(ctx context.Context) ([]Info, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetProjection(bson.M{"document": 0})
	cur, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo find: %w", err)
	}
	defer cur.Close(ctx)

	var infos []Info
	for cur.Next(ctx) {
		var rec mongoRecord
		if err := cur.Decode(&rec); err != nil {
			return nil, fmt.Errorf("mongo decode: %w", err)
		}
		infos = append(infos, Info{
			Name:        rec.Name,
			Revision:    rec.Revision,
			UpdatedAt:   rec.UpdatedAt.UTC(),
			Nodes:       rec.Nodes,
			Connections: rec.Connections,
		})
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("mongo cursor: %w", err)
	}
	return infos, nil
}

func (s *MongoStore) Close() error {
	return s.client.Disconnect(context.Background())
}

var _ Store = (*MongoStore)(nil)
