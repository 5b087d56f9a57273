package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/davafons/dial/pkg/nodes"
	"github.com/davafons/dial/pkg/project"
)

// MongoConfig configures [NewMongoStore].
type MongoConfig struct {
	URI        string
	Database   string
	Collection string
}

// Defaults for an empty [MongoConfig].
const (
	DefaultMongoDatabase   = "dial"
	DefaultMongoCollection = "projects"
)

// projectDoc is the stored form of a project. The project itself is kept
// as its JSON encoding so parameter types survive unchanged.
type projectDoc struct {
	Name      string    `bson:"_id"`
	Nodes     int       `bson:"nodes"`
	Data      string    `bson:"data,omitempty"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// MongoStore keeps projects in a MongoDB collection, one document per
// project keyed by name.
type MongoStore struct {
	client  *mongo.Client
	coll    *mongo.Collection
	catalog *nodes.Catalog
}

// NewMongoStore connects to MongoDB and checks the connection.
func NewMongoStore(ctx context.Context, cfg MongoConfig, catalog *nodes.Catalog) (*MongoStore, error) {
	if cfg.Database == "" {
		cfg.Database = DefaultMongoDatabase
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultMongoCollection
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return &MongoStore{
		client:  client,
		coll:    client.Database(cfg.Database).Collection(cfg.Collection),
		catalog: catalog,
	}, nil
}

// Put upserts p by name.
func (s *MongoStore) Put(ctx context.Context, p *project.Project) error {
	if err := checkName(p.Name()); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := p.Encode(&buf, project.JSON); err != nil {
		return err
	}
	doc := projectDoc{
		Name:      p.Name(),
		Nodes:     p.Scene().Len(),
		Data:      buf.String(),
		UpdatedAt: time.Now().UTC(),
	}
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": doc.Name}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("put project %s: %w", doc.Name, err)
	}
	return nil
}

// Get loads the named project.
func (s *MongoStore) Get(ctx context.Context, name string) (*project.Project, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	var doc projectDoc
	err := s.coll.FindOne(ctx, bson.M{"_id": name}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("get project %s: %w", name, err)
	}
	return project.Decode(strings.NewReader(doc.Data), project.JSON, s.catalog)
}

// List returns the stored projects sorted by name.
func (s *MongoStore) List(ctx context.Context) ([]Entry, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetProjection(bson.M{"data": 0})
	cur, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	var docs []projectDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	out := make([]Entry, 0, len(docs))
	for _, d := range docs {
		out = append(out, Entry{Name: d.Name, Nodes: d.Nodes, UpdatedAt: d.UpdatedAt})
	}
	return out, nil
}

// Delete removes the named project.
func (s *MongoStore) Delete(ctx context.Context, name string) error {
	if err := checkName(name); err != nil {
		return err
	}
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": name})
	if err != nil {
		return fmt.Errorf("delete project %s: %w", name, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return nil
}

// Close disconnects the client.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
