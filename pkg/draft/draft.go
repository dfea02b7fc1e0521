// Package draft keeps named topologies between invocations.
//
// The editor core holds no persistent state. The CLI and the HTTP server use
// a draft [Store] to keep the topology being authored, stored as the export
// [serialize.Document] so that a draft is always importable.
//
// Backends:
//   - file: one JSON file per draft, for the CLI (default)
//   - redis: one hash field per draft, for shared servers
//   - mongo: one document per draft
//
// # Usage
//
//	store, err := draft.Open(ctx, draft.Options{Backend: draft.BackendFile})
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	d, err := store.Save(ctx, "web-lab", serialize.Export(s.Snapshot(), time.Now()))
//	d, err = store.Load(ctx, "web-lab")
//	t, err := d.Topology()
package draft

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/matzehuels/slicetopo/pkg/errors"
	"github.com/matzehuels/slicetopo/pkg/serialize"
	"github.com/matzehuels/slicetopo/pkg/topology"
)

// Draft is one stored topology.
type Draft struct {
	Name      string             `json:"name"`
	Revision  string             `json:"revision"`
	UpdatedAt time.Time          `json:"updatedAt"`
	Document  serialize.Document `json:"document"`
}

// Topology decodes the stored document.
func (d Draft) Topology() (topology.Topology, error) {
	data, err := json.Marshal(d.Document)
	if err != nil {
		return topology.Topology{}, fmt.Errorf("encode draft %s: %w", d.Name, err)
	}
	return serialize.Parse(data)
}

// Info summarises a draft for listings.
type Info struct {
	Name        string    `json:"name"`
	Revision    string    `json:"revision"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Nodes       int       `json:"nodes"`
	Connections int       `json:"connections"`
}

func (d Draft) info() Info {
	return Info{
		Name:        d.Name,
		Revision:    d.Revision,
		UpdatedAt:   d.UpdatedAt,
		Nodes:       len(d.Document.Nodes),
		Connections: len(d.Document.Connections),
	}
}

// Store is the interface for draft storage backends.
type Store interface {
	// Save stores doc under name, replacing any previous version, and
	// returns the stored draft with a fresh revision.
	Save(ctx context.Context, name string, doc serialize.Document) (Draft, error)

	// Load returns the draft. A missing draft is a DRAFT_NOT_FOUND error.
	Load(ctx context.Context, name string) (Draft, error)

	// Delete removes a draft. Deleting a missing draft is not an error.
	Delete(ctx context.Context, name string) error

	// List returns every draft ordered by name.
	List(ctx context.Context) ([]Info, error)

	// Close releases backend connections.
	Close() error
}

// Backend names a Store implementation.
type Backend string

const (
	BackendFile  Backend = "file"
	BackendRedis Backend = "redis"
	BackendMongo Backend = "mongo"
)

// Options selects and configures a backend.
type Options struct {
	Backend Backend

	// Dir is the file backend directory. Empty means
	// ~/.config/slicetopo/drafts.
	Dir string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisKey      string

	MongoURI        string
	MongoDatabase   string
	MongoCollection string
}

// Open returns the Store selected by opts.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch Backend(strings.ToLower(string(opts.Backend))) {
	case "", BackendFile:
		return NewFileStore(opts.Dir)
	case BackendRedis:
		return NewRedisStore(ctx, RedisConfig{
			Addr:     opts.RedisAddr,
			Password: opts.RedisPassword,
			DB:       opts.RedisDB,
			Key:      opts.RedisKey,
		})
	case BackendMongo:
		return NewMongoStore(ctx, MongoConfig{
			URI:        opts.MongoURI,
			Database:   opts.MongoDatabase,
			Collection: opts.MongoCollection,
		})
	}
	return nil, apperrors.New(apperrors.ErrCodeInvalidConfig, "unknown draft backend %q (valid: file, redis, mongo)", opts.Backend)
}

func newDraft(name string, doc serialize.Document) (Draft, error) {
	if err := apperrors.ValidateDraftName(name); err != nil {
		return Draft{}, err
	}
	return Draft{
		Name:      name,
		Revision:  uuid.NewString(),
		UpdatedAt: time.Now().UTC(),
		Document:  doc,
	}, nil
}

func notFound(name string) error {
	return apperrors.New(apperrors.ErrCodeDraftNotFound, "draft %q not found", name)
}
