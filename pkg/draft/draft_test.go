package draft

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	apperrors "github.com/matzehuels/slicetopo/pkg/errors"
	"github.com/matzehuels/slicetopo/pkg/serialize"
	"github.com/matzehuels/slicetopo/pkg/topology"
)

func sampleDoc(t *testing.T, name string, nodes int) serialize.Document {
	t.Helper()
	s := topology.New(name)
	var prev topology.Node
	for i := range nodes {
		n, err := s.CreateNode(topology.Position{X: float64(i * 100)}, topology.NodePatch{})
		if err != nil {
			t.Fatal(err)
		}
		if i > 0 {
			s.CreateConnection(prev.ID, n.ID)
		}
		prev = n
	}
	return serialize.Export(s.Snapshot(), time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
}

// exerciseStore runs the behaviour every backend must share.
func exerciseStore(t *testing.T, s Store) {
	ctx := context.Background()

	if _, err := s.Load(ctx, "lab-b"); !apperrors.Is(err, apperrors.ErrCodeDraftNotFound) {
		t.Fatalf("Load missing = %v, want DRAFT_NOT_FOUND", err)
	}

	first, err := s.Save(ctx, "lab-b", sampleDoc(t, "Lab B", 3))
	if err != nil {
		t.Fatal(err)
	}
	if first.Revision == "" {
		t.Error("Save returned empty revision")
	}
	if _, err := s.Save(ctx, "lab-a", sampleDoc(t, "Lab A", 1)); err != nil {
		t.Fatal(err)
	}

	second, err := s.Save(ctx, "lab-b", sampleDoc(t, "Lab B", 4))
	if err != nil {
		t.Fatal(err)
	}
	if second.Revision == first.Revision {
		t.Error("overwrite kept the old revision")
	}

	got, err := s.Load(ctx, "lab-b")
	if err != nil {
		t.Fatal(err)
	}
	if got.Revision != second.Revision || len(got.Document.Nodes) != 4 {
		t.Errorf("Load = rev %s, %d nodes", got.Revision, len(got.Document.Nodes))
	}
	topo, err := got.Topology()
	if err != nil {
		t.Fatal(err)
	}
	if topo.Name != "Lab B" || len(topo.Connections) != 3 {
		t.Errorf("Topology = %q with %d connections", topo.Name, len(topo.Connections))
	}

	infos, err := s.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(infos) != 2 || infos[0].Name != "lab-a" || infos[1].Name != "lab-b" {
		t.Fatalf("List = %+v", infos)
	}
	if infos[1].Nodes != 4 || infos[1].Connections != 3 {
		t.Errorf("List counts = %d/%d", infos[1].Nodes, infos[1].Connections)
	}

	if err := s.Delete(ctx, "lab-b"); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(ctx, "lab-b"); err != nil {
		t.Errorf("second Delete = %v", err)
	}
	if _, err := s.Load(ctx, "lab-b"); !apperrors.Is(err, apperrors.ErrCodeDraftNotFound) {
		t.Errorf("Load deleted = %v", err)
	}

	for _, bad := range []string{"", "../etc", "a/b", ".hidden"} {
		if _, err := s.Save(ctx, bad, serialize.Document{}); !apperrors.Is(err, apperrors.ErrCodeInvalidInput) {
			t.Errorf("Save(%q) = %v, want INVALID_INPUT", bad, err)
		}
	}
}

func TestFileStore(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	exerciseStore(t, s)
}

func TestFileStorePermissions(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "drafts")
	s, err := NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	if s.Path() != dir {
		t.Errorf("Path = %s", s.Path())
	}
	if _, err := s.Save(context.Background(), "lab", sampleDoc(t, "Lab", 2)); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(filepath.Join(dir, "lab.json"))
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("file mode = %o, want 600", perm)
	}
	if _, err := os.Stat(filepath.Join(dir, "lab.json.tmp")); !os.IsNotExist(err) {
		t.Errorf("temp file left behind: %v", err)
	}
}

func TestFileStoreIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	s, _ := NewFileStore(dir)
	os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0600)
	os.Mkdir(filepath.Join(dir, "sub.json"), 0700)

	infos, err := s.List(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(infos) != 0 {
		t.Errorf("List = %+v, want empty", infos)
	}
}

func TestFileStoreCorruptDraft(t *testing.T) {
	dir := t.TempDir()
	s, _ := NewFileStore(dir)
	os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{"), 0600)

	_, err := s.Load(context.Background(), "broken")
	if err == nil || apperrors.Is(err, apperrors.ErrCodeDraftNotFound) {
		t.Errorf("Load corrupt = %v, want parse error", err)
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, Options{Backend: "FILE", Dir: t.TempDir()})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := s.(*FileStore); !ok {
		t.Errorf("Open(file) = %T", s)
	}

	if _, err := Open(ctx, Options{Backend: "sqlite"}); !apperrors.Is(err, apperrors.ErrCodeInvalidConfig) {
		t.Errorf("Open(sqlite) = %v, want INVALID_CONFIG", err)
	}
}

// The network backends run only when a server is provided, e.g.
//
//	SLICETOPO_TEST_REDIS=localhost:6379 go test ./pkg/draft
func TestRedisStore(t *testing.T) {
	addr := os.Getenv("SLICETOPO_TEST_REDIS")
	if addr == "" {
		t.Skip("SLICETOPO_TEST_REDIS not set")
	}
	ctx := context.Background()
	s, err := NewRedisStore(ctx, RedisConfig{Addr: addr, Key: "slicetopo:test:" + t.Name()})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	defer s.client.Del(ctx, s.key)
	exerciseStore(t, s)
}

func TestMongoStore(t *testing.T) {
	uri := os.Getenv("SLICETOPO_TEST_MONGO")
	if uri == "" {
		t.Skip("SLICETOPO_TEST_MONGO not set")
	}
	ctx := context.Background()
	s, err := NewMongoStore(ctx, MongoConfig{URI: uri, Database: "slicetopo_test", Collection: "drafts"})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	defer s.coll.Drop(ctx)
	exerciseStore(t, s)
}
