package slicemanager

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/matzehuels/slicetopo/pkg/errors"
	"github.com/matzehuels/slicetopo/pkg/serialize"
	"github.com/matzehuels/slicetopo/pkg/topology"
	"github.com/matzehuels/slicetopo/pkg/validate"
)

var quiet = log.New(io.Discard)

func validStore(t *testing.T) *topology.Store {
	t.Helper()
	s := topology.New("lab")
	a, err := s.CreateNode(topology.Position{X: 1, Y: 2}, topology.NodePatch{Name: topology.Ptr("a")})
	require.NoError(t, err)
	b, err := s.CreateNode(topology.Position{}, topology.NodePatch{Name: topology.Ptr("b")})
	require.NoError(t, err)
	_, ok := s.CreateConnection(a.ID, b.ID)
	require.True(t, ok)
	return s
}

func newSubmitter(t *testing.T, url, key string) *Submitter {
	t.Helper()
	c, err := NewClient(Config{URL: url, APIKey: key, Timeout: 2 * time.Second}, quiet)
	require.NoError(t, err)
	return NewSubmitter(c, validate.Options{}, quiet)
}

func TestSendSuccess(t *testing.T) {
	var got struct {
		header http.Header
		body   serialize.Payload
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		got.header = r.Header.Clone()
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got.body))
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"slice_id": "s-1"}`))
	}))
	defer srv.Close()

	res, err := newSubmitter(t, srv.URL, "secret").Send(context.Background(), validStore(t).Snapshot())
	require.NoError(t, err)
	require.NotNil(t, res.Response)

	assert.Equal(t, http.StatusCreated, res.Response.StatusCode)
	assert.JSONEq(t, `{"slice_id": "s-1"}`, string(res.Response.Body))
	assert.Equal(t, "application/json", got.header.Get("Content-Type"))
	assert.Equal(t, "Bearer secret", got.header.Get("Authorization"))
	assert.Equal(t, res.Response.RequestID, got.header.Get("X-Request-ID"))
	assert.Equal(t, "slicetopo/dev", got.header.Get("User-Agent"))

	assert.Len(t, got.body.Nodes, 2)
	assert.Equal(t, serialize.Resources{CPU: 2, Memory: 4, Disk: 20}, got.body.Nodes["a"].Resources)
	assert.Equal(t, []serialize.PayloadLink{{ID: "Link 1", Source: "a", Target: "b", Bandwidth: "1Gbps"}}, got.body.Links)
}

func TestSendWithoutAPIKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, present := r.Header["Authorization"]
		assert.False(t, present, "Authorization header sent without a key")
	}))
	defer srv.Close()

	_, err := newSubmitter(t, srv.URL, "  ").Send(context.Background(), validStore(t).Snapshot())
	assert.NoError(t, err)
}

func TestSendServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "hypervisor on fire", http.StatusInternalServerError)
	}))
	defer srv.Close()

	s := validStore(t)
	nodes, conns := s.NodeCount(), s.ConnectionCount()

	res, err := newSubmitter(t, srv.URL, "").Send(context.Background(), s.Snapshot())
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrCodeHTTPStatus))
	assert.Contains(t, apperrors.UserMessage(err), "500")
	assert.Contains(t, apperrors.UserMessage(err), "hypervisor on fire")
	assert.Equal(t, http.StatusInternalServerError, res.Response.StatusCode)

	assert.Equal(t, nodes, s.NodeCount())
	assert.Equal(t, conns, s.ConnectionCount())
}

func TestSendInvalidMakesNoRequest(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	res, err := newSubmitter(t, srv.URL, "").Send(context.Background(), topology.New("lab").Snapshot())
	require.Error(t, err)

	var verr *apperrors.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Problems[0], "at least one node")
	assert.False(t, res.Report.Valid)
	assert.Nil(t, res.Response)
	assert.Zero(t, hits.Load())
}

func TestSendNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := newSubmitter(t, url, "").Send(context.Background(), validStore(t).Snapshot())
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrCodeNetwork), "code = %s", apperrors.GetCode(err))
}

func TestSendTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c, err := NewClient(Config{URL: srv.URL, Timeout: 50 * time.Millisecond}, quiet)
	require.NoError(t, err)
	_, err = NewSubmitter(c, validate.Options{}, quiet).Send(context.Background(), validStore(t).Snapshot())
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrCodeTimeout), "code = %s", apperrors.GetCode(err))
}

func TestSendGuardsConcurrentSubmission(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(entered)
		<-release
	}))
	defer srv.Close()

	sub := newSubmitter(t, srv.URL, "")
	snap := validStore(t).Snapshot()

	done := make(chan error, 1)
	go func() {
		_, err := sub.Send(context.Background(), snap)
		done <- err
	}()

	<-entered
	assert.Equal(t, StateSubmitting, sub.State())
	_, err := sub.Send(context.Background(), snap)
	assert.True(t, apperrors.Is(err, apperrors.ErrCodeSubmissionInProgress))

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, StateIdle, sub.State())
}

func TestNewClientRejectsBadURL(t *testing.T) {
	for _, u := range []string{"", "ftp://x", "not a url", "http://"} {
		_, err := NewClient(Config{URL: u}, nil)
		assert.True(t, apperrors.Is(err, apperrors.ErrCodeInvalidConfig), "url %q: %v", u, err)
	}
	c, err := NewClient(Config{URL: "https://manager.example/api/slices"}, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultTimeout, c.Timeout())
}

func TestCheckPayload(t *testing.T) {
	p := serialize.Payload{
		Name: "lab",
		Nodes: map[string]serialize.PayloadNode{
			"a": {Type: "toaster", Image: "cirros", Resources: serialize.Resources{CPU: 0, Memory: 1, Disk: 10}},
		},
		Links: []serialize.PayloadLink{{ID: "Link 1", Source: "a", Target: "a", Bandwidth: "1Gbps"}},
	}
	err := CheckPayload(p)
	var verr *apperrors.ValidationError
	require.True(t, errors.As(err, &verr), "err = %v", err)
	assert.Len(t, verr.Problems, 3)

	assert.NoError(t, CheckPayload(serialize.NewPayload(validStore(t).Snapshot())))
}
