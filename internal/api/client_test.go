package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hjanuschka/projectwise-mcp/internal/config"
)

type recorded struct {
	path   string
	query  map[string][]string
	header http.Header
}

func newTestServer(t *testing.T, status int, body string) (*httptest.Server, *[]recorded) {
	t.Helper()
	var mu sync.Mutex
	var reqs []recorded
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		reqs = append(reqs, recorded{path: r.URL.Path, query: r.URL.Query(), header: r.Header.Clone()})
		mu.Unlock()
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &reqs
}

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	c, err := NewClient(&config.Config{
		BaseURL:      baseURL,
		RepositoryID: "R1",
		Token:        "secret-token",
		AppGUID:      "app-guid",
		SessionUUID:  "session-uuid",
	}, nil)
	require.NoError(t, err)
	return c
}

func TestGetDocument_EndToEnd(t *testing.T) {
	srv, reqs := newTestServer(t, http.StatusOK, `{"instances":[{"instanceId":"D1","properties":{"Name":"plan.dgn"}}]}`)
	c := newTestClient(t, srv.URL+"/ws/v2.8")

	got, err := c.GetDocument(context.Background(), "D1")
	require.NoError(t, err)

	require.Len(t, *reqs, 1)
	req := (*reqs)[0]
	assert.Equal(t, "/ws/v2.8/Repositories/R1/PW_WSG/Document/D1", req.path)
	assert.Equal(t, "Bearer secret-token", req.header.Get("Authorization"))
	assert.Equal(t, "application/json", req.header.Get("Accept"))
	assert.Equal(t, "application/json", req.header.Get("Content-Type"))
	assert.Equal(t, "app-guid", req.header.Get("Mas-App-Guid"))
	assert.Equal(t, "session-uuid", req.header.Get("Mas-Uuid"))

	out, err := json.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, `{"instances":[{"instanceId":"D1","properties":{"Name":"plan.dgn"}}]}`, string(out))
}

func TestURL(t *testing.T) {
	c := newTestClient(t, "https://h/ws/v2.8/")
	p, err := c.instancePath(collectionDocument, "D1")
	require.NoError(t, err)
	assert.Equal(t, "https://h/ws/v2.8/Repositories/R1/PW_WSG/Document/D1", c.URL(p, nil))
	assert.Equal(t, "https://h/ws/v2.8/Repositories/R1",
		c.URL(c.repoPath, nil))
}

func TestListFolders_Filters(t *testing.T) {
	srv, reqs := newTestServer(t, http.StatusOK, `{"instances":[]}`)
	c := newTestClient(t, srv.URL)

	_, err := c.ListFolders(context.Background(), "")
	require.NoError(t, err)
	_, err = c.ListFolders(context.Background(), "X")
	require.NoError(t, err)

	require.Len(t, *reqs, 2)
	assert.Equal(t, "/Repositories/R1/PW_WSG/Project", (*reqs)[0].path)
	assert.Equal(t, []string{"TypeString eq 'Folder' and ParentGuid eq null"}, (*reqs)[0].query["$filter"])
	assert.Equal(t, []string{"TypeString eq 'Folder' and ParentGuid eq 'X'"}, (*reqs)[1].query["$filter"])
}

func TestListDocuments_Filter(t *testing.T) {
	srv, reqs := newTestServer(t, http.StatusOK, `{}`)
	c := newTestClient(t, srv.URL)

	_, err := c.ListDocuments(context.Background(), "F1")
	require.NoError(t, err)
	assert.Equal(t, "/Repositories/R1/PW_WSG/Document", (*reqs)[0].path)
	assert.Equal(t, []string{"ParentGuid eq 'F1'"}, (*reqs)[0].query["$filter"])
}

func TestSearchDocuments(t *testing.T) {
	srv, reqs := newTestServer(t, http.StatusOK, `{}`)
	c := newTestClient(t, srv.URL)

	_, err := c.SearchDocuments(context.Background(), "bridge", 0)
	require.NoError(t, err)
	_, err = c.SearchDocuments(context.Background(), "bridge", 5)
	require.NoError(t, err)

	assert.Equal(t, []string{"contains(Name,'bridge')"}, (*reqs)[0].query["$filter"])
	assert.Equal(t, []string{"50"}, (*reqs)[0].query["$top"])
	assert.Equal(t, []string{"5"}, (*reqs)[1].query["$top"])
}

func TestSearchDocuments_QuoteEscaped(t *testing.T) {
	srv, reqs := newTestServer(t, http.StatusOK, `{}`)
	c := newTestClient(t, srv.URL)

	_, err := c.SearchDocuments(context.Background(), "O'Brien') or true or contains(Name,'", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"contains(Name,'O''Brien'') or true or contains(Name,''')"}, (*reqs)[0].query["$filter"])
}

func TestNoFilterOperations(t *testing.T) {
	srv, reqs := newTestServer(t, http.StatusOK, `{}`)
	c := newTestClient(t, srv.URL)
	ctx := context.Background()

	_, err := c.ListProjects(ctx)
	require.NoError(t, err)
	_, err = c.GetRepository(ctx)
	require.NoError(t, err)
	_, err = c.GetFolder(ctx, "F9")
	require.NoError(t, err)

	require.Len(t, *reqs, 3)
	assert.Equal(t, "/Repositories/R1/PW_WSG/Project", (*reqs)[0].path)
	assert.Equal(t, "/Repositories/R1", (*reqs)[1].path)
	assert.Equal(t, "/Repositories/R1/PW_WSG/Project/F9", (*reqs)[2].path)
	for _, r := range *reqs {
		assert.Empty(t, r.query)
	}
}

func TestGet_ErrorStatusCarriesFullBody(t *testing.T) {
	body := strings.Repeat("detail ", 2000) + "END"
	srv, _ := newTestServer(t, http.StatusNotFound, body)
	c := newTestClient(t, srv.URL)

	_, err := c.GetDocument(context.Background(), "missing")
	require.Error(t, err)

	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "Not Found", apiErr.Status)
	assert.Equal(t, body, apiErr.Body)
	assert.Contains(t, err.Error(), "404")
	assert.Contains(t, err.Error(), body)
}

func TestGet_ServerErrors(t *testing.T) {
	for _, status := range []int{http.StatusBadRequest, http.StatusUnauthorized, http.StatusInternalServerError} {
		srv, _ := newTestServer(t, status, "boom")
		c := newTestClient(t, srv.URL)

		_, err := c.ListProjects(context.Background())
		var apiErr *Error
		require.True(t, errors.As(err, &apiErr), "status %d", status)
		assert.Equal(t, status, apiErr.StatusCode)
		assert.Equal(t, "boom", apiErr.Body)
	}
}

func TestGet_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := srv.URL
	srv.Close()

	c := newTestClient(t, base)
	_, err := c.ListProjects(context.Background())
	require.Error(t, err)

	var terr *TransportError
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, http.MethodGet, terr.Method)

	var apiErr *Error
	assert.False(t, errors.As(err, &apiErr))
}

func TestGet_InvalidJSON(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK, "not json")
	c := newTestClient(t, srv.URL)

	_, err := c.ListProjects(context.Background())
	require.Error(t, err)
	var apiErr *Error
	assert.False(t, errors.As(err, &apiErr))
}

func TestNewClient_InvalidBaseURL(t *testing.T) {
	_, err := NewClient(&config.Config{BaseURL: "not-a-url", RepositoryID: "R1", Token: "t"}, nil)
	var cerr *config.Error
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, config.InvalidValue, cerr.Kind)
}

func TestClient_ConcurrentCalls(t *testing.T) {
	srv, reqs := newTestServer(t, http.StatusOK, `{"ok":true}`)
	c := newTestClient(t, srv.URL)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.ListProjects(context.Background())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Len(t, *reqs, 10)
}

func TestInstanceOperations_RejectDotSegments(t *testing.T) {
	srv, reqs := newTestServer(t, http.StatusOK, `{}`)
	c := newTestClient(t, srv.URL+"/ws/v2.8")
	ctx := context.Background()

	for _, id := range []string{".", ".."} {
		_, err := c.GetDocument(ctx, id)
		assert.ErrorIs(t, err, ErrInvalidID, "document %q", id)
		_, err = c.GetFolder(ctx, id)
		assert.ErrorIs(t, err, ErrInvalidID, "folder %q", id)
	}
	assert.Empty(t, *reqs)

	_, err := c.GetDocument(ctx, "...")
	require.NoError(t, err)
	require.Len(t, *reqs, 1)
	assert.Equal(t, "/ws/v2.8/Repositories/R1/PW_WSG/Document/...", (*reqs)[0].path)
}

func TestNewClient_DotRepositoryID(t *testing.T) {
	_, err := NewClient(&config.Config{BaseURL: "https://h/ws", RepositoryID: "..", Token: "t"}, nil)
	var cerr *config.Error
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, config.KeyRepositoryID, cerr.Field)
	assert.ErrorIs(t, err, ErrInvalidID)
}
