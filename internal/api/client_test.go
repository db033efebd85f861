// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/hackmd-cli/internal/httputil"
	"github.com/pdiddy/hackmd-cli/internal/profile"
	"github.com/pdiddy/hackmd-cli/pkg/types"
)

func init() {
	// Keep 429 backoff out of test runtime.
	httputil.RetryBaseDelay = 1 * time.Millisecond
}

func newTestClient(ts *httptest.Server) *Client {
	cred := profile.Credential{APIToken: "test-token", APIBaseURL: ts.URL}
	return NewClient(cred, types.ClientConfig{Timeout: 5 * time.Second})
}

func TestMe(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/me", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, types.DefaultUserAgent, r.Header.Get("User-Agent"))
		fmt.Fprint(w, `{"id": "u1", "name": "Ada", "email": "ada@example.com"}`)
	}))
	defer ts.Close()

	user, err := newTestClient(ts).Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &types.User{ID: "u1", Name: "Ada", Email: "ada@example.com"}, user)
}

func TestMeUnauthorized(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "token invalid", http.StatusUnauthorized)
	}))
	defer ts.Close()

	_, err := newTestClient(ts).Me(context.Background())
	require.Error(t, err)

	var remote *RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, http.StatusUnauthorized, remote.Status)
	assert.True(t, remote.Unauthorized())
	assert.Contains(t, remote.Error(), "token invalid")
}

func TestTeams(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/teams", r.URL.Path)
		fmt.Fprint(w, `[{"id": "t1", "name": "Backend", "path": "backend"}]`)
	}))
	defer ts.Close()

	teams, err := newTestClient(ts).Teams(context.Background())
	require.NoError(t, err)
	require.Len(t, teams, 1)
	assert.Equal(t, types.Team{ID: "t1", Name: "Backend", Path: "backend"}, teams[0])
}

func TestNotes(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/notes", r.URL.Path)
		fmt.Fprint(w, `[
			{"id": "n1", "title": "First", "createdAt": 1700000000000, "lastChangedAt": 1700000001000},
			{"id": "n2", "title": "Second"}
		]`)
	}))
	defer ts.Close()

	notes, err := newTestClient(ts).Notes(context.Background())
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, "First", notes[0].Title)
	assert.Equal(t, int64(1700000000000), notes[0].CreatedAt)
}

func TestCreateNote(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/notes", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"id": "n9", "title": "My Note", "publishLink": "https://hackmd.io/@u/n9"}`)
	}))
	defer ts.Close()

	note, err := newTestClient(ts).CreateNote(context.Background(), "My Note", "# My Note")
	require.NoError(t, err)
	assert.Equal(t, "n9", note.ID)
	assert.Equal(t, "https://hackmd.io/@u/n9", note.PublishLink)
}

func TestCreateNoteRemoteError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "title too long", http.StatusUnprocessableEntity)
	}))
	defer ts.Close()

	_, err := newTestClient(ts).CreateNote(context.Background(), "t", "c")
	var remote *RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, http.StatusUnprocessableEntity, remote.Status)
	assert.Contains(t, remote.Body, "title too long")
}

func TestNote(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/notes/n1", r.URL.Path)
		fmt.Fprint(w, `{"id": "n1", "title": "First", "content": "# First\n\nbody"}`)
	}))
	defer ts.Close()

	note, err := newTestClient(ts).Note(context.Background(), "n1")
	require.NoError(t, err)
	assert.Equal(t, "First", note.Title)
	assert.Equal(t, "# First\n\nbody", note.Content)
}

func TestNoteRawTextBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		fmt.Fprint(w, "# Plain markdown, not JSON")
	}))
	defer ts.Close()

	note, err := newTestClient(ts).Note(context.Background(), "n1")
	require.NoError(t, err)
	assert.Equal(t, "n1", note.ID)
	assert.Equal(t, "# Plain markdown, not JSON", note.Content)
}

func TestNoteNotFound(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "note not found", http.StatusNotFound)
	}))
	defer ts.Close()

	_, err := newTestClient(ts).Note(context.Background(), "gone")
	var remote *RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, http.StatusNotFound, remote.Status)
}

func TestRetriesOn429(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, `{"id": "u1", "name": "Ada"}`)
	}))
	defer ts.Close()

	user, err := newTestClient(ts).Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Ada", user.Name)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestTransportError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	ts.Close() // connection refused from here on

	_, err := newTestClient(ts).Me(context.Background())
	require.Error(t, err)

	var remote *RemoteError
	assert.False(t, errors.As(err, &remote), "transport failures are not RemoteErrors")
}

func TestDefaultBaseURLApplied(t *testing.T) {
	client := NewClient(profile.Credential{APIToken: "tok"}, types.ClientConfig{})
	assert.Equal(t, profile.DefaultBaseURL, client.baseURL)
}
