// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cache

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/hackmd-cli/pkg/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "notes.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleNotes() []types.Note {
	return []types.Note{
		{ID: "n1", Title: "Sprint planning notes", CreatedAt: 1000, LastChangedAt: 3000, PublishLink: "https://hackmd.io/n1"},
		{ID: "n2", Title: "Incident postmortem", CreatedAt: 1500, LastChangedAt: 5000},
		{ID: "n3", Title: "Planning the offsite", CreatedAt: 2000, LastChangedAt: 1000},
	}
}

func TestOpenEmptyCache(t *testing.T) {
	s := newTestStore(t)

	notes, err := s.List(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, notes)

	fetched, err := s.FetchedAt(context.Background())
	require.NoError(t, err)
	assert.True(t, fetched.IsZero())
}

func TestRefreshAndList(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Refresh(ctx, sampleNotes()))

	notes, err := s.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, notes, 3)

	// Newest change first.
	assert.Equal(t, []string{"n2", "n1", "n3"}, []string{notes[0].ID, notes[1].ID, notes[2].ID})
	assert.Equal(t, "https://hackmd.io/n1", notes[1].PublishLink)

	limited, err := s.List(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestRefreshReplacesPreviousSet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Refresh(ctx, sampleNotes()))
	require.NoError(t, s.Refresh(ctx, []types.Note{
		{ID: "n9", Title: "Only survivor", LastChangedAt: 9000},
	}))

	notes, err := s.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "n9", notes[0].ID)
}

func TestRefreshTitlesUntitledFallback(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Refresh(ctx, []types.Note{{ID: "n1"}}))

	notes, err := s.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "Untitled", notes[0].Title)
}

func TestSearch(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Refresh(ctx, sampleNotes()))

	tests := []struct {
		name    string
		query   string
		wantIDs []string
		errMsg  string
	}{
		{
			name:    "single term matches multiple titles",
			query:   "planning",
			wantIDs: []string{"n1", "n3"},
		},
		{
			name:    "terms are ANDed",
			query:   "planning sprint",
			wantIDs: []string{"n1"},
		},
		{
			name:    "no match",
			query:   "nonexistent",
			wantIDs: nil,
		},
		{
			name:    "fts syntax is neutralized",
			query:   `planning OR "unbalanced`,
			wantIDs: nil,
		},
		{
			name:   "empty query rejected",
			query:  "   ",
			errMsg: "empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			notes, err := s.Search(ctx, tt.query, 10)
			if tt.errMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)

			var ids []string
			for _, n := range notes {
				ids = append(ids, n.ID)
			}
			assert.ElementsMatch(t, tt.wantIDs, ids)
		})
	}
}

func TestSearchSurvivesRefresh(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Refresh(ctx, sampleNotes()))
	require.NoError(t, s.Refresh(ctx, []types.Note{
		{ID: "n7", Title: "Quarterly planning", LastChangedAt: 100},
	}))

	notes, err := s.Search(ctx, "planning", 10)
	require.NoError(t, err)
	require.Len(t, notes, 1, "FTS index must track the replaced note set")
	assert.Equal(t, "n7", notes[0].ID)
}

func TestFetchedAt(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	before := time.Now().Add(-time.Second)
	require.NoError(t, s.Refresh(ctx, sampleNotes()))

	fetched, err := s.FetchedAt(ctx)
	require.NoError(t, err)
	assert.False(t, fetched.IsZero())
	assert.True(t, fetched.After(before))
}

func TestFTSQueryQuoting(t *testing.T) {
	assert.Equal(t, `"planning"`, ftsQuery("planning"))
	assert.Equal(t, `"sprint" "planning"`, ftsQuery("sprint planning"))
	assert.Equal(t, `"say""cheese"`, ftsQuery(`say"cheese`))
	assert.Equal(t, "", ftsQuery("   "))
}
