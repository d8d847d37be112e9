package server

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/resume-builder/internal/db"
	"github.com/jonathan/resume-builder/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Resumes(t *testing.T) {
	ctx := t.Context()
	store := NewMemoryStore()

	first, err := store.CreateResume(ctx, types.SampleResume(1))
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond)
	second, err := store.CreateResume(ctx, types.SampleResume(2))
	require.NoError(t, err)

	list, err := store.ListResumes(ctx, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID, "newest first")

	limited, err := store.ListResumes(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	// Returned documents are copies
	got, err := store.GetResume(ctx, first.ID)
	require.NoError(t, err)
	got.Document.Name = "Changed"
	again, err := store.GetResume(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alex Morgan", again.Document.Name)

	doc := types.SampleResume(1)
	doc.Name = "Sam Rivera"
	ok, err := store.UpdateResume(ctx, first.ID, doc)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.UpdateResume(ctx, uuid.New(), doc)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = store.DeleteResume(ctx, first.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	missing, err := store.GetResume(ctx, first.ID)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestMemoryStore_Exports(t *testing.T) {
	ctx := t.Context()
	store := NewMemoryStore()
	resumeID := uuid.New()

	for _, strategy := range []string{"print", "compose", "raster"} {
		rec := &db.ExportRecord{ResumeID: resumeID, Strategy: strategy, Status: db.ExportSucceeded}
		id, err := store.RecordExport(ctx, rec)
		require.NoError(t, err)
		assert.Equal(t, id, rec.ID)
	}

	records, err := store.ListExports(ctx, resumeID, 2)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "raster", records[0].Strategy)
	assert.Equal(t, "compose", records[1].Strategy)
}

func TestResumeSource(t *testing.T) {
	ctx := t.Context()
	store := NewMemoryStore()
	created, err := store.CreateResume(ctx, types.SampleResume(1))
	require.NoError(t, err)

	source := ResumeSource(store)

	doc, err := source.LoadResume(ctx, created.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "Alex Morgan", doc.Name)

	doc, err = source.LoadResume(ctx, uuid.NewString())
	require.NoError(t, err)
	assert.Nil(t, doc)

	_, err = source.LoadResume(ctx, "nope")
	var validation *ErrValidation
	assert.ErrorAs(t, err, &validation)
}
