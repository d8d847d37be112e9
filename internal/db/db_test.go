package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSchema_DefinesTables(t *testing.T) {
	schema := Schema()
	for _, table := range []string{"resumes", "layout_preferences", "resume_exports"} {
		assert.Contains(t, schema, "CREATE TABLE IF NOT EXISTS "+table)
	}
	assert.Contains(t, schema, "ON DELETE CASCADE")
}

func TestExportRecord_Failed(t *testing.T) {
	msg := "chrome crashed"
	failed := ExportRecord{Status: ExportFailed, Error: &msg}
	ok := ExportRecord{Status: ExportSucceeded, Pages: 2}

	assert.True(t, failed.Failed())
	assert.False(t, ok.Failed())
	assert.Nil(t, ok.Error)
}
