package export

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/sheets/v4"

	"github.com/shrimpsizemoose/semla/internal/app"
	"github.com/shrimpsizemoose/semla/internal/models"
	"github.com/shrimpsizemoose/semla/internal/store"
)

func TestBuildJobs(t *testing.T) {
	configs := []app.GSheetConfig{
		{Unit: "CS101", SheetID: "sheet-a", CredentialsPath: "a.json"},
		{Unit: "CS102", SheetID: "sheet-b", CredentialsPath: "b.json"},
	}

	t.Run("each config gets a service from its own credentials", func(t *testing.T) {
		var paths []string
		jobs, err := buildJobs(configs, func(credentialsPath string) (*sheets.Service, error) {
			paths = append(paths, credentialsPath)
			return &sheets.Service{BasePath: credentialsPath}, nil
		})
		require.NoError(t, err)
		require.Len(t, jobs, 2)

		assert.Equal(t, []string{"a.json", "b.json"}, paths)
		assert.Equal(t, "CS101", jobs[0].cfg.Unit)
		assert.Equal(t, "CS102", jobs[1].cfg.Unit)
		assert.NotSame(t, jobs[0].svc, jobs[1].svc)
		assert.Equal(t, "a.json", jobs[0].svc.BasePath)
		assert.Equal(t, "b.json", jobs[1].svc.BasePath)
	})

	t.Run("a failing config aborts with its unit named", func(t *testing.T) {
		_, err := buildJobs(configs, func(credentialsPath string) (*sheets.Service, error) {
			if credentialsPath == "b.json" {
				return nil, assert.AnError
			}
			return &sheets.Service{}, nil
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "CS102")
	})
}

func TestBuildMatrix(t *testing.T) {
	e := &GSheetExporter{config: &app.Config{}}

	rows := []store.GradeExportRow{
		{StudentEmail: "a@example.edu", AssignmentTitle: "ps1", Status: models.StatusGraded, Grade: "A"},
		{StudentEmail: "a@example.edu", AssignmentTitle: "ps2", Status: models.StatusSubmitted},
		{StudentEmail: "b@example.edu", AssignmentTitle: "ps1", Status: models.StatusSubmitted},
	}

	values := e.buildMatrix(rows)
	require.Len(t, values, 3)
	assert.Equal(t, []interface{}{"student", "ps1", "ps2"}, values[0])
	assert.Equal(t, []interface{}{"a@example.edu", "A", "✓"}, values[1])
	assert.Equal(t, []interface{}{"b@example.edu", "✓", ""}, values[2])
}

func TestTimestampCell(t *testing.T) {
	now := time.Date(2026, 2, 15, 12, 0, 0, 0, time.UTC)

	t.Run("no emoji configured", func(t *testing.T) {
		e := &GSheetExporter{config: &app.Config{}}
		assert.Equal(t, "UPD: 15 February 12:00", e.timestampCell(now))
	})

	t.Run("emoji appended when configured", func(t *testing.T) {
		config := &app.Config{EmojiVariants: []string{"🧁"}}
		e := &GSheetExporter{config: config}
		assert.Equal(t, "UPD: 15 February 12:00 🧁", e.timestampCell(now))
	})
}
