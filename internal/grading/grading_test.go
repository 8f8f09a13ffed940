package grading

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shrimpsizemoose/semla/internal/models"
)

func TestCanReplace(t *testing.T) {
	testCases := []struct {
		name     string
		existing *models.Submission
		wantErr  error
	}{
		{
			name:     "first upload, no row yet",
			existing: nil,
			wantErr:  nil,
		},
		{
			name:     "re-upload before grading replaces in place",
			existing: &models.Submission{Status: models.StatusSubmitted},
			wantErr:  nil,
		},
		{
			name:     "upload after grading is blocked",
			existing: &models.Submission{Status: models.StatusGraded, Grade: "A"},
			wantErr:  ErrAlreadyGraded,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := CanReplace(tc.existing)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateGrade(t *testing.T) {
	assert.NoError(t, ValidateGrade("A+"))
	assert.NoError(t, ValidateGrade("95%"))
	assert.NoError(t, ValidateGrade("Pass"))

	assert.ErrorIs(t, ValidateGrade(""), ErrEmptyGrade)
	assert.ErrorIs(t, ValidateGrade("   "), ErrEmptyGrade)
}

func TestDisplayStatus(t *testing.T) {
	assert.Equal(t, models.StatusPending, DisplayStatus(nil))
	assert.Equal(t, models.StatusSubmitted, DisplayStatus(&models.Submission{Status: models.StatusSubmitted}))
	assert.Equal(t, models.StatusGraded, DisplayStatus(&models.Submission{Status: models.StatusGraded}))
}
