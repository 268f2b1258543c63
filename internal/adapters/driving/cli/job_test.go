package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/quarrydev/quarry/internal/core/domain"
)

func TestJobCmd_Use(t *testing.T) {
	assert.Equal(t, "job", jobCmd.Use)
}

func TestJobStatusCmd_ShowsStatus(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"job", "status", "job-1"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "Job: job-1")
	assert.Contains(t, buf.String(), "completed")
}

func TestJobStatusCmd_ShowsPhaseWhileProcessing(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	mock := ingestionService.(*mockIngestionService)
	mock.status.State = domain.JobProcessing
	mock.status.Phase = domain.PhaseEmbedding
	mock.status.Percent = 60

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"job", "status", "job-1"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "embedding (60%)")
}

func TestJobStatusCmd_NotFound(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	ingestionService.(*mockIngestionService).statusErr = domain.ErrNotFound

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"job", "status", "missing"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestJobCancelCmd_ReportsCancellation(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"job", "cancel", "doc-1"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "Cancelled job for document doc-1")
}

func TestJobCancelCmd_ReportsNothingInFlight(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	ingestionService.(*mockIngestionService).cancelled = false

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"job", "cancel", "doc-1"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "No job in flight")
}
