package types

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/killallgit/guidepack/internal/models"
	apperrors "github.com/killallgit/guidepack/pkg/errors"
)

func TestSendError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedCode   string
		expectDetails  bool
	}{
		{"not found", apperrors.NotFound("guidepack", "abc"), http.StatusNotFound, "NOT_FOUND", true},
		{"missing input", apperrors.MissingInputFile("guide", "/gp/audio.wav"), http.StatusBadRequest, "INPUT", true},
		{"process failure", apperrors.ProcessFailure("mask", 1, "boom"), http.StatusBadGateway, "PROCESS_FAILURE", true},
		{"consistency", apperrors.NonBinaryMask(3, 10), http.StatusUnprocessableEntity, "NON_BINARY_MASK", true},
		{"timeout", apperrors.TimeoutError("guide", "1s"), http.StatusGatewayTimeout, "TIMEOUT", true},
		{"plain error", errors.New("disk full"), http.StatusInternalServerError, "INTERNAL", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			SendError(c, tt.err)

			assert.Equal(t, tt.expectedStatus, w.Code)
			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, StatusError, resp.Status)
			assert.Equal(t, tt.expectedCode, resp.Error)
			assert.NotEmpty(t, resp.Message)
			assert.Equal(t, tt.expectDetails, resp.Details != nil)
		})
	}
}

func TestBindOptionalJSON(t *testing.T) {
	gin.SetMode(gin.TestMode)

	type body struct {
		FPS int `json:"fps"`
	}

	tests := []struct {
		name     string
		payload  string
		ok       bool
		expected int
	}{
		{"empty body keeps defaults", "", true, 7},
		{"valid body", `{"fps":24}`, true, 24},
		{"malformed body", `{"fps":`, false, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.payload))
			c.Request.Header.Set("Content-Type", "application/json")

			target := body{FPS: 7}
			assert.Equal(t, tt.ok, BindOptionalJSON(c, &target))
			assert.Equal(t, tt.expected, target.FPS)
			if !tt.ok {
				assert.Equal(t, http.StatusBadRequest, w.Code)
			}
		})
	}
}

func TestParseUintParam(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "id", Value: "42"}}
	id, ok := ParseUintParam(c, "id")
	assert.True(t, ok)
	assert.Equal(t, uint(42), id)

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "id", Value: "-1"}}
	_, ok = ParseUintParam(c, "id")
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestNewJobResponse(t *testing.T) {
	tests := []struct {
		status   models.JobStatus
		expected string
	}{
		{models.JobStatusPending, StatusQueued},
		{models.JobStatusProcessing, StatusProcessing},
		{models.JobStatusCompleted, StatusOK},
		{models.JobStatusFailed, StatusFailed},
		{models.JobStatusPermanentlyFailed, StatusFailed},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			job := &models.Job{Type: models.JobTypeRender, Status: tt.status, Progress: 50, Stage: "mask"}
			job.ID = 3

			resp := NewJobResponse(job, "msg")
			assert.Equal(t, tt.expected, resp.Status)
			assert.Equal(t, uint(3), resp.JobID)
			assert.Equal(t, string(tt.status), resp.State)
			assert.Equal(t, "mask", resp.Stage)
			assert.Equal(t, 50, resp.Progress)
			assert.Nil(t, resp.Result)
		})
	}

	job := &models.Job{Status: models.JobStatusCompleted, Result: models.JobResult{"final": "/gp/final.mp4"}}
	assert.NotNil(t, NewJobResponse(job, "").Result)
}
