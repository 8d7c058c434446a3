package aisummarizer

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-DoctorBooking/internal/domain"
	"github.com/m04kA/SMC-DoctorBooking/pkg/logger"
	"github.com/m04kA/SMC-DoctorBooking/pkg/ptr"
)

func input() Input {
	return Input{
		Patient: domain.Patient{
			Name:          "Ann",
			Age:           ptr.Ptr(34),
			BloodPressure: domain.Flag{Value: "high", Known: true},
		},
		Reports:      []domain.ReportGroup{{Name: "CBC", Files: []string{"https://files.test/cbc-1.pdf"}}},
		HealthIssues: "headache",
	}
}

func modelReply(text string) string {
	b, _ := json.Marshal(map[string]interface{}{
		"candidates": []interface{}{
			map[string]interface{}{
				"content": map[string]interface{}{
					"parts": []interface{}{map[string]string{"text": text}},
				},
			},
		},
	})
	return string(b)
}

func TestAnalyze_ExtractsObjectFromWrappedReply(t *testing.T) {
	var gotKey, gotPrompt string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-goog-api-key")
		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		gotPrompt = req.Contents[0].Parts[0].Text
		w.Write([]byte(modelReply("```json\n{\"overallSummary\":\"stable\"}\n```")))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "key-1", time.Second, logger.NewNop())

	out, err := client.Analyze(t.Context(), input())

	require.NoError(t, err)
	assert.JSONEq(t, `{"overallSummary":"stable"}`, string(out))
	assert.Equal(t, "key-1", gotKey)
	assert.Contains(t, gotPrompt, "https://files.test/cbc-1.pdf")
	assert.Contains(t, gotPrompt, `"bloodPressure": "high"`)
	assert.Contains(t, gotPrompt, `"diabetic": "Not mentioned"`)
	assert.True(t, strings.Contains(gotPrompt, "headache"))
}

func TestAnalyze_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{name: "upstream error", status: http.StatusTooManyRequests, body: `{"error":"quota"}`, wantErr: ErrUnavailable},
		{name: "no candidates", status: http.StatusOK, body: `{"candidates":[]}`, wantErr: ErrInvalidResponse},
		{name: "no json in text", status: http.StatusOK, body: modelReply("I cannot help"), wantErr: ErrInvalidResponse},
		{name: "broken json", status: http.StatusOK, body: modelReply("{\"a\": }"), wantErr: ErrInvalidResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client := NewClient(srv.URL, "k", time.Second, logger.NewNop())

			_, err := client.Analyze(t.Context(), input())

			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
