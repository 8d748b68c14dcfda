package measure

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/looking-glass/backend/internal/models"
)

func pingRequest() models.TestRequest {
	return models.TestRequest{
		Type:   models.TestPing,
		Target: "example.com",
		Tag:    "aws-eu-central-1",
	}
}

func TestClient_Submit(t *testing.T) {
	t.Run("success returns provider job id", func(t *testing.T) {
		var body map[string]interface{}

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			require.Equal(t, "/measurements", r.URL.Path)
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

			w.WriteHeader(http.StatusAccepted)
			w.Write([]byte(`{"id":"abc123"}`))
		}))
		defer srv.Close()

		id, err := NewClient(srv.URL).Submit(context.Background(), pingRequest())
		require.NoError(t, err)
		assert.Equal(t, "abc123", id)

		// Exactly one probe per job, progress updates on.
		assert.Equal(t, "ping", body["type"])
		assert.Equal(t, "example.com", body["target"])
		assert.Equal(t, true, body["inProgressUpdates"])
		assert.Equal(t, float64(1), body["limit"])

		locations, ok := body["locations"].([]interface{})
		require.True(t, ok)
		require.Len(t, locations, 1)
		assert.Equal(t, map[string]interface{}{"magic": "aws-eu-central-1"}, locations[0])
	})

	t.Run("target is trimmed", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var body submission
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "example.com", body.Target)

			w.Write([]byte(`{"id":"x"}`))
		}))
		defer srv.Close()

		req := pingRequest()
		req.Target = "  example.com  "

		_, err := NewClient(srv.URL).Submit(context.Background(), req)
		require.NoError(t, err)
	})

	t.Run("provider rejection carries status and message", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			w.Write([]byte(`{"error":{"type":"validation_error","message":"invalid target"}}`))
		}))
		defer srv.Close()

		_, err := NewClient(srv.URL).Submit(context.Background(), pingRequest())

		var serr *SubmissionError
		require.ErrorAs(t, err, &serr)
		assert.Equal(t, http.StatusUnprocessableEntity, serr.StatusCode)
		assert.Equal(t, "invalid target", serr.Message)
	})

	t.Run("success without job id is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(`{}`))
		}))
		defer srv.Close()

		_, err := NewClient(srv.URL).Submit(context.Background(), pingRequest())

		var serr *SubmissionError
		require.ErrorAs(t, err, &serr)
		assert.Equal(t, "missing job id", serr.Message)
	})

	t.Run("empty target fails before any network call", func(t *testing.T) {
		req := pingRequest()
		req.Target = "   "

		_, err := NewClient("http://127.0.0.1:1").Submit(context.Background(), req)

		var serr *SubmissionError
		require.ErrorAs(t, err, &serr)
		assert.Contains(t, serr.Message, "target")
	})

	t.Run("unrecognized test type fails before any network call", func(t *testing.T) {
		req := pingRequest()
		req.Type = "portscan"

		_, err := NewClient("http://127.0.0.1:1").Submit(context.Background(), req)

		var serr *SubmissionError
		require.ErrorAs(t, err, &serr)
		assert.Contains(t, serr.Message, "portscan")
	})
}

func TestClient_GetMeasurement(t *testing.T) {
	t.Run("decodes status and results", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodGet, r.Method)
			require.Equal(t, "/measurements/abc123", r.URL.Path)

			w.Write([]byte(`{
				"id": "abc123",
				"status": "finished",
				"results": [{
					"probe": {"city": "Tokyo", "country": "JP", "network": "Example Net", "asn": 64500,
						"longitude": 139.69, "latitude": 35.69, "resolvers": ["private"]},
					"result": {"status": "finished", "rawOutput": "PING ..."}
				}]
			}`))
		}))
		defer srv.Close()

		m, err := NewClient(srv.URL).GetMeasurement(context.Background(), "abc123")
		require.NoError(t, err)

		assert.Equal(t, ResultFinished, m.Status)
		require.Len(t, m.Results, 1)
		assert.Equal(t, "Tokyo", m.Results[0].Probe.City)
		assert.Equal(t, []string{"private"}, m.Results[0].Probe.Resolvers)
		assert.Equal(t, "PING ...", m.Results[0].Result.rawOutputString())
	})

	t.Run("non-200 is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":{"message":"measurement not found"}}`))
		}))
		defer srv.Close()

		_, err := NewClient(srv.URL).GetMeasurement(context.Background(), "nope")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "measurement not found")
	})
}
