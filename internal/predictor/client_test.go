package predictor

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"reflow_predictor/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRequest() models.PredictionRequest {
	return models.NewPredictionRequest(
		models.BoardRecord{Length: 100, Width: 50, Thickness: 1.6, Layers: 4, CuOuter: 35, CuInner: 18, SolderPasteType: models.PasteKoki},
		models.ProcessReadings{Temps: [models.ZoneCount]float64{110, 130, 150, 165, 175, 185, 200, 235, 245, 240}, ConveyorSpeed: 800},
	)
}

func TestPredict_Success(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/predict", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"max_rising_slope":1.5,"soak_time":100.25,"reflow_time":0,"peak_temp":240.1}`))
	}))
	defer srv.Close()

	res, err := NewClient(srv.URL+"/").Predict(context.Background(), sampleRequest())
	require.NoError(t, err)

	// flat request body with the original field names
	assert.Equal(t, 100.0, got["length"])
	assert.Equal(t, 4.0, got["layers"])
	assert.Equal(t, models.PasteKoki, got["solderPasteType"])
	assert.Equal(t, 110.0, got["t1"])
	assert.Equal(t, 240.0, got["t10"])
	assert.Equal(t, 800.0, got["conveyorSpeed"])

	v, ok := res.Value(models.MetricSoakTime)
	assert.True(t, ok)
	assert.Equal(t, 100.25, v)
	v, ok = res.Value(models.MetricReflowTime)
	assert.True(t, ok, "zero must be a present value")
	assert.Equal(t, 0.0, v)
}

func TestPredict_MissingMetricIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"max_rising_slope":1.5,"reflow_time":50,"peak_temp":240}`))
	}))
	defer srv.Close()

	res, err := NewClient(srv.URL).Predict(context.Background(), sampleRequest())
	require.NoError(t, err)
	_, ok := res.Value(models.MetricSoakTime)
	assert.False(t, ok)
}

func TestPredict_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Prediction failed!"}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Predict(context.Background(), sampleRequest())
	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Equal(t, http.StatusInternalServerError, netErr.StatusCode)
	assert.Contains(t, err.Error(), "Prediction failed!")
}

func TestPredict_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(url).Predict(context.Background(), sampleRequest())
	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Zero(t, netErr.StatusCode)
}

func TestPredict_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	_, err := NewClient(srv.URL, WithTimeout(50*time.Millisecond)).Predict(context.Background(), sampleRequest())
	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
}

func TestPredict_ContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewClient(srv.URL).Predict(ctx, sampleRequest())
	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestPredict_DecodeErrors(t *testing.T) {
	cases := map[string]string{
		"malformed":     `{"max_rising_slope":`,
		"wrong type":    `{"max_rising_slope":"fast"}`,
		"array":         `[1,2,3]`,
		"no metrics":    `{"error":"nope"}`,
		"null":          `null`,
		"nan literal":   `{"peak_temp":NaN}`,
		"trailing junk": `{"peak_temp":240}{"peak_temp":1}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			}))
			defer srv.Close()

			_, err := NewClient(srv.URL).Predict(context.Background(), sampleRequest())
			var decErr *DecodeError
			require.ErrorAs(t, err, &decErr)
		})
	}
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient("")
	assert.Equal(t, DefaultBaseURL, c.BaseURL())
	assert.Equal(t, DefaultTimeout, c.httpClient.Timeout)
}
