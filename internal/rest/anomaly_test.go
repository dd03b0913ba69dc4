package rest

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brandPulse/domain"
)

type stubConfigProvider struct {
	cfg domain.EngineConfig
	err error
}

func (s *stubConfigProvider) GetConfig(context.Context, string) (domain.EngineConfig, error) {
	return s.cfg, s.err
}

func TestDetectionConfigAppliesTenantOverrides(t *testing.T) {
	h := NewAnomalyHandler(&stubConfigProvider{cfg: domain.EngineConfig{
		AnomalyThreshold:     40,
		EWMAAlpha:            0.5,
		MinAnomalyHistory:    9,
		MinExperimentSamples: 250,
	}})

	cfg := h.detectionConfig(context.Background(), "tenant-1")
	assert.InDelta(t, 40.0, cfg.DeviationThreshold, 1e-9)
	assert.InDelta(t, 0.5, cfg.Alpha, 1e-9)
	assert.Equal(t, 9, cfg.MinHistory)
	assert.Equal(t, 250, cfg.MinSampleSize)
}

func TestCheckAnomalyHonorsTenantMinHistory(t *testing.T) {
	h := NewAnomalyHandler(&stubConfigProvider{cfg: domain.EngineConfig{
		MinAnomalyHistory: 9,
	}})

	// eight points would clear the default floor of five, but the
	// tenant demands nine before anything can be flagged
	body := `{"current":500,"history":[10,10,10,10,10,10,10,10]}`
	c, rec := newContext(t, http.MethodPost, "/api/v1/metrics/anomaly", body)
	c.Set("tenant_id", "tenant-1")

	require.NoError(t, h.CheckAnomaly(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"is_anomaly":false`)
}
