package textstat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Loading a tiktoken encoding downloads the BPE ranks on first use, so
// these tests are skipped in offline environments.
func newEstimatorOrSkip(t *testing.T) *Estimator {
	t.Helper()
	est, err := NewEstimator(DefaultEncoding)
	if err != nil {
		t.Skipf("tiktoken encoding unavailable: %v", err)
	}
	return est
}

func TestEstimatorDefaults(t *testing.T) {
	est := newEstimatorOrSkip(t)
	assert.Equal(t, EncodingCL100kBase, est.Name())
}

func TestMeasure(t *testing.T) {
	est := newEstimatorOrSkip(t)

	stats := est.Measure("一丁丂七")
	assert.Equal(t, 4, stats.Symbols)
	assert.Equal(t, 12, stats.Bytes) // 3 UTF-8 bytes per ideograph
	assert.Greater(t, stats.Tokens, 0)
}

func TestMeasureEmpty(t *testing.T) {
	est := newEstimatorOrSkip(t)

	stats := est.Measure("")
	assert.Equal(t, Stats{}, stats)
}

func TestUnknownEncodingFails(t *testing.T) {
	_, err := NewEstimator("no_such_encoding")
	require.Error(t, err)
}
