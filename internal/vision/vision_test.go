package vision

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAnalysis(t *testing.T) {
	a, err := parseAnalysis([]byte(`{"face_shape":"round","confidence":0.92}`))
	require.NoError(t, err)
	assert.Equal(t, "round", a.FaceShape)
	assert.InDelta(t, 0.92, a.Confidence, 1e-9)
}

func TestParseAnalysisMissingShape(t *testing.T) {
	_, err := parseAnalysis([]byte(`{"confidence":0.5}`))
	assert.Error(t, err)
}

func TestParseAnalysisEmptyAndGarbage(t *testing.T) {
	_, err := parseAnalysis(nil)
	assert.Error(t, err)
	_, err = parseAnalysis([]byte("Traceback (most recent call last):"))
	assert.Error(t, err)
}

func TestRecommendationsFor(t *testing.T) {
	assert.Contains(t, RecommendationsFor("round"), "square")
	assert.Contains(t, RecommendationsFor("square"), "round")
	assert.Nil(t, RecommendationsFor("dodecahedron"))
}

// The runner only needs an executable that honors the script contract, so a
// shell stub stands in for the Python analyzer.
func writeScript(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "stub.sh")
	require.NoError(t, os.WriteFile(p, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return p
}

func TestAnalyzeFaceHappyPath(t *testing.T) {
	r := &Runner{
		PythonBin:     "sh",
		AnalyzeScript: writeScript(t, `echo '{"face_shape":"oval","confidence":0.8}'`),
		Timeout:       5 * time.Second,
	}
	a, err := r.AnalyzeFace(context.Background(), "ignored.jpg")
	require.NoError(t, err)
	assert.Equal(t, "oval", a.FaceShape)
	assert.NotEmpty(t, a.Recommended)
}

func TestAnalyzeFaceNonZeroExit(t *testing.T) {
	r := &Runner{
		PythonBin:     "sh",
		AnalyzeScript: writeScript(t, `echo "no face detected" >&2; exit 1`),
		Timeout:       5 * time.Second,
	}
	_, err := r.AnalyzeFace(context.Background(), "ignored.jpg")
	require.Error(t, err)

	var ee *ExternalError
	require.ErrorAs(t, err, &ee)
	assert.Contains(t, ee.Detail, "no face detected")
}

func TestTryOnMissingOutput(t *testing.T) {
	r := &Runner{
		PythonBin:   "sh",
		TryOnScript: writeScript(t, `exit 0`),
		Timeout:     5 * time.Second,
	}
	err := r.TryOn(context.Background(), "face.jpg", "frame.png", filepath.Join(t.TempDir(), "out.png"))
	var ee *ExternalError
	require.ErrorAs(t, err, &ee)
}

func TestTryOnWritesOutput(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.png")
	r := &Runner{
		PythonBin:   "sh",
		TryOnScript: writeScript(t, `: > "$3"`),
		Timeout:     5 * time.Second,
	}
	require.NoError(t, r.TryOn(context.Background(), "face.jpg", "frame.png", out))
}
