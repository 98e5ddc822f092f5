// Package vision shells out to the external image-analysis scripts. A
// non-zero exit or malformed output is an external-process failure, never a
// core-logic failure.
package vision

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"time"
)

type Runner struct {
	PythonBin     string
	AnalyzeScript string
	TryOnScript   string
	Timeout       time.Duration
}

type Analysis struct {
	FaceShape   string   `json:"face_shape"`
	Confidence  float64  `json:"confidence,omitempty"`
	Recommended []string `json:"recommended_styles,omitempty"`
}

// ExternalError wraps a failure of the analyzer process itself.
type ExternalError struct {
	Op     string
	Detail string
	Err    error
}

func (e *ExternalError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Detail)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ExternalError) Unwrap() error { return e.Err }

// AnalyzeFace runs the analyzer on one image and returns the classification.
func (r *Runner) AnalyzeFace(ctx context.Context, imagePath string) (Analysis, error) {
	out, err := r.run(ctx, "face analysis failed", r.AnalyzeScript, imagePath)
	if err != nil {
		return Analysis{}, err
	}
	a, err := parseAnalysis(out)
	if err != nil {
		return Analysis{}, &ExternalError{Op: "face analysis failed", Detail: err.Error()}
	}
	a.Recommended = RecommendationsFor(a.FaceShape)
	return a, nil
}

// TryOn composites the frame reference onto the face image, writing the
// result to outPath. The script owns the rendering; we only verify the file
// appeared.
func (r *Runner) TryOn(ctx context.Context, facePath, framePath, outPath string) error {
	if _, err := r.run(ctx, "try-on failed", r.TryOnScript, facePath, framePath, outPath); err != nil {
		return err
	}
	if _, err := os.Stat(outPath); err != nil {
		return &ExternalError{Op: "try-on failed", Detail: "script produced no output image"}
	}
	return nil
}

func (r *Runner) run(ctx context.Context, op string, script string, args ...string) ([]byte, error) {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, r.PythonBin, append([]string{script}, args...)...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, &ExternalError{Op: op, Detail: string(bytes.TrimSpace(stderr.Bytes())), Err: err}
	}
	return stdout.Bytes(), nil
}

func parseAnalysis(out []byte) (Analysis, error) {
	var a Analysis
	if len(bytes.TrimSpace(out)) == 0 {
		return a, fmt.Errorf("analyzer returned no data")
	}
	if err := json.Unmarshal(out, &a); err != nil {
		return a, fmt.Errorf("invalid analyzer output: %w", err)
	}
	if a.FaceShape == "" {
		return a, fmt.Errorf("analyzer output missing face shape")
	}
	return a, nil
}

// RecommendationsFor maps a face-shape label to frame styles that suit it.
// Unknown labels get an empty list rather than an error.
func RecommendationsFor(shape string) []string {
	switch shape {
	case "round":
		return []string{"rectangle", "square", "wayfarer"}
	case "square":
		return []string{"round", "oval", "aviator"}
	case "oval":
		return []string{"aviator", "cat-eye", "square"}
	case "heart":
		return []string{"round", "rimless", "oval"}
	case "oblong":
		return []string{"oversized", "round", "square"}
	default:
		return nil
	}
}
