// Package testutil provides golden-fixture comparison for package tests.
// Grounded on the teacher's testutil/golden.go (UPDATE_GOLDENS env var,
// testdata/<feature>/<name>.golden path convention), adapted from JSON to
// YAML fixtures (gopkg.in/yaml.v3) and from a hand-rolled line differ to
// github.com/google/go-cmp/cmp for mismatch reporting.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"
)

// UpdateGoldens controls whether CompareWithGolden writes fixtures instead
// of comparing against them: UPDATE_GOLDENS=true go test ./...
var UpdateGoldens = os.Getenv("UPDATE_GOLDENS") == "true"

// GoldenPath returns the fixture path for one (feature, name) pair.
func GoldenPath(feature, name string) string {
	return filepath.Join("testdata", feature, name+".golden.yaml")
}

// CompareWithGolden marshals actual to YAML and compares it against the
// fixture at testdata/<feature>/<name>.golden.yaml, structurally (via
// cmp.Diff on the decoded value, not the raw bytes, so field order and
// formatting differences don't cause spurious failures).
func CompareWithGolden(t *testing.T, feature, name string, actual any) {
	t.Helper()
	path := GoldenPath(feature, name)

	actualBytes, err := yaml.Marshal(actual)
	if err != nil {
		t.Fatalf("testutil: marshaling actual value: %v", err)
	}

	if UpdateGoldens {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("testutil: creating golden directory: %v", err)
		}
		if err := os.WriteFile(path, actualBytes, 0o644); err != nil {
			t.Fatalf("testutil: writing golden file: %v", err)
		}
		t.Logf("updated golden file: %s", path)
		return
	}

	expectedBytes, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			t.Fatalf("testutil: golden file %s does not exist (run with UPDATE_GOLDENS=true to create it)", path)
		}
		t.Fatalf("testutil: reading golden file: %v", err)
	}

	var expected, actualDecoded any
	if err := yaml.Unmarshal(expectedBytes, &expected); err != nil {
		t.Fatalf("testutil: decoding golden file: %v", err)
	}
	if err := yaml.Unmarshal(actualBytes, &actualDecoded); err != nil {
		t.Fatalf("testutil: decoding actual value: %v", err)
	}

	if diff := cmp.Diff(expected, actualDecoded); diff != "" {
		t.Errorf("golden mismatch for %s/%s (-want +got):\n%s", feature, name, diff)
	}
}
