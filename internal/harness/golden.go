package harness

import (
	"bytes"
	"context"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// RunWithGolden runs sc and compares its write trace against
// testdata/golden/{sc.Name}.golden. Regenerate with:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, sc *Scenario) *Result {
	t.Helper()

	result, err := Run(context.Background(), sc)
	if err != nil {
		t.Fatalf("run scenario %s: %v", sc.Name, err)
	}
	AssertGolden(t, sc.Name, result)
	return result
}

// AssertGolden compares an existing result's trace against its golden file.
func AssertGolden(t *testing.T, name string, result *Result) {
	t.Helper()

	var buf bytes.Buffer
	if err := FormatTrace(&buf, result.Trace); err != nil {
		t.Fatalf("format trace: %v", err)
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, buf.Bytes())
}
