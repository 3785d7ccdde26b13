package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type recordingLogger struct{ msg string }

func (r *recordingLogger) Fatalf(format string, args ...any) {
	r.msg = format
	if len(args) > 0 {
		r.msg = strings.TrimSpace(strings.Join([]string{format, args[0].(string)}, " "))
	}
}

func writeFile(t *testing.T, dir, name, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestDirectImportViolations(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.go", "package x\n\nimport (\n\t\"fmt\"\n\t\"kittycore/internal/infra/persistence/memory\"\n)\n")
	writeFile(t, dir, "b.go", "package x\n\nimport \"database/sql\"\n")
	writeFile(t, dir, "a_test.go", "package x\n\nimport \"kittycore/internal/core\"\n")

	viols, err := directImportViolations(dir, Any(InfraImport, DriverImport))
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	want := []string{
		"database/sql (in b.go)",
		"kittycore/internal/infra/persistence/memory (in a.go)",
	}
	if strings.Join(viols, "|") != strings.Join(want, "|") {
		t.Fatalf("unexpected violations %v", viols)
	}

	viols, err = directImportViolations(dir, InternalImport)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(viols) != 1 {
		t.Fatalf("test files must be skipped, got %v", viols)
	}
}

func TestDirectImportViolationsMissingDir(t *testing.T) {
	if _, err := directImportViolations(filepath.Join(t.TempDir(), "nope"), InternalImport); err == nil {
		t.Fatalf("expected error for missing dir")
	}
}

func TestFailIfViolations(t *testing.T) {
	var rec recordingLogger
	failIfViolations(&rec, "reason", nil)
	if rec.msg != "" {
		t.Fatalf("no violations should not fail")
	}
	failIfViolations(&rec, "layering", []string{"x"})
	if !strings.Contains(rec.msg, "layering") {
		t.Fatalf("failure should mention reason, got %q", rec.msg)
	}
}

func TestPredicates(t *testing.T) {
	cases := []struct {
		pred ImportPredicate
		path string
		want bool
	}{
		{InternalImport, "kittycore/internal/core", true},
		{InternalImport, "kittycore/pkg/domain", false},
		{InfraImport, "kittycore/internal/infra/blob/s3", true},
		{InfraImport, "kittycore/internal/blob", false},
		{DriverImport, "github.com/aws/aws-sdk-go-v2/service/s3", true},
		{DriverImport, "github.com/spf13/viper", false},
	}
	for _, tc := range cases {
		if got := tc.pred(tc.path); got != tc.want {
			t.Fatalf("predicate on %s = %v, want %v", tc.path, got, tc.want)
		}
	}
}
