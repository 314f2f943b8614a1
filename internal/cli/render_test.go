package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRunRender(t *testing.T) {
	setTestConfig(t, nil)
	file := writeTestDoc(t, "doc.md", "# Title\n\nSome body text.\n\n- one\n- two\n")
	out := filepath.Join(t.TempDir(), "proof.pdf")

	if err := runRender(testContext(), file, out); err != nil {
		t.Fatalf("runRender() returned error: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if !strings.HasPrefix(string(data), "%PDF-") {
		t.Errorf("output should start with %%PDF-, got %q", data[:8])
	}
}

func TestRunRenderDefaultOutput(t *testing.T) {
	setTestConfig(t, nil)
	file := writeTestDoc(t, "doc.md", "plain paragraph\n")

	if err := runRender(testContext(), file, ""); err != nil {
		t.Fatalf("runRender() returned error: %v", err)
	}

	want := strings.TrimSuffix(file, ".md") + ".pdf"
	if _, err := os.Stat(want); err != nil {
		t.Errorf("default output %s should exist: %v", want, err)
	}
}

func TestRunRenderMissingFile(t *testing.T) {
	setTestConfig(t, nil)

	err := runRender(testContext(), filepath.Join(t.TempDir(), "absent.html"), "")
	if err == nil {
		t.Error("runRender() should fail for a missing document")
	}
}
