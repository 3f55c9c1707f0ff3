package internal

import (
	"strings"
	"testing"
)

func withBuildVars(t *testing.T, v, s, c string) {
	t.Helper()
	oldV, oldS, oldC := version, stage, gitCommit
	version, stage, gitCommit = v, s, c
	t.Cleanup(func() { version, stage, gitCommit = oldV, oldS, oldC })
}

func TestVersionStringLocal(t *testing.T) {
	withBuildVars(t, "v1.2.3", "", "abc123")

	if !IsLocal() {
		t.Fatal("build with missing stage should be local")
	}
	if got := VersionString(); got != "(local)" {
		t.Fatalf("VersionString = %q, want (local)", got)
	}
}

func TestVersionStringRelease(t *testing.T) {
	withBuildVars(t, "V1.2.3", "main", "abc123")

	got := VersionString()
	if !strings.HasPrefix(got, "1.2.3 abc123 [") {
		t.Fatalf("VersionString = %q, want 1.2.3 abc123 [<arch>]", got)
	}
}

func TestVersionStringStage(t *testing.T) {
	withBuildVars(t, "1.0.0", "Staging", "ff00")

	got := VersionString()
	if !strings.HasPrefix(got, "1.0.0+staging ff00 [") {
		t.Fatalf("VersionString = %q, want stage suffix", got)
	}
}

func TestUnsetVariables(t *testing.T) {
	withBuildVars(t, " ", "", "")

	if Version() != "(undefined)" {
		t.Fatalf("Version = %q", Version())
	}
	if Stage() != "(undefined)" {
		t.Fatalf("Stage = %q", Stage())
	}
	if GitCommit() != "(undefined)" {
		t.Fatalf("GitCommit = %q", GitCommit())
	}
}
