package version

import "testing"

func TestString(t *testing.T) {
	oldV, oldSHA, oldTime := Version, GitSHA, BuildTime
	t.Cleanup(func() { Version, GitSHA, BuildTime = oldV, oldSHA, oldTime })

	if got, want := String("arrayopt"), "arrayopt dev (commit unknown, built unknown)"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}

	Version, GitSHA, BuildTime = "v0.3.1", "abc1234", "2026-01-02T03:04:05Z"
	if got, want := String("tdoa"), "tdoa v0.3.1 (commit abc1234, built 2026-01-02T03:04:05Z)"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
