package cmd

import "testing"

func TestHumanSize(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{10 * 1024 * 1024, "10.0 MB"},
		{3 * 1024 * 1024 * 1024, "3.0 GB"},
	}
	for _, tt := range tests {
		if got := humanSize(tt.n); got != tt.want {
			t.Errorf("humanSize(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestRequireUser(t *testing.T) {
	t.Run("flag wins", func(t *testing.T) {
		userID = "alice"
		defer func() { userID = "" }()
		t.Setenv("DOCSAGE_USER", "bob")

		got, err := requireUser()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "alice" {
			t.Errorf("user = %q, want alice", got)
		}
	})

	t.Run("env fallback", func(t *testing.T) {
		userID = ""
		t.Setenv("DOCSAGE_USER", "bob")

		got, err := requireUser()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "bob" {
			t.Errorf("user = %q, want bob", got)
		}
	})

	t.Run("missing", func(t *testing.T) {
		userID = ""
		t.Setenv("DOCSAGE_USER", "")

		if _, err := requireUser(); err == nil {
			t.Fatal("expected error with no user configured")
		}
	})
}
