package domain

import "testing"

func TestProjectStatusCanTransition(t *testing.T) {
	cases := []struct {
		from ProjectStatus
		to   ProjectStatus
		want bool
	}{
		{ProjectPending, ProjectInProgress, true},
		{ProjectPending, ProjectCompleted, true},
		{ProjectInProgress, ProjectCompleted, true},
		{ProjectInProgress, ProjectPending, false},
		{ProjectCompleted, ProjectPending, false},
		{ProjectCompleted, ProjectInProgress, false},
		{ProjectCompleted, ProjectCompleted, false},
		{ProjectStatus("UNKNOWN"), ProjectCompleted, false},
	}

	for _, tc := range cases {
		if got := tc.from.CanTransition(tc.to); got != tc.want {
			t.Fatalf("%s -> %s: expected %v got %v", tc.from, tc.to, tc.want, got)
		}
	}
}

func TestParseProvider(t *testing.T) {
	if p, ok := ParseProvider("oht"); !ok || p != ProviderOHT {
		t.Fatalf("expected OHT got %q ok=%v", p, ok)
	}
	if p, ok := ParseProvider(" GCT "); !ok || p != ProviderGCT {
		t.Fatalf("expected GCT got %q ok=%v", p, ok)
	}
	if _, ok := ParseProvider("bing"); ok {
		t.Fatal("expected unknown provider to fail")
	}
}
