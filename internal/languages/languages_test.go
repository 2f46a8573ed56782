package languages_test

import (
	"testing"

	"github.com/revenuewire/translation/internal/domain"
	"github.com/revenuewire/translation/internal/languages"
)

func TestProviderCode(t *testing.T) {
	cases := []struct {
		provider domain.Provider
		code     string
		want     string
		ok       bool
	}{
		{domain.ProviderOHT, "fr", "fr-fr", true},
		{domain.ProviderOHT, "zh", "zh-cn-cmn-s", true},
		{domain.ProviderOHT, "iw", "", false},
		{domain.ProviderGCT, "fr", "fr", true},
		{domain.ProviderGCT, "pt-br", "", false},
		{domain.ProviderGCT, "xx", "", false},
	}

	for _, tc := range cases {
		got, ok := languages.ProviderCode(tc.provider, tc.code)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("%s/%s: expected (%q,%v) got (%q,%v)", tc.provider, tc.code, tc.want, tc.ok, got, ok)
		}
	}
}

func TestLookupFallsBackToPrefix(t *testing.T) {
	lang, ok := languages.Lookup("fr-CA")
	if !ok || lang.Code != "fr" {
		t.Fatalf("expected fr fallback, got %+v ok=%v", lang, ok)
	}
}

func TestNormalize(t *testing.T) {
	if got := languages.Normalize(" FR "); got != "fr" {
		t.Fatalf("expected fr got %q", got)
	}
	if got := languages.Normalize("xx-yy"); got != "xx-yy" {
		t.Fatalf("unknown codes pass through lowercased, got %q", got)
	}
}
