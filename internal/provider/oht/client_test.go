package oht_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/revenuewire/translation/internal/provider"
	"github.com/revenuewire/translation/internal/provider/oht"
)

func TestEncodeDecodeBundle(t *testing.T) {
	items := []provider.SubmissionItem{
		{ItemID: "abc:fr:OHT", Text: "Hello <World> & {name}"},
		{ItemID: "def:fr:OHT", Text: "Goodbye"},
	}

	doc, err := oht.EncodeBundle("project-1", "en-us", "fr-fr", items)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !strings.Contains(string(doc), `id="abc:fr:OHT"`) {
		t.Fatalf("bundle missing item id attribute:\n%s", doc)
	}

	results, err := oht.DecodeBundle(doc)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 entries got %d", len(results))
	}
	if results["abc:fr:OHT"] != "Hello <World> & {name}" {
		t.Fatalf("text not preserved: %q", results["abc:fr:OHT"])
	}
}

func TestDecodeBundleMalformed(t *testing.T) {
	if _, err := oht.DecodeBundle([]byte("not xml at all <")); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestNewRequiresCredentials(t *testing.T) {
	if _, err := oht.New(oht.Config{PublicKey: "pub"}); err == nil {
		t.Fatal("expected missing secret key to fail")
	}
	if _, err := oht.New(oht.Config{SecretKey: "sec"}); err == nil {
		t.Fatal("expected missing public key to fail")
	}
}

func newVendorStub(t *testing.T) (*httptest.Server, *map[string]string) {
	t.Helper()

	uploaded := make(map[string]string)
	mux := http.NewServeMux()

	mux.HandleFunc("/resources/text", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if r.PostFormValue("public_key") == "" || r.PostFormValue("secret_key") == "" {
			t.Fatal("missing credentials on upload")
		}
		uploaded["rsc-1"] = r.PostFormValue("text")
		writeEnvelope(w, []string{"rsc-1"})
	})

	mux.HandleFunc("/projects/translation", func(w http.ResponseWriter, r *http.Request) {
		if r.PostFormValue("sources") != "rsc-1" {
			t.Fatalf("unexpected sources %q", r.PostFormValue("sources"))
		}
		if r.PostFormValue("notes") == "" {
			t.Fatal("expected default note to be sent")
		}
		writeEnvelope(w, map[string]any{"project_id": 7001, "wordcount": 2, "credits": 1.5})
	})

	mux.HandleFunc("/projects/7001", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, map[string]any{
			"project_status":      "Signed",
			"project_status_code": "signed",
			"resource_binding":    map[string][]string{"rsc-1": {"rsc-out-1"}},
		})
	})

	mux.HandleFunc("/resources/rsc-out-1", func(w http.ResponseWriter, r *http.Request) {
		translated, err := oht.EncodeBundle("p1", "en-us", "fr-fr", []provider.SubmissionItem{
			{ItemID: "u1:fr:OHT", Text: "Bonjour"},
		})
		if err != nil {
			t.Fatalf("encode translated: %v", err)
		}
		writeEnvelope(w, map[string]any{"content": base64.StdEncoding.EncodeToString(translated)})
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, &uploaded
}

func writeEnvelope(w http.ResponseWriter, results any) {
	w.Header().Set("Content-Type", "application/json")
	payload := map[string]any{
		"status":  map[string]any{"code": 0, "msg": "ok"},
		"results": results,
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		panic(fmt.Sprintf("encode envelope: %v", err))
	}
}

func TestClientSubmitStatusFetch(t *testing.T) {
	server, uploaded := newVendorStub(t)

	client, err := oht.New(oht.Config{
		PublicKey: "pub",
		SecretKey: "sec",
		BaseURL:   server.URL,
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	ctx := context.Background()
	receipt, err := client.Submit(ctx, provider.Submission{
		ProjectID:      "p1",
		SourceLanguage: "en",
		TargetLanguage: "fr",
		Items:          []provider.SubmissionItem{{ItemID: "u1:fr:OHT", Text: "Hello"}},
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if receipt.ProviderProjectID != "7001" {
		t.Fatalf("expected provider project id 7001 got %q", receipt.ProviderProjectID)
	}
	if receipt.Resources["rsc-1"] != "p1" {
		t.Fatalf("expected resource mapping, got %+v", receipt.Resources)
	}
	if !strings.Contains((*uploaded)["rsc-1"], "u1:fr:OHT") {
		t.Fatal("uploaded bundle missing queue item id")
	}
	if !strings.Contains((*uploaded)["rsc-1"], `target_language="fr-fr"`) {
		t.Fatal("uploaded bundle missing transformed target language")
	}

	report, err := client.Status(ctx, receipt.ProviderProjectID)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if report.Code != provider.StatusSigned {
		t.Fatalf("expected signed got %q", report.Code)
	}

	results, err := client.FetchResults(ctx, report.Bindings["rsc-1"][0])
	if err != nil {
		t.Fatalf("fetch results: %v", err)
	}
	if results["u1:fr:OHT"] != "Bonjour" {
		t.Fatalf("unexpected results %+v", results)
	}
}

func TestClientSubmitVendorError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"status":{"code":102,"msg":"invalid credentials"}}`)
	}))
	t.Cleanup(server.Close)

	client, err := oht.New(oht.Config{PublicKey: "pub", SecretKey: "bad", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	_, err = client.Submit(context.Background(), provider.Submission{
		ProjectID:      "p1",
		SourceLanguage: "en",
		TargetLanguage: "fr",
		Items:          []provider.SubmissionItem{{ItemID: "a:fr:OHT", Text: "Hello"}},
	})
	if err == nil || !strings.Contains(err.Error(), "invalid credentials") {
		t.Fatalf("expected vendor error, got %v", err)
	}
}

func TestClientRejectsUnsupportedLanguage(t *testing.T) {
	client, err := oht.New(oht.Config{PublicKey: "pub", SecretKey: "sec", BaseURL: "http://unused"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	_, err = client.Submit(context.Background(), provider.Submission{
		ProjectID:      "p1",
		SourceLanguage: "en",
		TargetLanguage: "xx-zz",
	})
	if err == nil {
		t.Fatal("expected unsupported language error")
	}
}
