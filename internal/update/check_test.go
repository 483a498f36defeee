package update

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCompareVersions(t *testing.T) {
	cases := []struct {
		a, b string
		sign int
	}{
		{"0.2.0", "0.1.9", 1},
		{"1.0", "1.0.0", 0},
		{"1.0.0-rc1", "1.0.0", 0},
		{"0.9.10", "0.10.0", -1},
		{"", "0.0.1", -1},
	}
	for _, tc := range cases {
		got := compareVersions(tc.a, tc.b)
		if (got > 0) != (tc.sign > 0) || (got < 0) != (tc.sign < 0) {
			t.Errorf("compareVersions(%q, %q) = %d, want sign %d", tc.a, tc.b, got, tc.sign)
		}
	}
}

func TestLatest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/moasq/nusconsole/releases/latest" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`{"tag_name":"v0.3.0","html_url":"https://example.com/r/v0.3.0"}`))
	}))
	defer srv.Close()

	c := &Checker{Owner: "moasq", Repo: "nusconsole", BaseURL: srv.URL}
	rel, err := c.Latest(context.Background(), "v0.1.0")
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if rel.Latest != "0.3.0" || rel.Current != "0.1.0" || rel.URL != "https://example.com/r/v0.3.0" {
		t.Errorf("unexpected release %+v", rel)
	}
	if !rel.Newer() {
		t.Error("expected 0.3.0 to be newer than 0.1.0")
	}
}

func TestLatestErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusForbidden)
	}))
	defer srv.Close()

	c := &Checker{Owner: "moasq", Repo: "nusconsole", BaseURL: srv.URL}
	if _, err := c.Latest(context.Background(), "0.1.0"); err == nil {
		t.Fatal("expected an error for a non-200 response")
	}

	var nilRelease *Release
	if nilRelease.Newer() {
		t.Error("a nil release is never newer")
	}
}
