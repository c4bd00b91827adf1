package ghstats

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"go.uber.org/zap"
)

type fakeLanguageStore struct {
	ensured [][]string
}

func (f *fakeLanguageStore) EnsureByName(_ context.Context, names []string) error {
	f.ensured = append(f.ensured, names)
	return nil
}

func newTestService(t *testing.T, mux *http.ServeMux, store LanguageStore) *Service {
	t.Helper()

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	svc := NewService(srv.Client(), "", store, time.Minute, zap.NewNop())
	base, err := url.Parse(srv.URL + "/")
	if err != nil {
		t.Fatalf("parse base url: %v", err)
	}
	svc.Client().BaseURL = base
	return svc
}

func TestStatsCollectsRepoData(t *testing.T) {
	readme := base64.StdEncoding.EncodeToString([]byte("# hello"))

	mux := http.NewServeMux()
	mux.HandleFunc("/repos/octo/widget", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"stargazers_count":42,"subscribers_count":7,"default_branch":"main","owner":{"avatar_url":"https://avatars.example.com/octo"}}`)
	})
	mux.HandleFunc("/repos/octo/widget/languages", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"Go":12345,"Shell":200}`)
	})
	mux.HandleFunc("/repos/octo/widget/readme", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintf(w, `{"type":"file","encoding":"base64","content":"%s"}`, readme)
	})
	mux.HandleFunc("/repos/octo/widget/stats/commit_activity", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `[{"total":3,"week":1700000000},{"total":5,"week":1700604800}]`)
	})
	mux.HandleFunc("/repos/octo/widget/git/trees/main", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"sha":"abc","tree":[{"path":"main.go","type":"blob"},{"path":"README.md","type":"blob"}]}`)
	})

	store := &fakeLanguageStore{}
	svc := newTestService(t, mux, store)

	stats := svc.Stats(context.Background(), "https://github.com/octo/widget")

	if stats.Owner != "octo" || stats.Name != "widget" {
		t.Fatalf("unexpected repo identity: %+v", stats)
	}
	if stats.Stars != 42 || stats.Watchers != 7 {
		t.Fatalf("unexpected counters: stars=%d watchers=%d", stats.Stars, stats.Watchers)
	}
	if stats.OwnerAvatarURL != "https://avatars.example.com/octo" {
		t.Fatalf("unexpected avatar url %q", stats.OwnerAvatarURL)
	}
	if stats.Languages["Go"] != 12345 {
		t.Fatalf("unexpected languages %v", stats.Languages)
	}
	if stats.Readme != "# hello" {
		t.Fatalf("unexpected readme %q", stats.Readme)
	}
	if len(stats.Files) != 2 || stats.Files[0] != "main.go" {
		t.Fatalf("unexpected files %v", stats.Files)
	}
	if len(stats.CommitActivity) != 2 || stats.CommitActivity[1].Commits != 5 {
		t.Fatalf("unexpected commit activity %v", stats.CommitActivity)
	}

	if len(store.ensured) != 1 {
		t.Fatalf("expected one EnsureByName call, got %d", len(store.ensured))
	}
	got := store.ensured[0]
	if len(got) != 2 || got[0] != "Go" || got[1] != "Shell" {
		t.Fatalf("unexpected ensured languages %v", got)
	}
}

func TestStatsUsesCacheOnRepeatCalls(t *testing.T) {
	var repoCalls int

	mux := http.NewServeMux()
	mux.HandleFunc("/repos/octo/widget", func(w http.ResponseWriter, _ *http.Request) {
		repoCalls++
		fmt.Fprint(w, `{"stargazers_count":1}`)
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		http.NotFound(w, nil)
	})

	svc := newTestService(t, mux, nil)

	svc.Stats(context.Background(), "octo/widget")
	svc.Stats(context.Background(), "https://github.com/octo/widget.git")

	if repoCalls != 1 {
		t.Fatalf("expected a single upstream fetch, got %d", repoCalls)
	}
}

func TestStatsSurvivesPartialFailures(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/octo/widget", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"stargazers_count":9,"default_branch":"main"}`)
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"boom"}`, http.StatusInternalServerError)
	})

	svc := newTestService(t, mux, nil)

	stats := svc.Stats(context.Background(), "octo/widget")

	if stats.Stars != 9 {
		t.Fatalf("expected stars from the one healthy call, got %d", stats.Stars)
	}
	if stats.Readme != "" || len(stats.Languages) != 0 || len(stats.Files) != 0 {
		t.Fatalf("expected zero values for failed calls: %+v", stats)
	}
}

func TestParseRepoURL(t *testing.T) {
	cases := []struct {
		in    string
		owner string
		name  string
		ok    bool
	}{
		{"https://github.com/octo/widget", "octo", "widget", true},
		{"http://github.com/octo/widget/", "octo", "widget", true},
		{"github.com/octo/widget.git", "octo", "widget", true},
		{"www.github.com/octo/widget", "octo", "widget", true},
		{"octo/widget", "octo", "widget", true},
		{"", "", "", false},
		{"https://gitlab.com/octo/widget", "", "", false},
		{"just-a-name", "", "", false},
		{"a/b/c", "", "", false},
	}

	for _, tc := range cases {
		owner, name, ok := ParseRepoURL(tc.in)
		if ok != tc.ok || owner != tc.owner || name != tc.name {
			t.Errorf("ParseRepoURL(%q) = (%q, %q, %v), want (%q, %q, %v)",
				tc.in, owner, name, ok, tc.owner, tc.name, tc.ok)
		}
	}
}
