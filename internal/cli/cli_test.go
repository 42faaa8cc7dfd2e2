package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"sync"
	"testing"
)

type siteRecorder struct {
	mu    sync.Mutex
	votes []url.Values
	faves []url.Values
}

func newFakeSite(t *testing.T) (*httptest.Server, *siteRecorder) {
	t.Helper()
	item, err := os.ReadFile("../hn/testdata/item.html")
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	rec := &siteRecorder{}
	mux := http.NewServeMux()
	mux.HandleFunc("/item", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("id") {
		case "1001", "2001", "2002", "2003", "2004":
			_, _ = w.Write(item)
		default:
			_, _ = w.Write([]byte("<html><body>No such item.</body></html>"))
		}
	})
	mux.HandleFunc("/vote", func(w http.ResponseWriter, r *http.Request) {
		rec.mu.Lock()
		rec.votes = append(rec.votes, r.URL.Query())
		rec.mu.Unlock()
		http.Redirect(w, r, "/item?id="+r.URL.Query().Get("id"), http.StatusFound)
	})
	mux.HandleFunc("/fave", func(w http.ResponseWriter, r *http.Request) {
		rec.mu.Lock()
		rec.faves = append(rec.faves, r.URL.Query())
		rec.mu.Unlock()
		http.Redirect(w, r, "/item?id="+r.URL.Query().Get("id"), http.StatusFound)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, rec
}

func runCLI(t *testing.T, args []string) (stdout []byte, stderr []byte, err error) {
	t.Helper()

	cmd := NewRootCmd()

	var outBuf bytes.Buffer
	var errBuf bytes.Buffer
	cmd.SetOut(&outBuf)
	cmd.SetErr(&errBuf)
	cmd.SetArgs(args)

	e := cmd.Execute()
	return outBuf.Bytes(), errBuf.Bytes(), e
}

// baseArgs points a command at a temp config dir, a file backend and the
// fake site.
func baseArgs(t *testing.T, srv *httptest.Server) []string {
	t.Helper()
	dir := t.TempDir()
	return []string{"--config-dir", dir, "--data-dir", dir, "--backend", "file", "--base-url", srv.URL}
}

func TestThread_PrintsDepthAndReconciledActions(t *testing.T) {
	srv, _ := newFakeSite(t)
	base := baseArgs(t, srv)

	out, errOut, err := runCLI(t, append(base, "thread", "1001"))
	if err != nil {
		t.Fatalf("thread: %v\nstderr:\n%s", err, errOut)
	}
	var got threadOut
	if err := json.Unmarshal(out, &got); err != nil {
		t.Fatalf("unmarshal: %v\n%s", err, out)
	}
	if got.User != "pg" {
		t.Fatalf("expected user pg, got %q", got.User)
	}
	if got.Story == nil || !got.Story.Favorite || got.Story.Vote != "" {
		t.Fatalf("unexpected story: %+v", got.Story)
	}
	if len(got.Comments) != 4 {
		t.Fatalf("expected 4 comments, got %d", len(got.Comments))
	}
	wantDepth := []int{0, 1, 2, 0}
	wantChildren := []bool{true, true, false, false}
	for i, c := range got.Comments {
		if c.Depth != wantDepth[i] || c.HasChildren != wantChildren[i] {
			t.Fatalf("comment %d: depth=%d hasChildren=%v", i, c.Depth, c.HasChildren)
		}
	}
	if got.Comments[0].Vote != "up" || got.Comments[0].Affordance != "[-]" {
		t.Fatalf("unexpected first comment: %+v", got.Comments[0])
	}
	if !got.Comments[2].Collapsed {
		t.Fatalf("expected the site's collapsed flag on 2004")
	}

	// Positive observations were synced into the store and flushed.
	out, errOut, err = runCLI(t, append(base, "actions", "list", "--user", "pg"))
	if err != nil {
		t.Fatalf("actions list: %v\nstderr:\n%s", err, errOut)
	}
	var recs []map[string]any
	if err := json.Unmarshal(out, &recs); err != nil {
		t.Fatalf("unmarshal: %v\n%s", err, out)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %s", out)
	}
	if recs[0]["id"] != "1001" || recs[0]["favorite"] != true {
		t.Fatalf("unexpected story record: %v", recs[0])
	}
	if recs[1]["id"] != "2001" || recs[1]["vote"] != "up" {
		t.Fatalf("unexpected comment record: %v", recs[1])
	}
}

func TestThread_CollapseHidesSubtree(t *testing.T) {
	srv, _ := newFakeSite(t)
	base := baseArgs(t, srv)

	out, errOut, err := runCLI(t, append(base, "thread", "1001", "--collapse", "2001"))
	if err != nil {
		t.Fatalf("thread: %v\nstderr:\n%s", err, errOut)
	}
	var got threadOut
	if err := json.Unmarshal(out, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	hidden := map[string]bool{}
	for _, c := range got.Comments {
		hidden[c.ID] = c.Hidden
	}
	if !hidden["2002"] || !hidden["2004"] || hidden["2001"] || hidden["2003"] {
		t.Fatalf("unexpected hidden set: %v", hidden)
	}
	if got.Comments[0].Affordance != "[+2]" {
		t.Fatalf("expected [+2], got %q", got.Comments[0].Affordance)
	}

	out, _, err = runCLI(t, append(base, "thread", "1001", "--collapse", "2001", "--visible"))
	if err != nil {
		t.Fatalf("thread --visible: %v", err)
	}
	got = threadOut{}
	_ = json.Unmarshal(out, &got)
	if len(got.Comments) != 2 || got.Comments[0].ID != "2001" || got.Comments[1].ID != "2003" {
		t.Fatalf("unexpected visible comments: %+v", got.Comments)
	}

	if _, _, err := runCLI(t, append(base, "thread", "1001", "--collapse", "9999")); err == nil {
		t.Fatalf("expected error for unknown comment id")
	}
}

func TestThread_ToggleUnderCollapsedAncestorStaysHidden(t *testing.T) {
	srv, _ := newFakeSite(t)
	out, errOut, err := runCLI(t, append(baseArgs(t, srv), "thread", "1001", "--collapse-all", "--collapse", "2002"))
	if err != nil {
		t.Fatalf("thread: %v\nstderr:\n%s", err, errOut)
	}
	var got threadOut
	if err := json.Unmarshal(out, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	hidden := map[string]bool{}
	for _, c := range got.Comments {
		hidden[c.ID] = c.Hidden
	}
	if !hidden["2002"] || !hidden["2004"] {
		t.Fatalf("expected 2001's subtree to stay hidden, got %v", hidden)
	}
}

func TestThread_YAMLOutput(t *testing.T) {
	srv, _ := newFakeSite(t)
	out, errOut, err := runCLI(t, append(baseArgs(t, srv), "--format", "yaml", "thread", "1001", "--visible"))
	if err != nil {
		t.Fatalf("thread: %v\nstderr:\n%s", err, errOut)
	}
	if !strings.Contains(string(out), "user: pg") || !strings.Contains(string(out), "hasChildren: true") {
		t.Fatalf("unexpected yaml:\n%s", out)
	}
}

func TestVote_FiresRequestAndRemembersIt(t *testing.T) {
	srv, rec := newFakeSite(t)
	base := baseArgs(t, srv)

	out, errOut, err := runCLI(t, append(base, "vote", "2002", "up"))
	if err != nil {
		t.Fatalf("vote: %v\nstderr:\n%s", err, errOut)
	}
	var got voteOut
	if err := json.Unmarshal(out, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Vote != "up" || !got.Changed || got.Kind != "comments" {
		t.Fatalf("unexpected vote output: %+v", got)
	}
	rec.mu.Lock()
	if len(rec.votes) != 1 || rec.votes[0].Get("how") != "up" || rec.votes[0].Get("id") != "2002" {
		t.Fatalf("unexpected vote requests: %v", rec.votes)
	}
	rec.mu.Unlock()

	out, errOut, err = runCLI(t, append(base, "actions", "get", "comment", "2002", "--user", "pg"))
	if err != nil {
		t.Fatalf("actions get: %v\nstderr:\n%s", err, errOut)
	}
	if !strings.Contains(string(out), `"vote":"up"`) {
		t.Fatalf("expected stored up vote, got %s", out)
	}
}

func TestVote_AlreadyVotedIsNoop(t *testing.T) {
	srv, rec := newFakeSite(t)
	out, _, err := runCLI(t, append(baseArgs(t, srv), "vote", "2001", "up"))
	if err != nil {
		t.Fatalf("vote: %v", err)
	}
	var got voteOut
	_ = json.Unmarshal(out, &got)
	if got.Changed || got.Vote != "up" {
		t.Fatalf("unexpected output %+v", got)
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.votes) != 0 {
		t.Fatalf("expected no request, got %v", rec.votes)
	}
}

func TestFavorite_OffFollowsUnfavoriteLink(t *testing.T) {
	srv, rec := newFakeSite(t)
	out, errOut, err := runCLI(t, append(baseArgs(t, srv), "favorite", "1001", "--off"))
	if err != nil {
		t.Fatalf("favorite: %v\nstderr:\n%s", err, errOut)
	}
	var got favoriteOut
	if err := json.Unmarshal(out, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Favorite || !got.Changed {
		t.Fatalf("unexpected output %+v", got)
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.faves) != 1 || rec.faves[0].Get("un") != "t" {
		t.Fatalf("unexpected fave requests: %v", rec.faves)
	}
}

func TestActionsClear(t *testing.T) {
	srv, _ := newFakeSite(t)
	base := baseArgs(t, srv)

	if _, _, err := runCLI(t, append(base, "thread", "1001")); err != nil {
		t.Fatalf("thread: %v", err)
	}
	if _, _, err := runCLI(t, append(base, "actions", "clear", "--user", "pg")); err != nil {
		t.Fatalf("clear: %v", err)
	}
	out, _, err := runCLI(t, append(base, "actions", "list", "--user", "pg"))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if strings.TrimSpace(string(out)) != "[]" {
		t.Fatalf("expected no records, got %s", out)
	}
	if _, _, err := runCLI(t, append(base, "actions", "get", "story", "1001", "--user", "pg")); err == nil {
		t.Fatalf("expected not found")
	}
}

func TestConfigSetAndShow(t *testing.T) {
	dir := t.TempDir()
	args := []string{"--config-dir", dir}

	if _, errOut, err := runCLI(t, append(args, "config", "set", "userCookie", "pg&abc")); err != nil {
		t.Fatalf("config set: %v\n%s", err, errOut)
	}
	if _, _, err := runCLI(t, append(args, "config", "set", "backend", "sqlite")); err != nil {
		t.Fatalf("config set backend: %v", err)
	}
	if _, _, err := runCLI(t, append(args, "config", "set", "backend", "postgres")); err == nil {
		t.Fatalf("expected invalid backend error")
	}

	out, _, err := runCLI(t, append(args, "config", "show"))
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	var cfg map[string]any
	if err := json.Unmarshal(out, &cfg); err != nil {
		t.Fatalf("unmarshal: %v\n%s", err, out)
	}
	if cfg["userCookie"] != "pg&…" {
		t.Fatalf("expected masked cookie, got %v", cfg["userCookie"])
	}
	if b, _ := cfg["backend"].(map[string]any); b["kind"] != "sqlite" {
		t.Fatalf("expected sqlite backend, got %v", cfg["backend"])
	}
}

func TestInvalidItemID(t *testing.T) {
	srv, _ := newFakeSite(t)
	if _, _, err := runCLI(t, append(baseArgs(t, srv), "thread", "abc")); err == nil {
		t.Fatalf("expected error for non-numeric id")
	}
	if _, _, err := runCLI(t, append(baseArgs(t, srv), "vote", "2002", "sideways")); err == nil {
		t.Fatalf("expected error for invalid direction")
	}
}
