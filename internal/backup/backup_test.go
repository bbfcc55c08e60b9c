package backup

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	mcpmerrors "github.com/thoreinstein/mcpm/internal/errors"
	"github.com/thoreinstein/mcpm/internal/mcp"
)

func testConfig(names ...string) *mcp.Config {
	cfg := mcp.NewConfig()
	for _, n := range names {
		cfg.Servers[n] = &mcp.Server{Type: mcp.TypeStdio, Command: "npx", Args: []string{n}}
	}
	return cfg
}

func TestCreateRestore_RoundTrip(t *testing.T) {
	m := NewManager(WithDir(t.TempDir()))

	cfg := testConfig("fetch", "time")
	snap, err := m.Create(cfg, "before-upgrade", "testing")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if snap.ID == "" {
		t.Fatal("snapshot has empty id")
	}
	if snap.Metadata["reason"] != "testing" || snap.Metadata["name"] != "before-upgrade" {
		t.Errorf("Metadata = %v", snap.Metadata)
	}

	restored, err := m.Restore(snap.ID)
	if err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	if len(restored.Servers) != 2 {
		t.Fatalf("restored %d servers, want 2", len(restored.Servers))
	}
	if !reflect.DeepEqual(restored.Servers["fetch"].Args, []string{"fetch"}) {
		t.Errorf("Args = %v", restored.Servers["fetch"].Args)
	}
}

func TestCreate_DeepCopy(t *testing.T) {
	m := NewManager(WithDir(t.TempDir()))

	cfg := testConfig("mutated")
	snap, err := m.Create(cfg, "", "")
	if err != nil {
		t.Fatal(err)
	}

	// Mutating the live document after Create must not leak into the
	// snapshot.
	cfg.Servers["mutated"].Args[0] = "changed"
	cfg.Servers["added"] = &mcp.Server{Type: mcp.TypeHTTP, URL: "https://example.com"}

	restored, err := m.Restore(snap.ID)
	if err != nil {
		t.Fatal(err)
	}
	if restored.Servers["mutated"].Args[0] != "mutated" {
		t.Error("snapshot shares memory with the live document")
	}
	if _, ok := restored.Servers["added"]; ok {
		t.Error("post-snapshot addition visible in snapshot")
	}
}

func TestCreate_SameSecondCollision(t *testing.T) {
	fixed := time.Date(2026, 8, 30, 10, 15, 2, 0, time.UTC)
	m := NewManager(WithDir(t.TempDir()), WithClock(func() time.Time { return fixed }))

	cfg := testConfig("a")
	first, err := m.Create(cfg, "", "")
	if err != nil {
		t.Fatal(err)
	}
	second, err := m.Create(cfg, "", "")
	if err != nil {
		t.Fatalf("second same-second Create() failed: %v", err)
	}
	third, err := m.Create(cfg, "", "")
	if err != nil {
		t.Fatal(err)
	}

	if first.ID != "20260830-101502" {
		t.Errorf("first.ID = %q", first.ID)
	}
	if second.ID != "20260830-101502-02" {
		t.Errorf("second.ID = %q, want -02 suffix", second.ID)
	}
	if third.ID != "20260830-101502-03" {
		t.Errorf("third.ID = %q, want -03 suffix", third.ID)
	}
}

func TestCreate_SameSecondConcurrentManagers(t *testing.T) {
	// Two independent managers on one directory stand in for two
	// processes snapshotting in the same second. Each must end up with
	// its own id and its own document; neither write may replace the
	// other's file.
	dir := t.TempDir()
	fixed := time.Date(2026, 8, 30, 10, 15, 2, 0, time.UTC)
	clock := func() time.Time { return fixed }
	m1 := NewManager(WithDir(dir), WithClock(clock))
	m2 := NewManager(WithDir(dir), WithClock(clock))

	first, err := m1.Create(testConfig("from-first"), "", "")
	if err != nil {
		t.Fatal(err)
	}
	second, err := m2.Create(testConfig("from-second"), "", "")
	if err != nil {
		t.Fatal(err)
	}

	if first.ID == second.ID {
		t.Fatalf("both managers claimed id %q", first.ID)
	}

	restored, err := m2.Restore(first.ID)
	if err != nil {
		t.Fatalf("Restore(%q) error = %v", first.ID, err)
	}
	if _, ok := restored.Servers["from-first"]; !ok {
		t.Errorf("snapshot %q no longer holds the first manager's document", first.ID)
	}
}

func TestCreate_SuffixOrderStaysLexicographic(t *testing.T) {
	// Drive the collision suffix past 9; zero padding keeps the 10th
	// snapshot sorting after the 2nd.
	fixed := time.Date(2026, 8, 30, 10, 15, 2, 0, time.UTC)
	m := NewManager(WithDir(t.TempDir()), WithClock(func() time.Time { return fixed }))

	var ids []string
	for i := 0; i < 12; i++ {
		snap, err := m.Create(testConfig("s"), "", "")
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, snap.ID)
	}
	if ids[11] != "20260830-101502-12" {
		t.Fatalf("12th same-second id = %q, want -12 suffix", ids[11])
	}

	summaries, failures := m.List(20)
	if len(failures) != 0 {
		t.Fatalf("failures = %v", failures)
	}
	// Newest first: the last created id leads the listing.
	for i := 0; i < 12; i++ {
		if summaries[i].ID != ids[11-i] {
			t.Errorf("summaries[%d].ID = %q, want %q", i, summaries[i].ID, ids[11-i])
		}
	}
}

func TestList_NewestFirst(t *testing.T) {
	dir := t.TempDir()
	base := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	current := base
	m := NewManager(WithDir(dir), WithClock(func() time.Time { return current }))

	var ids []string
	for i := 0; i < 3; i++ {
		current = base.Add(time.Duration(i) * time.Second)
		snap, err := m.Create(testConfig("s"), "", fmt.Sprintf("n%d", i))
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, snap.ID)
	}

	summaries, failures := m.List(10)
	if len(failures) != 0 {
		t.Fatalf("failures = %v", failures)
	}
	if len(summaries) != 3 {
		t.Fatalf("got %d summaries, want 3", len(summaries))
	}
	for i, want := range []string{ids[2], ids[1], ids[0]} {
		if summaries[i].ID != want {
			t.Errorf("summaries[%d].ID = %q, want %q", i, summaries[i].ID, want)
		}
	}
	if summaries[0].Servers != 1 {
		t.Errorf("Servers = %d, want 1", summaries[0].Servers)
	}
}

func TestList_Limit(t *testing.T) {
	dir := t.TempDir()
	base := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	current := base
	m := NewManager(WithDir(dir), WithClock(func() time.Time { return current }))

	for i := 0; i < 5; i++ {
		current = base.Add(time.Duration(i) * time.Second)
		if _, err := m.Create(testConfig("s"), "", ""); err != nil {
			t.Fatal(err)
		}
	}

	summaries, _ := m.List(2)
	if len(summaries) != 2 {
		t.Errorf("got %d summaries, want 2", len(summaries))
	}
}

func TestList_SkipsUnparseable(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(WithDir(dir))

	if _, err := m.Create(testConfig("good"), "", ""); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "20200101-000000.json"), []byte("{broken"), 0o644); err != nil {
		t.Fatal(err)
	}

	summaries, failures := m.List(10)
	if len(summaries) != 1 {
		t.Errorf("got %d summaries, want 1 (bad entry skipped)", len(summaries))
	}
	if len(failures) != 1 {
		t.Fatalf("failures = %d, want 1 reported", len(failures))
	}
	if !stderrors.Is(failures[0], mcpmerrors.ErrCorrupted) {
		t.Errorf("failure = %v, want ErrCorrupted", failures[0])
	}
}

func TestList_EmptyDirectory(t *testing.T) {
	m := NewManager(WithDir(filepath.Join(t.TempDir(), "never-created")))

	summaries, failures := m.List(10)
	if len(summaries) != 0 || len(failures) != 0 {
		t.Errorf("expected empty result for missing directory, got %v / %v", summaries, failures)
	}
}

func TestRestore_NotFound(t *testing.T) {
	m := NewManager(WithDir(t.TempDir()))

	_, err := m.Restore("20200101-000000")
	if !stderrors.Is(err, mcpmerrors.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestRestore_Corrupted(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(WithDir(dir))

	if err := os.WriteFile(filepath.Join(dir, "20200101-000000.json"), []byte("not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := m.Restore("20200101-000000")
	if !stderrors.Is(err, mcpmerrors.ErrCorrupted) {
		t.Errorf("error = %v, want ErrCorrupted", err)
	}
}

func TestRestore_SurvivesLiveFileCorruption(t *testing.T) {
	// Snapshot first, then damage a live config elsewhere; the
	// snapshot must still restore the pre-corruption document.
	m := NewManager(WithDir(t.TempDir()))

	cfg := testConfig("survivor")
	snap, err := m.Create(cfg, "", "pre-damage")
	if err != nil {
		t.Fatal(err)
	}

	restored, err := m.Restore(snap.ID)
	if err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	if _, ok := restored.Servers["survivor"]; !ok {
		t.Error("restored document missing pre-corruption server")
	}
}

func TestPrune(t *testing.T) {
	dir := t.TempDir()
	base := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	current := base
	m := NewManager(WithDir(dir), WithClock(func() time.Time { return current }))

	var ids []string
	for i := 0; i < 10; i++ {
		current = base.Add(time.Duration(i) * time.Second)
		snap, err := m.Create(testConfig("s"), "", "")
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, snap.ID)
	}

	removed, failures := m.Prune(5, 0)
	if len(failures) != 0 {
		t.Fatalf("failures = %v", failures)
	}
	if removed != 5 {
		t.Errorf("removed = %d, want 5", removed)
	}

	summaries, _ := m.List(20)
	if len(summaries) != 5 {
		t.Fatalf("%d snapshots remain, want 5", len(summaries))
	}
	// The 5 most recent survive.
	for i, want := range []string{ids[9], ids[8], ids[7], ids[6], ids[5]} {
		if summaries[i].ID != want {
			t.Errorf("summaries[%d].ID = %q, want %q", i, summaries[i].ID, want)
		}
	}
}

func TestPrune_KeepAll(t *testing.T) {
	m := NewManager(WithDir(t.TempDir()))
	if _, err := m.Create(testConfig("s"), "", ""); err != nil {
		t.Fatal(err)
	}

	removed, failures := m.Prune(5, 0)
	if removed != 0 || len(failures) != 0 {
		t.Errorf("Prune(5, 0) with 1 snapshot = (%d, %v), want (0, nil)", removed, failures)
	}
}

func TestPrune_MissingDirectory(t *testing.T) {
	m := NewManager(WithDir(filepath.Join(t.TempDir(), "never-created")))
	removed, failures := m.Prune(5, 0)
	if removed != 0 || len(failures) != 0 {
		t.Errorf("Prune on missing dir = (%d, %v), want (0, nil)", removed, failures)
	}
}

func TestPrune_OlderThan(t *testing.T) {
	dir := t.TempDir()
	base := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	current := base
	m := NewManager(WithDir(dir), WithClock(func() time.Time { return current }))

	// Two old snapshots, then two recent ones a week later.
	var ids []string
	for _, offset := range []time.Duration{0, time.Second, 7 * 24 * time.Hour, 7*24*time.Hour + time.Second} {
		current = base.Add(offset)
		snap, err := m.Create(testConfig("s"), "", "")
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, snap.ID)
	}

	// A generous keep would retain everything; the age limit still
	// expires the two week-old snapshots.
	removed, failures := m.Prune(10, 24*time.Hour)
	if len(failures) != 0 {
		t.Fatalf("failures = %v", failures)
	}
	if removed != 2 {
		t.Errorf("removed = %d, want 2", removed)
	}

	summaries, _ := m.List(10)
	if len(summaries) != 2 {
		t.Fatalf("%d snapshots remain, want 2", len(summaries))
	}
	for i, want := range []string{ids[3], ids[2]} {
		if summaries[i].ID != want {
			t.Errorf("summaries[%d].ID = %q, want %q", i, summaries[i].ID, want)
		}
	}
}

func TestRestore_PermissionDenied(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced for root")
	}

	dir := t.TempDir()
	m := NewManager(WithDir(dir))

	snap, err := m.Create(testConfig("locked"), "", "")
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chmod(filepath.Join(dir, snap.ID+".json"), 0o000); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		os.Chmod(filepath.Join(dir, snap.ID+".json"), 0o644)
	})

	_, err = m.Restore(snap.ID)
	if !stderrors.Is(err, mcpmerrors.ErrPermissionDenied) {
		t.Errorf("error = %v, want ErrPermissionDenied", err)
	}
}

func TestSnapshot_PreservesUnknownFields(t *testing.T) {
	m := NewManager(WithDir(t.TempDir()))

	var cfg mcp.Config
	seed := `{"mcpServers": {"a": {"type": "stdio", "command": "npx"}}, "theme": "dark"}`
	if err := cfg.UnmarshalJSON([]byte(seed)); err != nil {
		t.Fatal(err)
	}

	snap, err := m.Create(&cfg, "", "")
	if err != nil {
		t.Fatal(err)
	}

	restored, err := m.Restore(snap.ID)
	if err != nil {
		t.Fatal(err)
	}
	out, err := restored.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	if !containsField(t, out, "theme") {
		t.Error("unknown top-level field lost through snapshot round trip")
	}
}

func containsField(t *testing.T, data []byte, field string) bool {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatal(err)
	}
	_, ok := m[field]
	return ok
}
