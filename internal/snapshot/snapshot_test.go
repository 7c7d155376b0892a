package snapshot

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dharmarajatulya1-hub/sdkdrift/internal/ir"
	"github.com/dharmarajatulya1-hub/sdkdrift/internal/manifest"
)

func record(id string, params ...*ir.ParamRecord) *ir.MethodRecord {
	r := &ir.MethodRecord{ID: id, Namespace: "S", MethodName: id, Params: []*ir.ParamRecord{}, Visibility: ir.VisibilityPublic}
	r.Params = append(r.Params, params...)
	return r
}

func encode(t *testing.T, records []*ir.MethodRecord) []byte {
	t.Helper()
	data, err := manifest.Encode(records, false)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func TestContentHash(t *testing.T) {
	h1 := ContentHash([]byte("hello world"))
	h2 := ContentHash([]byte("hello world"))
	if h1 != h2 {
		t.Fatalf("ContentHash not deterministic: %s != %s", h1, h2)
	}
	if len(h1) != 64 {
		t.Fatalf("unexpected hash length: %d", len(h1))
	}
	if h1 == ContentHash([]byte("different")) {
		t.Fatal("different content produced same hash")
	}
}

func TestNewSnapshot(t *testing.T) {
	data := []byte("[]\n")
	snap := NewSnapshot(ScanInfo{Language: "python", Root: "/sdk", Files: 4, Warnings: 1}, data, 0)
	if len(snap.ID) != 16 {
		t.Fatalf("expected 16-char id, got %q", snap.ID)
	}
	if len(snap.RunID) != 36 {
		t.Fatalf("expected uuid run id, got %q", snap.RunID)
	}
	if snap.ContentHash != ContentHash(data) {
		t.Fatal("content hash mismatch")
	}
	if snap.FileCount != 4 || snap.WarningCount != 1 {
		t.Fatalf("unexpected counts: %+v", snap)
	}
	other := NewSnapshot(ScanInfo{Language: "python", Root: "/sdk"}, data, 0)
	if other.ID == snap.ID {
		t.Fatal("two runs produced the same id")
	}
}

func TestNewStore(t *testing.T) {
	dir := t.TempDir()
	if _, err := NewStore(filepath.Join(dir, "store")); err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	for _, sub := range []string{"snapshots", "objects"} {
		if _, err := os.Stat(filepath.Join(dir, "store", sub)); err != nil {
			t.Fatalf("%s dir missing: %v", sub, err)
		}
	}
}

func TestStoreSaveLoadManifest(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	records := []*ir.MethodRecord{record("m:S.get", ir.NewParam("id", true, "str"))}
	data := encode(t, records)
	snap := NewSnapshot(ScanInfo{Language: "python", Root: "/sdk", Files: 1}, data, len(records))
	snap.Tag = "v1"
	if err := store.Save(snap, data); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := store.Load(snap.ID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Tag != "v1" || loaded.MethodCount != 1 {
		t.Fatalf("unexpected snapshot: %+v", loaded)
	}

	got, err := store.LoadManifest(loaded)
	if err != nil {
		t.Fatalf("load manifest: %v", err)
	}
	if len(got) != 1 || got[0].ID != "m:S.get" || got[0].Params[0].Type.Name != "str" {
		t.Fatalf("unexpected manifest: %+v", got)
	}

	// Reopen from disk.
	reopened, err := NewStore(store.rootDir)
	if err != nil {
		t.Fatal(err)
	}
	if n := len(reopened.List()); n != 1 {
		t.Fatalf("expected 1 snapshot after reopen, got %d", n)
	}
}

func TestStoreParentAndList(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	data := encode(t, nil)
	first := NewSnapshot(ScanInfo{Root: "/sdk"}, data, 0)
	if err := store.Save(first, data); err != nil {
		t.Fatal(err)
	}
	second := NewSnapshot(ScanInfo{Root: "/sdk"}, data, 0)
	second.CreatedAt = first.CreatedAt.Add(time.Second)
	if err := store.Save(second, data); err != nil {
		t.Fatal(err)
	}
	if second.ParentID != first.ID {
		t.Fatalf("parent = %q, want %q", second.ParentID, first.ID)
	}

	list := store.List()
	if len(list) != 2 || list[0].ID != second.ID {
		t.Fatalf("expected newest first, got %+v", list)
	}
}

func TestStoreResolve(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	data := encode(t, nil)
	snap := NewSnapshot(ScanInfo{Root: "/sdk"}, data, 0)
	if err := store.Save(snap, data); err != nil {
		t.Fatal(err)
	}
	if err := store.Tag(snap.ID, "release"); err != nil {
		t.Fatalf("tag: %v", err)
	}

	for _, ref := range []string{snap.ID, "release", snap.ID[:6]} {
		got, err := store.Resolve(ref)
		if err != nil {
			t.Fatalf("resolve %q: %v", ref, err)
		}
		if got.ID != snap.ID {
			t.Fatalf("resolve %q = %s", ref, got.ID)
		}
	}

	if _, err := store.Resolve("nothing-here"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := store.FindByTag("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStoreDelete(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	data := encode(t, nil)
	snap := NewSnapshot(ScanInfo{Root: "/sdk"}, data, 0)
	if err := store.Save(snap, data); err != nil {
		t.Fatal(err)
	}
	if err := store.Delete(snap.ID); err != nil {
		t.Fatal(err)
	}
	if len(store.List()) != 0 {
		t.Fatal("snapshot still listed after delete")
	}
	if _, err := store.Load(snap.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func findKind(d *ManifestDiff, kind FindingKind) *Finding {
	for i := range d.Findings {
		if d.Findings[i].Kind == kind {
			return &d.Findings[i]
		}
	}
	return nil
}

func TestDiffIdentical(t *testing.T) {
	records := []*ir.MethodRecord{record("a"), record("b", ir.NewParam("x", true, "int"))}
	d := Diff(records, records)
	if len(d.Findings) != 0 {
		t.Fatalf("expected no findings, got %+v", d.Findings)
	}
	if d.Score != 100 {
		t.Fatalf("score = %v, want 100", d.Score)
	}
	if d.Breaking() {
		t.Fatal("identical manifests are not breaking")
	}
}

func TestDiffMethods(t *testing.T) {
	old := []*ir.MethodRecord{record("a"), record("b")}
	new := []*ir.MethodRecord{record("b"), record("c")}
	d := Diff(old, new)

	if f := findKind(d, KindRemovedMethod); f == nil || f.MethodID != "a" || f.Severity != SeverityHigh {
		t.Fatalf("missing removed_method finding: %+v", d.Findings)
	}
	if f := findKind(d, KindAddedMethod); f == nil || f.MethodID != "c" || f.Severity != SeverityLow {
		t.Fatalf("missing added_method finding: %+v", d.Findings)
	}
	if d.Summary.MethodsAdded != 1 || d.Summary.MethodsRemoved != 1 {
		t.Fatalf("summary = %+v", d.Summary)
	}
	// 5 + 1 deducted, scale 1.
	if d.Score != 94 {
		t.Fatalf("score = %v, want 94", d.Score)
	}
	if !d.Breaking() {
		t.Fatal("removed method should be breaking")
	}
}

func TestDiffParams(t *testing.T) {
	old := []*ir.MethodRecord{record("m",
		ir.NewParam("gone", true, "int"),
		ir.NewParam("opt", false, "Optional[str]"),
		ir.NewParam("req", true, "int"),
		ir.NewParam("typed", true, "List[int]"),
		ir.NewParam("loose", true, "unknown"),
	)}
	new := []*ir.MethodRecord{record("m",
		ir.NewParam("opt", true, "str | None"),
		ir.NewParam("req", false, "int"),
		ir.NewParam("typed", true, "List[str]"),
		ir.NewParam("loose", true, "Dict[str, int]"),
		ir.NewParam("extra", false, "int"),
		ir.NewParam("needed", true, "int"),
	)}
	d := Diff(old, new)

	want := map[string]struct {
		kind FindingKind
		sev  Severity
	}{
		"gone":   {KindRemovedParam, SeverityHigh},
		"opt":    {KindRequiredChanged, SeverityHigh},
		"req":    {KindRequiredChanged, SeverityMedium},
		"typed":  {KindTypeChanged, SeverityMedium},
		"extra":  {KindAddedParam, SeverityLow},
		"needed": {KindRequiredParamAdded, SeverityHigh},
	}
	if len(d.Findings) != len(want) {
		t.Fatalf("expected %d findings, got %+v", len(want), d.Findings)
	}
	for _, f := range d.Findings {
		w, ok := want[f.Param]
		if !ok {
			t.Fatalf("unexpected finding %+v", f)
		}
		if f.Kind != w.kind || f.Severity != w.sev {
			t.Errorf("param %s: got %s/%s, want %s/%s", f.Param, f.Kind, f.Severity, w.kind, w.sev)
		}
	}
	if d.Summary.MethodsChanged != 1 {
		t.Fatalf("methods changed = %d", d.Summary.MethodsChanged)
	}
}

func TestDiffScoreScaleAndFloor(t *testing.T) {
	var old []*ir.MethodRecord
	for i := 0; i < 40; i++ {
		old = append(old, record(string(rune('a'+i%26))+string(rune('A'+i/26))))
	}
	d := Diff(old, nil)
	// 40 removals * 5 = 200, scale 4 => 50.
	if d.Score != 50 {
		t.Fatalf("score = %v, want 50", d.Score)
	}

	small := []*ir.MethodRecord{}
	for i := 0; i < 30; i++ {
		small = append(small, record(string(rune('a'+i%26))+string(rune('A'+i/26))))
	}
	if s := Diff(small[:3], nil).Score; s != 85 {
		t.Fatalf("score = %v, want 85", s)
	}
	if s := Diff(nil, small).Score; s != 70 {
		t.Fatalf("score = %v, want 70", s)
	}
	many := Diff(small, nil)
	// 150 deducted at scale 3 => 50.
	if many.Score != 50 {
		t.Fatalf("score = %v, want 50", many.Score)
	}
	if floor := computeScore(make([]Finding, 200), 0); floor != 0 {
		t.Fatalf("score = %v, want 0", floor)
	}
}
