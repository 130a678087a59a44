package scan

import (
	"archive/tar"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/klauspost/compress/gzip"

	cserrors "github.com/matzehuels/cratescan/pkg/errors"
	"github.com/matzehuels/cratescan/pkg/filter"
)

type entry struct {
	name string
	body []byte
	dir  bool
}

func file(name, body string) entry { return entry{name: name, body: []byte(body)} }

// writeCrate writes a gzip-compressed tar archive to dir/name.
func writeCrate(t *testing.T, dir, name string, entries ...entry) string {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	for _, e := range entries {
		hdr := &tar.Header{Name: e.name, Mode: 0o644, Size: int64(len(e.body)), Typeflag: tar.TypeReg}
		if e.dir {
			hdr = &tar.Header{Name: e.name, Mode: 0o755, Typeflag: tar.TypeDir}
		}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatal(err)
		}
		if !e.dir {
			if _, err := tw.Write(e.body); err != nil {
				t.Fatal(err)
			}
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := gz.Close(); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// recorder collects scanner invocations safely across workers.
type recorder struct {
	mu    sync.Mutex
	calls map[string]string
	fail  func(path string) error
}

func newRecorder() *recorder { return &recorder{calls: make(map[string]string)} }

func (r *recorder) ScanEntry(path, contents string) error {
	r.mu.Lock()
	r.calls[path] = contents
	r.mu.Unlock()
	if r.fail != nil {
		return r.fail(path)
	}
	return nil
}

func (r *recorder) paths() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.calls))
	for p := range r.calls {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

func testRunner(t *testing.T, workers int) (*Runner, *bytes.Buffer) {
	t.Helper()
	var logs bytes.Buffer
	r := NewRunner(workers, log.New(&logs))
	return r, &logs
}

func TestScanArchivesRoundTrip(t *testing.T) {
	dir := t.TempDir()
	const body = "fn main() {\n    println!(\"héllo\");\n}\n"
	p := writeCrate(t, dir, "foo-1.0.0.crate", file("foo-1.0.0/src/main.rs", body))

	r, _ := testRunner(t, 2)
	rec := newRecorder()
	report := r.ScanArchives(context.Background(), []string{p}, filter.Everything, rec)

	if len(rec.calls) != 1 {
		t.Fatalf("scanner called %d times, want 1", len(rec.calls))
	}
	got, ok := rec.calls["foo-1.0.0.crate/foo-1.0.0/src/main.rs"]
	if !ok {
		t.Fatalf("unexpected display paths: %v", rec.paths())
	}
	if got != body {
		t.Errorf("contents = %q, want %q", got, body)
	}
	if report.Scanned != 1 || report.LoadErrors != 0 || report.ScanErrors != 0 || report.Total != 1 {
		t.Errorf("report = %+v", report)
	}
	if report.Kind != KindCompressed {
		t.Errorf("Kind = %s, want compressed", report.Kind)
	}
}

func TestScanArchivesFilter(t *testing.T) {
	dir := t.TempDir()
	p := writeCrate(t, dir, "foo-1.0.0.crate",
		entry{name: "foo-1.0.0/", dir: true},
		file("foo-1.0.0/Cargo.toml", "[package]\nname = \"foo\"\n"),
		file("foo-1.0.0/src/lib.rs", "pub fn f() {}\n"),
	)

	r, _ := testRunner(t, 1)
	rec := newRecorder()
	report := r.ScanArchives(context.Background(), []string{p}, filter.FileName("Cargo.toml"), rec)

	paths := rec.paths()
	if len(paths) != 1 {
		t.Fatalf("scanner called for %v, want exactly one entry", paths)
	}
	if !strings.HasSuffix(paths[0], "/Cargo.toml") {
		t.Errorf("display path %q should end in /Cargo.toml", paths[0])
	}
	if report.Scanned != 1 {
		t.Errorf("Scanned = %d, want 1 (filtered entries are not counted)", report.Scanned)
	}
}

func TestScanArchivesDecodeFailureIsolation(t *testing.T) {
	dir := t.TempDir()
	bad := writeCrate(t, dir, "bad-1.0.0.crate",
		file("bad-1.0.0/a.txt", "first"),
		entry{name: "bad-1.0.0/b.txt", body: []byte{0xff, 0xfe, 0x00}},
		file("bad-1.0.0/c.txt", "never reached"),
	)
	var good []string
	for i := 0; i < 5; i++ {
		good = append(good, writeCrate(t, dir, fmt.Sprintf("good-%d.0.0.crate", i),
			file(fmt.Sprintf("good-%d.0.0/a.txt", i), "a"),
			file(fmt.Sprintf("good-%d.0.0/b.txt", i), "b"),
		))
	}

	r, logs := testRunner(t, 3)
	rec := newRecorder()
	report := r.ScanArchives(context.Background(), append([]string{bad}, good...), nil, rec)

	if _, ok := rec.calls["bad-1.0.0.crate/bad-1.0.0/a.txt"]; !ok {
		t.Error("first entry of the failing archive should have been scanned")
	}
	if _, ok := rec.calls["bad-1.0.0.crate/bad-1.0.0/c.txt"]; ok {
		t.Error("entries after a decode failure must be skipped")
	}
	if report.LoadErrors != 1 {
		t.Errorf("LoadErrors = %d, want 1", report.LoadErrors)
	}
	if report.ScanErrors != 0 {
		t.Errorf("ScanErrors = %d, want 0", report.ScanErrors)
	}
	if want := int64(1 + 2*len(good)); report.Scanned != want {
		t.Errorf("Scanned = %d, want %d", report.Scanned, want)
	}
	if !strings.Contains(logs.String(), "decode error") {
		t.Errorf("expected decode error in logs, got:\n%s", logs.String())
	}
}

func TestScanArchivesScanErrorStopsArchiveOnly(t *testing.T) {
	dir := t.TempDir()
	a := writeCrate(t, dir, "a-1.0.0.crate",
		file("a-1.0.0/1.txt", "boom"),
		file("a-1.0.0/2.txt", "skipped"),
	)
	b := writeCrate(t, dir, "b-1.0.0.crate",
		file("b-1.0.0/1.txt", "ok"),
		file("b-1.0.0/2.txt", "ok"),
	)

	r, logs := testRunner(t, 2)
	rec := newRecorder()
	rec.fail = func(path string) error {
		if strings.HasSuffix(path, "a-1.0.0/1.txt") {
			return errors.New("analysis failed")
		}
		return nil
	}
	report := r.ScanArchives(context.Background(), []string{a, b}, nil, rec)

	if report.ScanErrors != 1 || report.LoadErrors != 0 {
		t.Errorf("report = %+v, want 1 scan error and no load errors", report)
	}
	if _, ok := rec.calls["a-1.0.0.crate/a-1.0.0/2.txt"]; ok {
		t.Error("entries after a scan error must be skipped")
	}
	for _, p := range []string{"b-1.0.0.crate/b-1.0.0/1.txt", "b-1.0.0.crate/b-1.0.0/2.txt"} {
		if _, ok := rec.calls[p]; !ok {
			t.Errorf("%s should have been scanned", p)
		}
	}
	out := logs.String()
	if !strings.Contains(out, "analysis failed") || !strings.Contains(out, "boom") {
		t.Errorf("scan error log should carry the error and the contents, got:\n%s", out)
	}
}

func TestScanArchivesLoadErrors(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "missing-1.0.0.crate")

	notGzip := filepath.Join(dir, "plain-1.0.0.crate")
	if err := os.WriteFile(notGzip, []byte("not a gzip stream"), 0o644); err != nil {
		t.Fatal(err)
	}

	full := writeCrate(t, dir, "trunc-1.0.0.crate", file("trunc-1.0.0/big.txt", strings.Repeat("x", 64<<10)))
	data, err := os.ReadFile(full)
	if err != nil {
		t.Fatal(err)
	}
	truncated := filepath.Join(dir, "truncated-1.0.0.crate")
	if err := os.WriteFile(truncated, data[:len(data)/2], 0o644); err != nil {
		t.Fatal(err)
	}

	ok := writeCrate(t, dir, "ok-1.0.0.crate", file("ok-1.0.0/x.txt", "x"))

	r, _ := testRunner(t, 4)
	rec := newRecorder()
	report := r.ScanArchives(context.Background(), []string{missing, notGzip, truncated, ok}, nil, rec)

	if report.LoadErrors != 3 {
		t.Errorf("LoadErrors = %d, want 3", report.LoadErrors)
	}
	if report.Scanned != 1 {
		t.Errorf("Scanned = %d, want 1", report.Scanned)
	}
	if report.Total != 4 {
		t.Errorf("Total = %d, want 4", report.Total)
	}
}

func TestScanArchivesPanicIsScanError(t *testing.T) {
	dir := t.TempDir()
	p := writeCrate(t, dir, "p-1.0.0.crate", file("p-1.0.0/x.txt", "boom-input"))
	q := writeCrate(t, dir, "q-1.0.0.crate", file("q-1.0.0/x.txt", "x"))

	r, logs := testRunner(t, 1)
	var mu sync.Mutex
	seen := 0
	report := r.ScanArchives(context.Background(), []string{p, q}, nil, EntryScannerFunc(func(path, _ string) error {
		mu.Lock()
		seen++
		mu.Unlock()
		if strings.HasPrefix(path, "p-") {
			panic("unexpected input")
		}
		return nil
	}))

	if report.ScanErrors != 1 {
		t.Errorf("ScanErrors = %d, want 1", report.ScanErrors)
	}
	if seen != 2 {
		t.Errorf("scanner saw %d entries, want 2", seen)
	}
	out := logs.String()
	for _, want := range []string{"scanner panicked", "p-1.0.0.crate/p-1.0.0/x.txt", "boom-input"} {
		if !strings.Contains(out, want) {
			t.Errorf("log missing %q:\n%s", want, out)
		}
	}
}

func TestScanArchivesProgress(t *testing.T) {
	dir := t.TempDir()
	var entries []entry
	for i := 0; i < 7; i++ {
		entries = append(entries, file(fmt.Sprintf("many-1.0.0/%d.txt", i), "x"))
	}
	p := writeCrate(t, dir, "many-1.0.0.crate", entries...)

	r, logs := testRunner(t, 1)
	r.ProgressEvery = 3
	report := r.ScanArchives(context.Background(), []string{p}, nil, newRecorder())

	if report.Scanned != 7 {
		t.Fatalf("Scanned = %d, want 7", report.Scanned)
	}
	if n := strings.Count(logs.String(), "progress"); n != 2 {
		t.Errorf("progress lines = %d, want 2\n%s", n, logs.String())
	}
}

func TestScanArchivesErrorsCarryCodes(t *testing.T) {
	dir := t.TempDir()
	r, _ := testRunner(t, 1)
	var c counters

	err := r.scanArchive(filepath.Join(dir, "nope.crate"), filter.Everything, newRecorder(), &c)
	if !cserrors.Is(err, cserrors.ErrCodeLoad) {
		t.Errorf("missing archive: code = %v, want LOAD_ERROR", cserrors.GetCode(err))
	}

	p := writeCrate(t, dir, "x-1.0.0.crate", file("x-1.0.0/a", "a"))
	rec := newRecorder()
	rec.fail = func(string) error { return errors.New("nope") }
	err = r.scanArchive(p, filter.Everything, rec, &c)
	if !cserrors.Is(err, cserrors.ErrCodeScan) {
		t.Errorf("failing scanner: code = %v, want SCAN_ERROR", cserrors.GetCode(err))
	}
}

func TestScanDirs(t *testing.T) {
	root := t.TempDir()
	var dirs []string
	for i := 0; i < 10; i++ {
		d := filepath.Join(root, fmt.Sprintf("pkg-%d.0.0", i))
		if err := os.Mkdir(d, 0o755); err != nil {
			t.Fatal(err)
		}
		dirs = append(dirs, d)
	}

	r, logs := testRunner(t, 4)
	var mu sync.Mutex
	visited := make(map[string]int)
	report := r.ScanDirs(context.Background(), dirs, DirScannerFunc(func(dir string) error {
		mu.Lock()
		visited[dir]++
		mu.Unlock()
		if strings.HasSuffix(dir, "pkg-3.0.0") || strings.HasSuffix(dir, "pkg-7.0.0") {
			return fmt.Errorf("%s: cargo failed", filepath.Base(dir))
		}
		return nil
	}))

	if len(visited) != len(dirs) {
		t.Errorf("visited %d directories, want %d", len(visited), len(dirs))
	}
	for d, n := range visited {
		if n != 1 {
			t.Errorf("%s visited %d times", d, n)
		}
	}
	if report.ScanErrors != 2 {
		t.Errorf("ScanErrors = %d, want 2", report.ScanErrors)
	}
	if report.Total != 10 || report.Scanned != 10 {
		t.Errorf("report = %+v", report)
	}
	if report.Kind != KindUncompressed {
		t.Errorf("Kind = %s, want uncompressed", report.Kind)
	}
	if !strings.Contains(logs.String(), "cargo failed") {
		t.Errorf("scan error should be logged, got:\n%s", logs.String())
	}
}

func TestReportPrint(t *testing.T) {
	tests := []struct {
		name   string
		report Report
		want   string
	}{
		{
			name:   "compressed",
			report: Report{Kind: KindCompressed, LoadErrors: 2, ScanErrors: 3, Total: 100},
			want:   "load errors: 2\nscan errors: 3\ntotal: 100\n",
		},
		{
			name:   "uncompressed",
			report: Report{Kind: KindUncompressed, ScanErrors: 1, Total: 5},
			want:   "scan errors: 1\ntotal: 5\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := tt.report.Print(&buf); err != nil {
				t.Fatal(err)
			}
			if buf.String() != tt.want {
				t.Errorf("Print() = %q, want %q", buf.String(), tt.want)
			}
		})
	}
}

func TestReportFailed(t *testing.T) {
	if (&Report{}).Failed() {
		t.Error("empty report should not be failed")
	}
	if !(&Report{ScanErrors: 1}).Failed() || !(&Report{LoadErrors: 1}).Failed() {
		t.Error("report with errors should be failed")
	}
	if got := (&Report{LoadErrors: 2, ScanErrors: 3}).Failures(); got != 5 {
		t.Errorf("Failures() = %d, want 5", got)
	}
}

func TestWorkerCount(t *testing.T) {
	one := WorkerCount(1)
	if one < 1 {
		t.Fatalf("WorkerCount(1) = %d", one)
	}
	if got := WorkerCount(3); got != 3*one {
		t.Errorf("WorkerCount(3) = %d, want %d", got, 3*one)
	}
	if got := WorkerCount(0); got != one {
		t.Errorf("WorkerCount(0) = %d, want %d", got, one)
	}
}

func TestNewRunnerDefaults(t *testing.T) {
	r := NewRunner(0, nil)
	if r.Workers != 1 {
		t.Errorf("Workers = %d, want 1", r.Workers)
	}
	if r.Logger == nil {
		t.Error("Logger should default to log.Default()")
	}
	if r.ProgressEvery != DefaultProgressEvery {
		t.Errorf("ProgressEvery = %d, want %d", r.ProgressEvery, DefaultProgressEvery)
	}
}

type countingHooks struct {
	mu       sync.Mutex
	starts   int
	units    int
	failures int64
}

func (h *countingHooks) OnScanStart(context.Context, string, int) {
	h.mu.Lock()
	h.starts++
	h.mu.Unlock()
}

func (h *countingHooks) OnUnitComplete(context.Context, string, string, time.Duration, error) {
	h.mu.Lock()
	h.units++
	h.mu.Unlock()
}

func (h *countingHooks) OnScanComplete(_ context.Context, _ string, failures int64, _ time.Duration) {
	h.mu.Lock()
	h.failures = failures
	h.mu.Unlock()
}

func TestScanHooks(t *testing.T) {
	dir := t.TempDir()
	a := writeCrate(t, dir, "a-1.0.0.crate", file("a-1.0.0/x", "x"))
	missing := filepath.Join(dir, "missing-1.0.0.crate")

	r, _ := testRunner(t, 2)
	h := &countingHooks{}
	r.Hooks = h
	r.ScanArchives(context.Background(), []string{a, missing}, nil, newRecorder())

	if h.starts != 1 || h.units != 2 || h.failures != 1 {
		t.Errorf("hooks saw starts=%d units=%d failures=%d, want 1/2/1", h.starts, h.units, h.failures)
	}
}
