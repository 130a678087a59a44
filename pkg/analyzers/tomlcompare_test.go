package analyzers

import (
	"testing"

	"github.com/matzehuels/cratescan/pkg/errors"
)

func TestTOMLCompareAgreement(t *testing.T) {
	docs := map[string]string{
		"manifest": `
[package]
name = "demo"
version = "0.1.0"
authors = ["a <a@example.com>", "b"]
edition = "2021"

[dependencies]
serde = { version = "1", features = ["derive"] }

[target.'cfg(windows)'.dependencies]
winapi = "0.3"
`,
		"lockfile": `
version = 3

[[package]]
name = "a"
version = "1.0.0"
dependencies = ["b"]

[[package]]
name = "b"
version = "2.0.0"
checksum = "abc"
`,
		"scalars": `
int = -17
hex = 0xff
float = 6.25
inf = inf
nan = nan
bool = true
odt = 1979-05-27T07:32:00Z
ldt = 1979-05-27T07:32:00
ld = 1979-05-27
lt = 07:32:00.5
nested = [[1, 2], ["a"]]
inline = [{ x = 1 }, { x = 2 }]
`,
	}
	for name, doc := range docs {
		t.Run(name, func(t *testing.T) {
			if err := (TOMLCompare{}).ScanEntry(name+".toml", doc); err != nil {
				t.Errorf("ScanEntry() error = %v", err)
			}
		})
	}
}

func TestTOMLCompareBothReject(t *testing.T) {
	if err := (TOMLCompare{}).ScanEntry("bad.toml", "[[[nope"); err != nil {
		t.Errorf("documents rejected by both parsers are not reported, got %v", err)
	}
}

func TestEqualTOML(t *testing.T) {
	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{"strings", "x", "x", true},
		{"string mismatch", "x", "y", false},
		{"int vs string", int64(1), "1", false},
		{"table extra key", map[string]any{"a": int64(1)}, map[string]any{"a": int64(1), "b": int64(2)}, false},
		{"table missing key", map[string]any{"a": int64(1)}, map[string]any{"b": int64(1)}, false},
		{"nested value differs", map[string]any{"t": map[string]any{"v": true}}, map[string]any{"t": map[string]any{"v": false}}, false},
		{
			"array of tables",
			map[string]any{"p": []map[string]any{{"n": "a"}}},
			map[string]any{"p": []any{map[string]any{"n": "a"}}},
			true,
		},
		{"array length", []any{int64(1)}, []any{int64(1), int64(2)}, false},
		{"table vs scalar", map[string]any{}, "x", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := equalTOML(tt.a, tt.b); got != tt.want {
				t.Errorf("equalTOML() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTOMLCompareErrorCode(t *testing.T) {
	// Duplicate keys are rejected by go-toml; whatever BurntSushi decides,
	// the result is either agreement on rejection or a coded scan error.
	err := (TOMLCompare{}).ScanEntry("dup.toml", "a = 1\na = 1\n")
	if err != nil && !errors.Is(err, errors.ErrCodeScan) {
		t.Errorf("error = %v, want SCAN_ERROR or nil", err)
	}
}
