package prefabs

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestModTimeTracksDiskOverride(t *testing.T) {
	chdir(t, t.TempDir())

	if _, ok := ModTime("cape.yaml"); ok {
		t.Fatalf("embedded-only prefab should report no disk copy")
	}

	if err := os.MkdirAll("prefabs", 0o755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join("prefabs", "cape.yaml")
	if err := os.WriteFile(path, []byte("segment_count: 4\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	stamp := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	if err := os.Chtimes(path, stamp, stamp); err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"cape.yaml", "prefabs/cape.yaml"} {
		mod, ok := ModTime(name)
		if !ok || !mod.Equal(stamp) {
			t.Fatalf("ModTime(%q) = %v, %v; want %v", name, mod, ok, stamp)
		}
	}

	spec, err := LoadCapeSpec("")
	if err != nil {
		t.Fatal(err)
	}
	if spec.SegmentCount != 4 {
		t.Fatalf("disk override not preferred, segment_count=%d", spec.SegmentCount)
	}
}

func TestScenarioFiles(t *testing.T) {
	cases := []struct {
		name string
		spec ScenarioSpec
		want []string
	}{
		{"settle", ScenarioSpec{}, []string{"scenarios/settle.yaml", "cape.yaml"}},
		{"ledge", ScenarioSpec{CapeFile: "prefabs/heavy.yaml"}, []string{"scenarios/ledge.yaml", "heavy.yaml"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.spec.Files(tc.name)
			if len(got) != len(tc.want) {
				t.Fatalf("Files = %v, want %v", got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("Files = %v, want %v", got, tc.want)
				}
			}
		})
	}
}

// chdir changes the working directory for the duration of the test.
// Equivalent to testing.T.Chdir, which requires Go 1.24.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatal(err)
		}
	})
}
