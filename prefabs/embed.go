package prefabs

import (
	"embed"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

//go:embed *.yaml scenarios/*.yaml
var PrefabsFS embed.FS

//go:embed scripts/*.tengo
var ScriptsFS embed.FS

// Load returns a prefab file. A copy under prefabs/ on disk wins over the
// embedded one so tunables can be edited without rebuilding.
func Load(name string) ([]byte, error) {
	return readOverride(PrefabsFS, cleanPrefabPath(name))
}

// LoadScript returns an anchor script from prefabs/scripts, disk first.
func LoadScript(name string) ([]byte, error) {
	return readOverride(ScriptsFS, cleanScriptPath(name))
}

func readOverride(embedded embed.FS, clean string) ([]byte, error) {
	if data, err := os.ReadFile(diskPrefabPath(clean)); err == nil {
		return data, nil
	}
	return embedded.ReadFile(clean)
}

// ModTime reports when the disk override of a prefab last changed. ok is
// false when only the embedded copy exists.
func ModTime(name string) (time.Time, bool) {
	info, err := os.Stat(diskPrefabPath(cleanPrefabPath(name)))
	if err != nil {
		return time.Time{}, false
	}
	return info.ModTime(), true
}

// Scenarios lists the embedded scenario names without directory or extension.
func Scenarios() []string {
	matches, err := fs.Glob(PrefabsFS, "scenarios/*.yaml")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, strings.TrimSuffix(path.Base(m), ".yaml"))
	}
	sort.Strings(names)
	return names
}

func cleanPrefabPath(p string) string {
	return strings.TrimPrefix(filepath.ToSlash(p), "prefabs/")
}

func cleanScenarioPath(name string) string {
	return cleanIn(name, "scenarios", ".yaml")
}

func cleanScriptPath(name string) string {
	if name == "" {
		return ""
	}
	return cleanIn(name, "scripts", ".tengo")
}

// cleanIn normalises a user supplied name to dir/base.ext, accepting it with
// or without the prefabs/ and dir/ prefixes and the extension.
func cleanIn(name, dir, ext string) string {
	s := strings.TrimPrefix(cleanPrefabPath(name), dir+"/")
	if path.Ext(s) == "" {
		s += ext
	}
	return dir + "/" + s
}

func diskPrefabPath(clean string) string {
	return filepath.Join("prefabs", filepath.FromSlash(clean))
}
