package levels

import (
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

//go:embed *.json
var LevelsFS embed.FS

// DefaultTileSize is the tile edge in world units when a level omits it.
const DefaultTileSize = 0.32

const (
	TileEmpty  = 0
	TileSolid  = 1
	TileHazard = 2
)

// Level is a tile map. Row 0 is the top row; world space is Y-up with the
// bottom-left corner of the map at the origin.
type Level struct {
	Width     int         `json:"width"`
	Height    int         `json:"height"`
	TileSize  float64     `json:"tile_size,omitempty"`
	Layers    [][]int     `json:"layers"`
	LayerMeta []LayerMeta `json:"layer_meta,omitempty"`
	SpawnX    int         `json:"spawn_x,omitempty"`
	SpawnY    int         `json:"spawn_y,omitempty"`
}

type LayerMeta struct {
	Physics bool `json:"physics"`
}

// Load reads a level from the levels directory on disk when present,
// falling back to the embedded copy.
func Load(name string) (*Level, error) {
	clean := cleanLevelPath(name)
	data, err := os.ReadFile(filepath.Join("levels", filepath.FromSlash(clean)))
	if err != nil {
		data, err = LevelsFS.ReadFile(clean)
		if err != nil {
			return nil, fmt.Errorf("read level: %w", err)
		}
	}
	return Parse(data)
}

// Parse decodes and validates a level.
func Parse(data []byte) (*Level, error) {
	var lvl Level
	if err := json.Unmarshal(data, &lvl); err != nil {
		return nil, fmt.Errorf("unmarshal level: %w", err)
	}
	if err := lvl.Validate(); err != nil {
		return nil, err
	}
	if lvl.TileSize <= 0 {
		lvl.TileSize = DefaultTileSize
	}
	return &lvl, nil
}

func (l *Level) Validate() error {
	if l.Width <= 0 || l.Height <= 0 {
		return fmt.Errorf("invalid level dimensions: %dx%d", l.Width, l.Height)
	}
	for i, layer := range l.Layers {
		if len(layer) != l.Width*l.Height {
			return fmt.Errorf("layer %d has %d tiles, want %d", i, len(layer), l.Width*l.Height)
		}
	}
	if l.SpawnX < 0 || l.SpawnX >= l.Width || l.SpawnY < 0 || l.SpawnY >= l.Height {
		return fmt.Errorf("spawn %d,%d outside level", l.SpawnX, l.SpawnY)
	}
	return nil
}

// PhysicsLayers returns the layers flagged as solid. Layers without
// metadata carry no physics.
func (l *Level) PhysicsLayers() [][]int {
	var out [][]int
	for i, layer := range l.Layers {
		if i < len(l.LayerMeta) && l.LayerMeta[i].Physics {
			out = append(out, layer)
		}
	}
	return out
}

// TileRect returns the world-space bounds of a w×h block of tiles whose
// top-left tile is (x, y).
func (l *Level) TileRect(x, y, w, h int) (left, bottom, right, top float64) {
	ts := l.TileSize
	left = float64(x) * ts
	right = float64(x+w) * ts
	top = float64(l.Height-y) * ts
	bottom = float64(l.Height-y-h) * ts
	return
}

// Spawn returns the world-space centre of the spawn tile.
func (l *Level) Spawn() (float64, float64) {
	left, bottom, right, top := l.TileRect(l.SpawnX, l.SpawnY, 1, 1)
	return (left + right) / 2, (bottom + top) / 2
}

// WorldSize returns the map extent in world units.
func (l *Level) WorldSize() (float64, float64) {
	return float64(l.Width) * l.TileSize, float64(l.Height) * l.TileSize
}

func cleanLevelPath(name string) string {
	s := filepath.ToSlash(name)
	s = strings.TrimPrefix(s, "levels/")
	if !strings.HasSuffix(s, ".json") {
		s += ".json"
	}
	return s
}
