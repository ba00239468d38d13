package main

import (
	"flag"
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/cape/prefabs"
)

func main() {
	scenario := flag.String("scenario", "ledge", "scenario name in prefabs/scenarios (basename, .yaml optional)")
	debug := flag.Bool("debug", false, "start with the debug overlay on")
	baseMonitor := flag.Bool("m", false, "use base monitor instead of primary (for multi-monitor setups)")
	watch := flag.Bool("watch", true, "hot reload specs, scripts and levels from disk")
	flag.Parse()

	if *baseMonitor {
		ebiten.SetMonitor(ebiten.AppendMonitors(nil)[0])
	}

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(baseWidth, baseHeight)
	ebiten.SetWindowTitle("cape")

	var watcher *prefabs.Watcher
	if *watch {
		watcher = startWatcher()
		if watcher != nil {
			defer watcher.Close()
		}
	}

	game, err := NewGame(*scenario, *debug, *watch, watcher)
	if err != nil {
		log.Fatal(err)
	}

	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}

// startWatcher watches whichever override directories exist next to the
// binary's working directory.
func startWatcher() *prefabs.Watcher {
	var dirs []string
	for _, dir := range prefabs.DefaultWatchDirs() {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			dirs = append(dirs, dir)
		}
	}
	if len(dirs) == 0 {
		return nil
	}
	w, err := prefabs.NewWatcher(dirs...)
	if err != nil {
		log.Printf("Watcher: fsnotify unavailable, polling prefab overrides: %v", err)
		return nil
	}
	log.Printf("Watcher: watching %v", dirs)
	return w
}
