// Package web holds the dashboard pages served by the monitor.
package web

import (
	"embed"
	"io/fs"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
)

// DevModeEnv names the variable that makes the monitor serve the pages from
// the source tree, so they can be edited while a simulation runs.
const DevModeEnv = "FRAMESCHED_MONITOR_DEV"

//go:embed dist
var dist embed.FS

// GetAssets returns the dashboard pages.
func GetAssets() http.FileSystem {
	if devMode() {
		return http.Dir(sourceDir())
	}

	pages, err := fs.Sub(dist, "dist")
	if err != nil {
		log.Panic(err)
	}

	return http.FS(pages)
}

func sourceDir() string {
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		log.Panic("cannot locate the monitor pages")
	}

	dir := filepath.Join(filepath.Dir(file), "dist")
	log.Printf("monitor pages served from %s", dir)

	return dir
}

func devMode() bool {
	on, err := strconv.ParseBool(os.Getenv(DevModeEnv))
	return err == nil && on
}
