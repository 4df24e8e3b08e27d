package config

import (
	"os"
	"path/filepath"
)

// SearchPaths lists the directories searched for streamlat.{yaml,json,toml}
// when no config file is given, in priority order.
func SearchPaths() []string {
	paths := []string{"."}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		paths = append(paths, filepath.Join(xdg, "streamlat"))
	} else if home, err := os.UserHomeDir(); err == nil && home != "" {
		paths = append(paths, filepath.Join(home, ".config", "streamlat"))
	}
	if isDir("/etc/streamlat") {
		paths = append(paths, "/etc/streamlat")
	}
	return paths
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}
