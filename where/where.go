// Package where resolves the directories the application reads and writes.
package where

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/playstate/playstate/constant"
	"github.com/playstate/playstate/filesystem"
	"github.com/samber/lo"
)

// EnvConfigPath overrides the configuration directory.
var EnvConfigPath = strings.ToUpper(constant.App) + "_CONFIG_PATH"

func ensureDir(path string) string {
	lo.Must0(filesystem.API().MkdirAll(path, os.ModePerm))
	return path
}

// Config is the configuration directory. It honours EnvConfigPath.
func Config() string {
	if custom, ok := os.LookupEnv(EnvConfigPath); ok {
		return ensureDir(custom)
	}

	base := lo.Must(os.UserConfigDir())
	return ensureDir(filepath.Join(base, constant.App))
}

// Cache is the persistent cache directory.
func Cache() string {
	base, err := os.UserCacheDir()
	if err != nil {
		base = filepath.Join(".", "cache")
	}
	return ensureDir(filepath.Join(base, constant.App))
}

// Logs is where log files are written.
func Logs() string {
	return ensureDir(filepath.Join(Config(), "logs"))
}

// Sockets holds mpv IPC sockets.
func Sockets() string {
	return ensureDir(filepath.Join(Temp(), "sockets"))
}

// Temp is the scratch directory. It is wiped by `clear`.
func Temp() string {
	return ensureDir(filepath.Join(os.TempDir(), constant.App))
}
