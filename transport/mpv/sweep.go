package mpv

import (
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/playstate/playstate/filesystem"
	"github.com/playstate/playstate/log"
	"github.com/playstate/playstate/where"
)

// SweepSockets removes IPC sockets left behind by sessions that did not shut
// down. A socket is stale when it is older than minAge and nothing accepts
// connections on it. It returns the number of removed sockets.
func SweepSockets(minAge time.Duration) int {
	return sweep(where.Sockets(), minAge)
}

func sweep(dir string, minAge time.Duration) int {
	fs := filesystem.API()
	removed := 0

	_ = fs.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		name := filepath.Base(path)
		if !strings.HasPrefix(name, "mpv-") || !strings.HasSuffix(name, ".sock") {
			return nil
		}
		if time.Since(info.ModTime()) < minAge || listening(path) {
			return nil
		}

		if err := fs.Remove(path); err != nil {
			log.Warnf("mpv: remove stale socket %s: %v", path, err)
			return nil
		}
		removed++
		return nil
	})

	if removed > 0 {
		log.Infof("mpv: removed %d stale socket(s)", removed)
	}
	return removed
}

func listening(socket string) bool {
	conn, err := net.DialTimeout("unix", socket, 200*time.Millisecond)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}
