package telemetry

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"time"
)

// DumpDir writes each dumped exchange to its own .http file. File names
// start with the time the directory was opened, so dumps from separate runs
// sort in order and never overwrite each other. Only the newest keep files
// are retained, zero keeps everything.
type DumpDir struct {
	dir   string
	run   string
	keep  int
	mutex *sync.Mutex
}

func NewDumpDir(dir string, keep int) (DumpDir, error) {
	err := os.MkdirAll(dir, 0o755)
	if err != nil {
		return DumpDir{}, fmt.Errorf("telemetry: dump dir: %w", err)
	}
	return DumpDir{
		dir:   dir,
		run:   time.Now().UTC().Format("20060102T150405"),
		keep:  keep,
		mutex: &sync.Mutex{},
	}, nil
}

// FileName is the name Write uses for id.
func (d DumpDir) FileName(id string) string {
	if n, err := strconv.ParseUint(id, 10, 64); err == nil {
		id = fmt.Sprintf("%06d", n)
	}
	return fmt.Sprintf("%s-%s.http", d.run, id)
}

func (d DumpDir) Write(id string, contents string) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	err := os.WriteFile(filepath.Join(d.dir, d.FileName(id)), []byte(contents), 0o600)
	if err != nil {
		slog.Warn("failed to write exchange dump", "id", id, "err", err)
		return
	}
	d.prune()
}

func (d DumpDir) prune() {
	if d.keep <= 0 {
		return
	}
	files, err := filepath.Glob(filepath.Join(d.dir, "*.http"))
	if err != nil || len(files) <= d.keep {
		return
	}
	sort.Strings(files)
	for _, file := range files[:len(files)-d.keep] {
		err = os.Remove(file)
		if err != nil && !os.IsNotExist(err) {
			slog.Warn("failed to prune exchange dump", "file", file, "err", err)
		}
	}
}
