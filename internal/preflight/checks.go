package preflight

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"github.com/V3L/kometa-yaml-merger/internal/history"
	"github.com/V3L/kometa-yaml-merger/internal/merge"
	"github.com/V3L/kometa-yaml-merger/internal/output"
	"github.com/V3L/kometa-yaml-merger/internal/yamldoc"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	return checkDirectory(name, path, unix.R_OK|unix.W_OK|unix.X_OK, "read/write ok")
}

// CheckReadableDirectory verifies that the directory exists and can be listed.
func CheckReadableDirectory(name, path string) Result {
	return checkDirectory(name, path, unix.R_OK|unix.X_OK, "read ok")
}

func checkDirectory(name, path string, mode uint32, okDetail string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, mode); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%s)", path, okDetail)}
}

// CheckOutputTarget verifies that the output file can be replaced. The file
// itself may be absent; its directory must be writable.
func CheckOutputTarget(path string) Result {
	const name = "Output file"

	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is a directory)", path)}
	}
	dir := CheckDirectoryAccess(name, filepath.Dir(path))
	if !dir.Passed {
		return dir
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (writable)", path)}
}

// CheckCore verifies that the core configuration parses to a non-empty mapping.
func CheckCore(path string) Result {
	const name = "Core configuration"

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	doc, err := yamldoc.Parse(data)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: invalid YAML: %v)", path, err)}
	}
	core, ok := doc.Mapping()
	if !ok || core.Len() == 0 {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: empty or not a mapping)", path)}
	}

	libraries := 0
	for _, entry := range core.Entries() {
		if !merge.IsLibrariesKey(entry.Key) {
			continue
		}
		if declared, ok := entry.Value.Mapping(); ok {
			libraries = declared.Len()
		}
	}
	return Result{
		Name:   name,
		Passed: true,
		Detail: fmt.Sprintf("%s (%d keys, %d libraries)", path, core.Len(), libraries),
	}
}

// CheckLock reports whether another merge run currently holds the lock.
func CheckLock(path string) Result {
	const name = "Run lock"

	lock, err := output.AcquireLock(path)
	if err != nil {
		if errors.Is(err, output.ErrLocked) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (held by another run)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	if err := lock.Release(); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: release: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (free)", path)}
}

// CheckHistory verifies that the run ledger opens and can be queried.
func CheckHistory(ctx context.Context, path string) Result {
	const name = "Run history"

	store, err := history.Open(path)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	defer store.Close()

	runs, err := store.Recent(ctx, 1)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	if len(runs) == 0 {
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (no runs yet)", path)}
	}
	last := runs[0]
	return Result{
		Name:   name,
		Passed: true,
		Detail: fmt.Sprintf("%s (last run %s, %s)", path, last.StartedAt.Local().Format("2006-01-02 15:04:05"), last.Status),
	}
}
