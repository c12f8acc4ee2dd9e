package audio

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// DefaultMaxAge is how old a file must be before Sweep removes it.
const DefaultMaxAge = time.Hour

// SweepResult summarizes one sweep pass.
type SweepResult struct {
	Matched int
	Removed int
	Bytes   int64
}

// Sweep deletes files in dir matching SweepPattern whose modification time
// is before now-maxAge. Files that disappear mid-sweep are skipped. Other
// failures are collected and returned together; the sweep never stops early.
func Sweep(dir string, maxAge time.Duration, now time.Time, logger *zap.SugaredLogger) (SweepResult, error) {
	var res SweepResult

	matches, err := filepath.Glob(filepath.Join(dir, SweepPattern))
	if err != nil {
		return res, err
	}
	res.Matched = len(matches)

	cutoff := now.Add(-maxAge)
	var errs error

	for _, path := range matches {
		info, err := os.Stat(path)
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				errs = multierr.Append(errs, err)
			}
			continue
		}
		if info.IsDir() || !info.ModTime().Before(cutoff) {
			continue
		}

		if err := os.Remove(path); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				errs = multierr.Append(errs, err)
			}
			continue
		}
		res.Removed++
		res.Bytes += info.Size()
		logger.Infof("sweep: removed %s (%s, modified %s)",
			filepath.Base(path), humanize.Bytes(uint64(info.Size())), humanize.RelTime(info.ModTime(), now, "ago", "from now"))
	}

	return res, errs
}
