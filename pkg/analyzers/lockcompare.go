package analyzers

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cratescan/pkg/errors"
)

const (
	lockFile       = "Cargo.lock"
	lockBackupFile = "Cargo.lock.scan-backup"
	lockStableFile = "Cargo.lock.stable"
)

// LockCompare generates Cargo.lock with a reference cargo and a candidate
// cargo and fails when the two lockfiles differ. A lockfile shipped with the
// package is moved aside during the comparison and restored afterwards.
type LockCompare struct {
	Reference Cargo
	Candidate Cargo
	Logger    *log.Logger
}

// ScanDir compares the lockfiles generated in dir. When the reference cargo
// cannot generate a lockfile the package is logged and skipped.
func (l *LockCompare) ScanDir(dir string) error {
	lock := filepath.Join(dir, lockFile)
	backup := filepath.Join(dir, lockBackupFile)

	hadLock := false
	if _, err := os.Stat(lock); err == nil {
		if err := os.Rename(lock, backup); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "back up %s", lock)
		}
		hadLock = true
	}

	err := l.compare(dir)

	if hadLock {
		if rerr := os.Rename(backup, lock); rerr != nil {
			loggerOrDefault(l.Logger).Error("failed to restore lockfile", "from", backup, "to", lock, "err", rerr)
		}
	}
	return err
}

func (l *LockCompare) compare(dir string) error {
	args := []string{"generate-lockfile", "-Zno-index-update"}
	lock := filepath.Join(dir, lockFile)
	stable := filepath.Join(dir, lockStableFile)

	out, err := l.Reference.run(dir, args...)
	if err != nil {
		loggerOrDefault(l.Logger).Warn("reference cargo failed", "dir", dir,
			"stdout", string(out.Stdout), "stderr", string(out.Stderr))
		return nil
	}
	if err := os.Rename(lock, stable); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "move %s", lock)
	}
	defer func() { _ = os.Remove(stable) }()

	out, err = l.Candidate.run(dir, args...)
	if err != nil {
		return errors.Wrap(errors.ErrCodeScan, err, "%s: candidate cargo failed:\n%s\n%s", dir, out.Stdout, out.Stderr)
	}

	want, err := os.ReadFile(stable)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "read %s", stable)
	}
	got, err := os.ReadFile(lock)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "read %s", lock)
	}
	if !bytes.Equal(want, got) {
		return errors.New(errors.ErrCodeScan, "%s: lockfiles differ", dir)
	}
	return nil
}
