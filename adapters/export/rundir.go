package export

import (
	"fmt"
	"os"
	"path/filepath"

	"neuroslope/domain/core"
	"neuroslope/domain/run"
)

// MakeRunDir creates a fresh export directory for one run:
// <base>/<date>-<montage>/, suffixed -1, -2, ... when earlier runs of
// the same day and montage already exist.
func MakeRunDir(base string, montage run.Montage) (string, error) {
	if err := os.MkdirAll(base, 0o755); err != nil {
		return "", fmt.Errorf("failed to create export root %s: %w", base, err)
	}

	stem := core.Now().DateString() + "-" + string(montage)
	dir := filepath.Join(base, stem)
	for num := 1; ; num++ {
		err := os.Mkdir(dir, 0o755)
		if err == nil {
			return dir, nil
		}
		if !os.IsExist(err) {
			return "", fmt.Errorf("failed to create run directory %s: %w", dir, err)
		}
		dir = filepath.Join(base, fmt.Sprintf("%s-%d", stem, num))
	}
}
