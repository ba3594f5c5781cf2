// SPDX-License-Identifier: MIT

package health

import (
	"context"
	"fmt"
	"os"

	"github.com/ManuGH/udapi/internal/log"
)

// PerformStartupChecks prepares the snapshot directory and fails fast when
// it cannot be used.
func PerformStartupChecks(ctx context.Context, snapshotDir string) error {
	logger := log.WithComponent("startup")
	if snapshotDir == "" {
		return nil
	}
	if err := os.MkdirAll(snapshotDir, 0o750); err != nil {
		return fmt.Errorf("create snapshot dir %s: %w", snapshotDir, err)
	}
	res := NewDirChecker("snapshot_dir", snapshotDir).Check(ctx)
	if res.Status != StatusHealthy {
		return fmt.Errorf("snapshot dir %s: %s", snapshotDir, res.Error)
	}
	logger.Info().
		Str("event", "startup.snapshot_dir_ok").
		Str("path", snapshotDir).
		Msg("snapshot directory ready")
	return nil
}
