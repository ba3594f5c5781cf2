// SPDX-License-Identifier: MIT

package health

import (
	"context"
	"os"
	"path/filepath"
)

// DirChecker reports whether a directory exists and accepts new files.
type DirChecker struct {
	name string
	path string
}

// NewDirChecker creates a checker for a writable directory
func NewDirChecker(name, path string) *DirChecker {
	return &DirChecker{name: name, path: path}
}

func (c *DirChecker) Name() string { return c.name }

func (c *DirChecker) Check(_ context.Context) CheckResult {
	if c.path == "" {
		return CheckResult{Status: StatusHealthy, Message: "not configured (optional)"}
	}

	info, err := os.Stat(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return CheckResult{Status: StatusUnhealthy, Error: "directory not found", Message: c.path}
		}
		return CheckResult{Status: StatusUnhealthy, Error: err.Error()}
	}
	if !info.IsDir() {
		return CheckResult{Status: StatusUnhealthy, Error: "expected directory, got file", Message: c.path}
	}

	probe, err := os.CreateTemp(c.path, ".health-*")
	if err != nil {
		return CheckResult{Status: StatusDegraded, Error: err.Error(), Message: "directory is not writable"}
	}
	name := probe.Name()
	_ = probe.Close()
	_ = os.Remove(name)

	return CheckResult{Status: StatusHealthy, Message: filepath.Clean(c.path)}
}

// FuncChecker adapts a function to Checker.
type FuncChecker struct {
	name string
	fn   func(context.Context) CheckResult
}

func NewFuncChecker(name string, fn func(context.Context) CheckResult) *FuncChecker {
	return &FuncChecker{name: name, fn: fn}
}

func (c *FuncChecker) Name() string { return c.name }

func (c *FuncChecker) Check(ctx context.Context) CheckResult { return c.fn(ctx) }
