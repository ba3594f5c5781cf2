// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package config loads the console configuration.
//
// Precedence is Defaults < YAML file < UDAPI_* environment. The result is
// validated before it is handed out; Holder keeps the live copy and reloads
// it when the file changes on disk.
package config
