// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package metrics holds the prometheus collectors exported by the SDK.
// Collectors register with the default registry via promauto; helpers keep
// label handling in one place.
package metrics
