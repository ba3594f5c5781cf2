// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package broker turns stream URIs into connection descriptors and defines
// the contracts a message-queue transport fulfils for a streaming session.
//
// Concrete transports live in amqpbroker and natsbroker.
package broker
