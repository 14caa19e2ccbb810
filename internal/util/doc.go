// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small file and text helpers shared across prepchat.
//
//   - AtomicWriteFile: crash-safe file replacement
//   - TruncateWidth, PadWidth: terminal display-width aware string helpers
package util
