// SPDX-License-Identifier: MPL-2.0

// Package issue provides user-facing error decoration for the CLI layer.
//
// ActionableError carries what operation failed, what resource was involved,
// and suggestions for fixing it; ErrorContext is its fluent builder. The
// engine core returns plain typed errors and never depends on this package —
// decoration happens only at the CLI boundary.
package issue
