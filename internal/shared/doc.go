// Package shared holds cross-cutting helpers that do not belong to any
// single domain package.
//
// The testutil subpackage provides slog capture utilities used by tests
// that need to assert on structured log output.
package shared
