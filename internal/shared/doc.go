// Package shared holds cross-cutting helpers used by multiple internal
// packages, currently the test utilities under testutil.
package shared
