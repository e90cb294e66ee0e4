// Package shared groups helpers used by several packages. The testutil
// subpackage holds the patient fixtures and a buffered slog handler for
// log assertions; it is imported only from tests.
package shared
