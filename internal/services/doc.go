// Package services implements the read side of the serve command: health
// checks over the output directories and access to the run summary and the
// rendered charts. Handlers in transport/http depend on these through small
// interfaces so they can be tested with mocks.
package services
