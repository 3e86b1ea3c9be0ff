//go:build switchscan_debug

package navigation

// Debug builds panic on cursor invariant violations.
const debugBuild = true
