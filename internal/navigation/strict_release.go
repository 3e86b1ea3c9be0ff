//go:build !switchscan_debug

package navigation

const debugBuild = false
