//go:build !linux

package cusp

// getSystemMemory returns total system memory in bytes.
// Platforms without a sysinfo probe report a fixed default.
func getSystemMemory() uint64 {
	return defaultSystemMemory
}
