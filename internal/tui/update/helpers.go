package update

import "time"

func ClampInt(value, minValue, maxValue int) int {
	if value < minValue {
		return minValue
	}
	if value > maxValue {
		return maxValue
	}
	return value
}

// StepPeriod moves the scan period by delta and keeps it within bounds.
func StepPeriod(current, delta, minPeriod, maxPeriod time.Duration) time.Duration {
	next := current + delta
	if next < minPeriod {
		return minPeriod
	}
	if next > maxPeriod {
		return maxPeriod
	}
	return next
}

// WindowStart returns the first visible row so that cursor stays inside a
// window of size rows.
func WindowStart(cursor, total, size int) int {
	if size <= 0 || total <= size {
		return 0
	}
	cursor = ClampInt(cursor, 0, total-1)
	start := cursor - size/2
	return ClampInt(start, 0, total-size)
}

// PreferredDeviceIndex returns the index of the first name-prefix match, or
// -1 when none matched.
func PreferredDeviceIndex(preferred []bool) int {
	for i, ok := range preferred {
		if ok {
			return i
		}
	}
	return -1
}
