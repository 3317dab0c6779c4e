package algo

// ClampWindow returns the inclusive z range [lo, hi] centered on the
// best-focus index, saturated to [0, zMax-1]. The window shrinks
// asymmetrically near the stack edges; it never shifts to preserve width.
// Out-of-range requests are silently clamped, which is documented policy.
//
// Postconditions: lo <= best <= hi, 0 <= lo <= hi <= zMax-1,
// hi-lo <= 2*halfWidth.
func ClampWindow(best, halfWidth, zMax int) (lo, hi int) {
	lo = best - halfWidth
	if lo < 0 {
		lo = 0
	}
	hi = best + halfWidth
	if hi > zMax-1 {
		hi = zMax - 1
	}
	return lo, hi
}
