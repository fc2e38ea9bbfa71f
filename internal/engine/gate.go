package engine

// Sentinel is written ahead of a zero on complete writes. Hosts start every
// score at zero and drop unchanged values, so a real zero would otherwise
// never reach a viewer whose row was fresh.
const Sentinel = 1337

// Decide returns the values to set on a score, in order, given its current
// value (known is false for a score never set) and the candidate.
//
// Complete writes of zero always go through the sentinel. Everything else
// is written only when it changes the score. Partial writes never use the
// sentinel.
func Decide(current int, known bool, candidate int, complete bool) []int {
	if complete && candidate == 0 {
		return []int{Sentinel, 0}
	}
	if !known || current != candidate {
		return []int{candidate}
	}
	return nil
}
