package history

// Finalize sets the end of the latest run, the one with the highest RunID, to sentinel.
// intervals must be one entity's output of Collapse, in run order.
func Finalize(intervals []Interval, sentinel Date) []Interval {
	if len(intervals) == 0 {
		return intervals
	}
	intervals[len(intervals)-1].ValidTo = sentinel
	return intervals
}
