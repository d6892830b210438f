package services

// Day-to-destination allocation: decides which destination each itinerary day
// belongs to, so the matching hotel and weather records can be attached to it.

// usableAllocation reports whether the allocation vector can drive the
// assignment: one entry per destination with a positive total.
func usableAllocation(alloc []int, destCount int) bool {
	if len(alloc) != destCount {
		return false
	}
	sum := 0
	for _, a := range alloc {
		if a > 0 {
			sum += a
		}
	}
	return sum > 0
}

// DestinationIndexForDay maps a 1-based day number to a destination index.
//
// With a usable allocation vector the day is assigned to the first destination
// whose cumulative day count reaches it; days beyond the vector's total fall
// to the last destination. Otherwise days are split evenly via
// floor((day-1)*destCount/totalDays), so any remainder days land on earlier
// destinations.
func DestinationIndexForDay(dayNumber, totalDays int, alloc []int, destCount int) int {
	if destCount <= 0 {
		return -1
	}

	if usableAllocation(alloc, destCount) {
		cumulative := 0
		for i, a := range alloc {
			if a > 0 {
				cumulative += a
			}
			if dayNumber <= cumulative {
				return i
			}
		}
		return destCount - 1
	}

	if totalDays <= 0 {
		return 0
	}
	idx := (dayNumber - 1) * destCount / totalDays
	if idx > destCount-1 {
		idx = destCount - 1
	}
	if idx < 0 {
		idx = 0
	}
	return idx
}

// AssignDestinations returns the destination label for each day index.
// An empty destination list yields nil: callers simply omit the hotel and
// weather augmentation for those days.
func AssignDestinations(totalDays int, destinations []string, alloc []int) []string {
	if len(destinations) == 0 || totalDays <= 0 {
		return nil
	}

	assigned := make([]string, totalDays)
	for d := 1; d <= totalDays; d++ {
		assigned[d-1] = destinations[DestinationIndexForDay(d, totalDays, alloc, len(destinations))]
	}
	return assigned
}
