package optimizer

// Assemble derives the aggregate statistics of an itinerary from its stops
// and legs. Pure function of its inputs.
func Assemble(stops []ScheduledStop, legs []Leg) Statistics {
	var stats Statistics

	for i := range legs {
		stats.TotalDistanceKm += legs[i].DistanceKm
		stats.TotalTravelMinutes += legs[i].TravelMinutes
	}
	for i := range stops {
		stats.TotalVisitMinutes += float64(stops[i].DurationMinutes)
	}

	stats.TotalJourneyMinutes = stats.TotalTravelMinutes + stats.TotalVisitMinutes
	if stats.TotalJourneyMinutes > 0 {
		stats.Efficiency = stats.TotalVisitMinutes / stats.TotalJourneyMinutes
	}

	return stats
}
