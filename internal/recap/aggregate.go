package recap

// Aggregate runs the whole recap pipeline over one snapshot: booking
// deduplication, slot construction, category resolution, cost resolution
// and date grouping. The same input always yields the same Recap.
func Aggregate(in Input, policies Policies) Recap {
	bookings := dropCancelled(DedupeBookings(in.Bookings))
	byKey := BuildSlots(in.Availabilities, bookings, policies)

	slots := make([]*SlotSummary, 0, len(byKey))
	for _, s := range byKey {
		slots = append(slots, s)
	}
	sortSlots(slots)

	categories := ResolveCategories(slots, in.HistoricalCategories)
	ApplyCosts(slots, in)
	days := GroupByDate(slots)

	return Recap{
		Categories: categories,
		Days:       days,
		Totals:     periodTotals(days),
	}
}
