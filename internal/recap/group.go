package recap

import (
	"sort"

	"github.com/shopspring/decimal"
)

// sortSlots orders slots by date, time, activity title and key.
func sortSlots(slots []*SlotSummary) {
	sort.SliceStable(slots, func(i, j int) bool {
		a, b := slots[i], slots[j]
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		if a.Time != b.Time {
			return a.Time < b.Time
		}
		if a.ActivityTitle != b.ActivityTitle {
			return a.ActivityTitle < b.ActivityTitle
		}
		return a.Key < b.Key
	})
}

func newTotals() Totals {
	return Totals{
		Participants:  map[string]int{},
		TotalAmount:   decimal.Zero,
		GuideCost:     decimal.Zero,
		EscortCost:    decimal.Zero,
		HeadphoneCost: decimal.Zero,
		PrintingCost:  decimal.Zero,
		VoucherCost:   decimal.Zero,
		TotalCost:     decimal.Zero,
		NetProfit:     decimal.Zero,
	}
}

func (t *Totals) addSlot(s *SlotSummary) {
	t.BookingCount += s.BookingCount
	t.TotalParticipants += s.TotalParticipants
	for name, n := range s.Participants {
		t.Participants[name] += n
	}
	t.TotalAmount = t.TotalAmount.Add(s.TotalAmount)
	t.GuideCost = t.GuideCost.Add(s.GuideCost)
	t.EscortCost = t.EscortCost.Add(s.EscortCost)
	t.HeadphoneCost = t.HeadphoneCost.Add(s.HeadphoneCost)
	t.PrintingCost = t.PrintingCost.Add(s.PrintingCost)
	t.VoucherCost = t.VoucherCost.Add(s.VoucherCost)
	t.TotalCost = t.TotalCost.Add(s.TotalCost)
	t.NetProfit = t.NetProfit.Add(s.NetProfit)
}

// people accumulates persons deduplicated by id in first-seen order.
type people struct {
	seen map[int64]struct{}
	list []Person
}

func (p *people) add(list []Person) {
	if p.seen == nil {
		p.seen = map[int64]struct{}{}
		p.list = []Person{}
	}
	for _, person := range list {
		if _, ok := p.seen[person.ID]; ok {
			continue
		}
		p.seen[person.ID] = struct{}{}
		p.list = append(p.list, person)
	}
}

// GroupByDate sorts the slots and groups them by date. Each group sums the
// additive fields of its slots; guides and escorts are counted once per
// person per day. Days come out in ascending date order.
func GroupByDate(slots []*SlotSummary) []DateGroup {
	sortSlots(slots)
	days := []DateGroup{}
	var guides, escorts people
	for _, s := range slots {
		if len(days) == 0 || days[len(days)-1].Date != s.Date {
			closeDay(days, &guides, &escorts)
			days = append(days, DateGroup{Date: s.Date, Totals: newTotals(), Slots: []SlotSummary{}})
			guides, escorts = people{}, people{}
		}
		d := &days[len(days)-1]
		d.addSlot(s)
		d.Slots = append(d.Slots, *s)
		guides.add(s.Guides)
		escorts.add(s.Escorts)
	}
	closeDay(days, &guides, &escorts)
	return days
}

func closeDay(days []DateGroup, guides, escorts *people) {
	if len(days) == 0 {
		return
	}
	guides.add(nil)
	escorts.add(nil)
	d := &days[len(days)-1]
	d.Guides, d.Escorts = guides.list, escorts.list
	d.GuideCount, d.EscortCount = len(guides.list), len(escorts.list)
}

// periodTotals sums every day and counts distinct guides and escorts over
// the whole period.
func periodTotals(days []DateGroup) Totals {
	t := newTotals()
	var guides, escorts people
	guides.add(nil)
	escorts.add(nil)
	for i := range days {
		for j := range days[i].Slots {
			t.addSlot(&days[i].Slots[j])
		}
		guides.add(days[i].Guides)
		escorts.add(days[i].Escorts)
	}
	t.GuideCount, t.EscortCount = len(guides.list), len(escorts.list)
	return t
}
