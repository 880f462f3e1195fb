package recap

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/tour-ops-dashboard/internal/model"
)

// CostRules resolves the guide cost of an activity on a date. Lookups fall
// through special-date cost, seasonal cost, legacy activity cost and legacy
// guide cost; the first rule present wins whatever its value. Nothing
// configured means zero.
type CostRules struct {
	special  map[string]decimal.Decimal
	seasons  []model.SeasonalCost
	activity map[string]decimal.Decimal
	guide    map[string]decimal.Decimal
}

// NewCostRules indexes the rule tables. Seasons are matched in the given
// order; for duplicated special-date, activity or guide rows the first one
// wins.
func NewCostRules(special []model.SpecialDateCost, seasons []model.SeasonalCost, activity []model.ActivityCost, guide []model.GuideActivityCost) CostRules {
	r := CostRules{
		special:  make(map[string]decimal.Decimal, len(special)),
		seasons:  seasons,
		activity: make(map[string]decimal.Decimal, len(activity)),
		guide:    make(map[string]decimal.Decimal, len(guide)),
	}
	for _, c := range special {
		k := c.ActivityID + "|" + c.Date
		if _, ok := r.special[k]; !ok {
			r.special[k] = c.Amount
		}
	}
	for _, c := range activity {
		if _, ok := r.activity[c.ActivityID]; !ok {
			r.activity[c.ActivityID] = c.Amount
		}
	}
	for _, c := range guide {
		k := guideKey(c.ActivityID, c.GuideID)
		if _, ok := r.guide[k]; !ok {
			r.guide[k] = c.Amount
		}
	}
	return r
}

func guideKey(activityID string, guideID int64) string {
	return activityID + "|" + strconv.FormatInt(guideID, 10)
}

// GuideCost resolves the cost of a guide working an activity on date.
func (r CostRules) GuideCost(activityID, date string, guideID int64) decimal.Decimal {
	if v, ok := r.special[activityID+"|"+date]; ok {
		return v
	}
	for _, s := range r.seasons {
		if s.ActivityID == activityID && s.StartDate <= date && date <= s.EndDate {
			return s.Amount
		}
	}
	if v, ok := r.activity[activityID]; ok {
		return v
	}
	if v, ok := r.guide[guideKey(activityID, guideID)]; ok {
		return v
	}
	return decimal.Zero
}

// rates holds resource rates by kind and resource id.
type rates map[string]map[int64]decimal.Decimal

func newRates(rows []model.ResourceRate) rates {
	r := rates{}
	for _, row := range rows {
		kind := strings.ToUpper(row.Kind)
		if r[kind] == nil {
			r[kind] = map[int64]decimal.Decimal{}
		}
		if _, ok := r[kind][row.ResourceID]; !ok {
			r[kind][row.ResourceID] = row.Amount
		}
	}
	return r
}

func (r rates) of(kind string, id int64) decimal.Decimal {
	if v, ok := r[kind][id]; ok {
		return v
	}
	return decimal.Zero
}

// ApplyCosts fills the five cost components, total cost and net profit of
// every slot. Only slots backed by an availability receive costs.
// Escort, headphone and printing costs are charged only to slots with
// participants; guide cost and voucher cost are always charged.
func ApplyCosts(slots []*SlotSummary, in Input) {
	byAvail := make(map[int64]*SlotSummary, len(slots))
	for _, s := range slots {
		if s.AvailabilityID != 0 {
			byAvail[s.AvailabilityID] = s
		}
		for _, id := range s.availabilityIDs {
			byAvail[id] = s
		}
	}

	applyGuideCosts(byAvail, in)
	applyEscortCosts(byAvail, in)
	rt := newRates(in.Rates)
	applyUnitCosts(byAvail, in.Headphones, rt, model.ResourceHeadphone, func(s *SlotSummary, v decimal.Decimal) {
		s.HeadphoneCost = s.HeadphoneCost.Add(v)
	})
	applyUnitCosts(byAvail, in.Printing, rt, model.ResourcePrinting, func(s *SlotSummary, v decimal.Decimal) {
		s.PrintingCost = s.PrintingCost.Add(v)
	})
	applyVoucherCosts(byAvail, in.Vouchers)

	for _, s := range slots {
		s.TotalCost = s.GuideCost.Add(s.EscortCost).Add(s.HeadphoneCost).Add(s.PrintingCost).Add(s.VoucherCost)
		s.NetProfit = s.TotalAmount.Sub(s.TotalCost)
	}
}

// primaryAssignments returns, per service group, the assignment that
// carries the group's cost: the designated primary, else the lowest
// assignment id seen in the group.
func primaryAssignments(guides []model.GuideAssignment, groups []model.ServiceGroup) map[int64]int64 {
	primary := map[int64]int64{}
	for _, g := range groups {
		if g.PrimaryAssignmentID != 0 {
			primary[g.ID] = g.PrimaryAssignmentID
		}
	}
	fallback := map[int64]int64{}
	for _, a := range guides {
		if a.ServiceGroupID == nil {
			continue
		}
		gid := *a.ServiceGroupID
		if cur, ok := fallback[gid]; !ok || a.ID < cur {
			fallback[gid] = a.ID
		}
	}
	for gid, id := range fallback {
		if _, ok := primary[gid]; !ok {
			primary[gid] = id
		}
	}
	return primary
}

func applyGuideCosts(byAvail map[int64]*SlotSummary, in Input) {
	rules := NewCostRules(in.SpecialDateCosts, in.SeasonalCosts, in.ActivityCosts, in.GuideActivityCosts)
	primary := primaryAssignments(in.Guides, in.ServiceGroups)
	for _, a := range in.Guides {
		s := byAvail[a.AvailabilityID]
		if s == nil {
			continue
		}
		s.Guides = append(s.Guides, Person{ID: a.GuideID, Name: a.GuideName})
		if a.ServiceGroupID != nil && primary[*a.ServiceGroupID] != a.ID {
			continue
		}
		cost := rules.GuideCost(s.ActivityID, s.Date, a.GuideID)
		if a.CostOverride != nil {
			cost = *a.CostOverride
		}
		s.GuideCost = s.GuideCost.Add(cost)
	}
}

func applyEscortCosts(byAvail map[int64]*SlotSummary, in Input) {
	// Distinct working slots per escort and date, among slots with participants.
	worked := map[string]map[string]struct{}{}
	for _, a := range in.Escorts {
		s := byAvail[a.AvailabilityID]
		if s == nil || s.ActualParticipants == 0 {
			continue
		}
		k := strconv.FormatInt(a.EscortID, 10) + "|" + s.Date
		if worked[k] == nil {
			worked[k] = map[string]struct{}{}
		}
		worked[k][s.Key] = struct{}{}
	}

	rt := newRates(in.Rates)
	seen := map[string]bool{}
	for _, a := range in.Escorts {
		s := byAvail[a.AvailabilityID]
		if s == nil {
			continue
		}
		// An escort is listed and charged once per slot.
		pair := strconv.FormatInt(a.EscortID, 10) + "|" + s.Key
		if seen[pair] {
			continue
		}
		seen[pair] = true
		s.Escorts = append(s.Escorts, Person{ID: a.EscortID, Name: a.EscortName})
		if s.ActualParticipants == 0 {
			continue
		}
		if a.CostOverride != nil {
			s.EscortCost = s.EscortCost.Add(*a.CostOverride)
			continue
		}
		n := len(worked[strconv.FormatInt(a.EscortID, 10)+"|"+s.Date])
		rate := rt.of(model.ResourceEscort, a.EscortID)
		s.EscortCost = s.EscortCost.Add(rate.DivRound(decimal.NewFromInt(int64(n)), 2))
	}
}

func applyUnitCosts(byAvail map[int64]*SlotSummary, assignments []model.ResourceAssignment, rt rates, kind string, add func(*SlotSummary, decimal.Decimal)) {
	for _, a := range assignments {
		s := byAvail[a.AvailabilityID]
		if s == nil || s.ActualParticipants == 0 {
			continue
		}
		if a.CostOverride != nil {
			add(s, *a.CostOverride)
			continue
		}
		add(s, rt.of(kind, a.ResourceID).Mul(decimal.NewFromInt(int64(s.ActualParticipants))))
	}
}

func applyVoucherCosts(byAvail map[int64]*SlotSummary, vouchers []model.Voucher) {
	withVouchers := map[*SlotSummary]bool{}
	for _, v := range vouchers {
		s := byAvail[v.AvailabilityID]
		if s == nil {
			continue
		}
		withVouchers[s] = true
		for _, t := range v.Tickets {
			s.VoucherCost = s.VoucherCost.Add(t.Price)
			if !strings.Contains(strings.ToLower(t.Type), "guide") {
				s.VoucherTickets++
			}
		}
	}
	for s := range withVouchers {
		s.VoucherMismatch = s.VoucherTickets != s.TotalParticipants
	}
}
