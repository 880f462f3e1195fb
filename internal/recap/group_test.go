package recap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupByDateSumsAndDedupesGuides(t *testing.T) {
	a := slotWith(1, "A", "2024-06-01", 3)
	a.Time = "14:00"
	a.Participants = map[string]int{"Adult": 3}
	a.TotalAmount = money("90")
	a.NetProfit = money("50")
	a.Guides = []Person{{ID: 1, Name: "Anna"}}
	b := slotWith(2, "B", "2024-06-01", 5)
	b.Time = "09:00"
	b.Participants = map[string]int{"Adult": 4, "Child": 1}
	b.TotalAmount = money("150")
	b.NetProfit = money("-10")
	b.Guides = []Person{{ID: 1, Name: "Anna"}, {ID: 2, Name: "Bruno"}}
	c := slotWith(3, "A", "2024-05-31", 1)

	days := GroupByDate([]*SlotSummary{a, b, c})

	require.Len(t, days, 2)
	assert.Equal(t, "2024-05-31", days[0].Date)
	d := days[1]
	assert.Equal(t, "2024-06-01", d.Date)
	assert.Equal(t, 8, d.TotalParticipants)
	assert.Equal(t, map[string]int{"Adult": 7, "Child": 1}, d.Participants)
	assertMoney(t, "240", d.TotalAmount)
	assertMoney(t, "40", d.NetProfit)
	assert.Equal(t, 2, d.GuideCount)
	assert.Equal(t, []Person{{ID: 1, Name: "Anna"}, {ID: 2, Name: "Bruno"}}, d.Guides)
	require.Len(t, d.Slots, 2)
	assert.Equal(t, "09:00", d.Slots[0].Time)
	assert.Len(t, d.Slots[0].Guides, 2)
}

func TestGroupByDateOrdersSameTimeByTitle(t *testing.T) {
	a := slotWith(1, "A", "2024-06-01", 1)
	a.ActivityTitle = "Vatican Museums"
	b := slotWith(2, "B", "2024-06-01", 1)
	b.ActivityTitle = "Colosseum"

	days := GroupByDate([]*SlotSummary{a, b})

	require.Len(t, days, 1)
	assert.Equal(t, "Colosseum", days[0].Slots[0].ActivityTitle)
	assert.Equal(t, []Person{}, days[0].Escorts)
}

func TestGroupByDateEmpty(t *testing.T) {
	assert.Empty(t, GroupByDate(nil))
}
