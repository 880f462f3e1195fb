package repository

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/tour-ops-dashboard/internal/model"
	"github.com/iliyamo/tour-ops-dashboard/internal/recap"
)

// RecapRepo reads the tables the recap aggregates. It implements
// recap.Source; every relation is flattened here so the aggregator only
// sees typed single-shape rows.
type RecapRepo struct {
	db *sql.DB
}

var _ recap.Source = (*RecapRepo)(nil)

// NewRecapRepo constructs a RecapRepo over db.
func NewRecapRepo(db *sql.DB) *RecapRepo {
	return &RecapRepo{db: db}
}

// queryRows runs q and scans every row with scan.
func queryRows[T any](ctx context.Context, db *sql.DB, q string, args []any, scan func(*sql.Rows) (T, error)) ([]T, error) {
	rows, err := db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// slotScope restricts a query joined with activity_availability aa to the
// period and activities of q.
func slotScope(q recap.Query) (string, []any) {
	where, args := inFilter("aa.activity_id", q.ActivityIDs, []any{q.From, q.To})
	return " WHERE aa.local_date BETWEEN ? AND ?" + where, args
}

func nullDecimalPtr(d decimal.NullDecimal) *decimal.Decimal {
	if !d.Valid {
		return nil
	}
	v := d.Decimal
	return &v
}

// Bookings returns every activity booking row starting inside the period,
// duplicates included, with its parent booking and participant lines.
func (r *RecapRepo) Bookings(ctx context.Context, q recap.Query) ([]model.Booking, error) {
	where, args := inFilter("ab.activity_id", q.ActivityIDs, []any{q.From, dayAfter(q.To)})
	query := `SELECT ab.activity_booking_id, ab.booking_id, ab.activity_id, COALESCE(ab.product_title, ''),
	                 DATE_FORMAT(ab.start_date_time, '%Y-%m-%dT%H:%i:%s'), ab.status,
	                 ab.total_price, COALESCE(ab.net_price, 0), ab.created_at,
	                 b.status, b.creation_date
	          FROM activity_bookings ab
	          LEFT JOIN bookings b ON b.booking_id = ab.booking_id
	          WHERE ab.start_date_time >= ? AND ab.start_date_time < ?` + where + `
	          ORDER BY ab.created_at, ab.id`
	out, err := queryRows(ctx, r.db, query, args, func(rows *sql.Rows) (model.Booking, error) {
		var (
			b             model.Booking
			parentStatus  sql.NullString
			parentCreated sql.NullTime
		)
		err := rows.Scan(&b.ActivityBookingID, &b.BookingID, &b.ActivityID, &b.ProductTitle,
			&b.StartDateTime, &b.Status, &b.TotalPrice, &b.NetPrice, &b.CreatedAt,
			&parentStatus, &parentCreated)
		if parentStatus.Valid {
			b.ParentStatus = parentStatus.String
		}
		if parentCreated.Valid {
			t := parentCreated.Time
			b.ParentCreatedAt = &t
		}
		return b, err
	})
	if err != nil || len(out) == 0 {
		return out, err
	}

	lines, err := r.participantLines(ctx, out)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Participants = lines[out[i].ActivityBookingID]
	}
	return out, nil
}

// participantLines fetches the pricing category lines of the given
// bookings by id list, keyed by activity_booking_id.
func (r *RecapRepo) participantLines(ctx context.Context, bookings []model.Booking) (map[int64][]model.PricingCategoryBooking, error) {
	seen := make(map[int64]bool, len(bookings))
	var ids []int64
	for _, b := range bookings {
		if !seen[b.ActivityBookingID] {
			seen[b.ActivityBookingID] = true
			ids = append(ids, b.ActivityBookingID)
		}
	}

	out := make(map[int64][]model.PricingCategoryBooking, len(ids))
	for _, part := range chunks(ids, maxInList) {
		where, args := inFilter("activity_booking_id", part, nil)
		query := `SELECT id, activity_booking_id, pricing_category_id, COALESCE(booked_title, ''), quantity, age,
		                 COALESCE(passenger_first_name, ''), COALESCE(passenger_last_name, '')
		          FROM pricing_category_bookings
		          WHERE 1=1` + where + `
		          ORDER BY id`
		lines, err := queryRows(ctx, r.db, query, args, func(rows *sql.Rows) (model.PricingCategoryBooking, error) {
			var (
				l   model.PricingCategoryBooking
				age sql.NullInt32
			)
			err := rows.Scan(&l.ID, &l.ActivityBookingID, &l.PricingCategoryID, &l.BookedTitle, &l.Quantity, &age,
				&l.PassengerFirstName, &l.PassengerLastName)
			if age.Valid {
				a := int(age.Int32)
				l.Age = &a
			}
			return l, err
		})
		if err != nil {
			return nil, err
		}
		for _, l := range lines {
			out[l.ActivityBookingID] = append(out[l.ActivityBookingID], l)
		}
	}
	return out, nil
}

// Availabilities returns the slots of the period.
func (r *RecapRepo) Availabilities(ctx context.Context, q recap.Query) ([]model.Availability, error) {
	where, args := slotScope(q)
	query := `SELECT aa.id, aa.activity_id, COALESCE(a.title, ''),
	                 DATE_FORMAT(aa.local_date, '%Y-%m-%d'), TIME_FORMAT(aa.local_time, '%H:%i:%s'),
	                 aa.vacancy_available, aa.vacancy_sold, aa.status
	          FROM activity_availability aa
	          LEFT JOIN activities a ON a.activity_id = aa.activity_id` + where + `
	          ORDER BY aa.local_date, aa.local_time, aa.id`
	return queryRows(ctx, r.db, query, args, func(rows *sql.Rows) (model.Availability, error) {
		var a model.Availability
		err := rows.Scan(&a.ID, &a.ActivityID, &a.ActivityTitle, &a.LocalDate, &a.LocalTime,
			&a.VacancyAvailable, &a.VacancySold, &a.Status)
		return a, err
	})
}

func (r *RecapRepo) GuideAssignments(ctx context.Context, q recap.Query) ([]model.GuideAssignment, error) {
	where, args := slotScope(q)
	query := `SELECT ga.id, ga.availability_id, ga.guide_id, COALESCE(g.name, ''), ga.cost_override, ga.service_group_id
	          FROM guide_assignments ga
	          JOIN activity_availability aa ON aa.id = ga.availability_id
	          LEFT JOIN guides g ON g.id = ga.guide_id` + where + `
	          ORDER BY ga.id`
	return queryRows(ctx, r.db, query, args, func(rows *sql.Rows) (model.GuideAssignment, error) {
		var (
			g        model.GuideAssignment
			override decimal.NullDecimal
			group    sql.NullInt64
		)
		err := rows.Scan(&g.ID, &g.AvailabilityID, &g.GuideID, &g.GuideName, &override, &group)
		g.CostOverride = nullDecimalPtr(override)
		if group.Valid {
			id := group.Int64
			g.ServiceGroupID = &id
		}
		return g, err
	})
}

func (r *RecapRepo) EscortAssignments(ctx context.Context, q recap.Query) ([]model.EscortAssignment, error) {
	where, args := slotScope(q)
	query := `SELECT ea.id, ea.availability_id, ea.escort_id, COALESCE(e.name, ''), ea.cost_override
	          FROM escort_assignments ea
	          JOIN activity_availability aa ON aa.id = ea.availability_id
	          LEFT JOIN escorts e ON e.id = ea.escort_id` + where + `
	          ORDER BY ea.id`
	return queryRows(ctx, r.db, query, args, func(rows *sql.Rows) (model.EscortAssignment, error) {
		var (
			e        model.EscortAssignment
			override decimal.NullDecimal
		)
		err := rows.Scan(&e.ID, &e.AvailabilityID, &e.EscortID, &e.EscortName, &override)
		e.CostOverride = nullDecimalPtr(override)
		return e, err
	})
}

func (r *RecapRepo) HeadphoneAssignments(ctx context.Context, q recap.Query) ([]model.ResourceAssignment, error) {
	return r.resourceAssignments(ctx, q, "headphone_assignments", "headphone_id")
}

func (r *RecapRepo) PrintingAssignments(ctx context.Context, q recap.Query) ([]model.ResourceAssignment, error) {
	return r.resourceAssignments(ctx, q, "printing_assignments", "printing_id")
}

// resourceAssignments reads one of the per-participant supplier tables.
// table and column are constants of this file, never user input.
func (r *RecapRepo) resourceAssignments(ctx context.Context, q recap.Query, table, column string) ([]model.ResourceAssignment, error) {
	where, args := slotScope(q)
	query := `SELECT x.id, x.availability_id, x.` + column + `, x.cost_override
	          FROM ` + table + ` x
	          JOIN activity_availability aa ON aa.id = x.availability_id` + where + `
	          ORDER BY x.id`
	return queryRows(ctx, r.db, query, args, func(rows *sql.Rows) (model.ResourceAssignment, error) {
		var (
			a        model.ResourceAssignment
			override decimal.NullDecimal
		)
		err := rows.Scan(&a.ID, &a.AvailabilityID, &a.ResourceID, &override)
		a.CostOverride = nullDecimalPtr(override)
		return a, err
	})
}

// ServiceGroups returns the groups referenced by guide assignments of the
// period.
func (r *RecapRepo) ServiceGroups(ctx context.Context, q recap.Query) ([]model.ServiceGroup, error) {
	where, args := slotScope(q)
	query := `SELECT DISTINCT sg.id, sg.primary_assignment_id
	          FROM service_groups sg
	          JOIN guide_assignments ga ON ga.service_group_id = sg.id
	          JOIN activity_availability aa ON aa.id = ga.availability_id` + where + `
	          ORDER BY sg.id`
	return queryRows(ctx, r.db, query, args, func(rows *sql.Rows) (model.ServiceGroup, error) {
		var (
			g       model.ServiceGroup
			primary sql.NullInt64
		)
		err := rows.Scan(&g.ID, &primary)
		g.PrimaryAssignmentID = primary.Int64
		return g, err
	})
}

func (r *RecapRepo) SpecialDateCosts(ctx context.Context, q recap.Query) ([]model.SpecialDateCost, error) {
	where, args := inFilter("activity_id", q.ActivityIDs, []any{q.From, q.To})
	query := `SELECT activity_id, DATE_FORMAT(cost_date, '%Y-%m-%d'), amount
	          FROM guide_special_date_costs
	          WHERE cost_date BETWEEN ? AND ?` + where + `
	          ORDER BY id`
	return queryRows(ctx, r.db, query, args, func(rows *sql.Rows) (model.SpecialDateCost, error) {
		var c model.SpecialDateCost
		err := rows.Scan(&c.ActivityID, &c.Date, &c.Amount)
		return c, err
	})
}

// SeasonalCosts returns the seasonal costs of every season overlapping the
// period, earliest season first.
func (r *RecapRepo) SeasonalCosts(ctx context.Context, q recap.Query) ([]model.SeasonalCost, error) {
	where, args := inFilter("sc.activity_id", q.ActivityIDs, []any{q.To, q.From})
	query := `SELECT s.id, sc.activity_id, DATE_FORMAT(s.start_date, '%Y-%m-%d'), DATE_FORMAT(s.end_date, '%Y-%m-%d'), sc.amount
	          FROM guide_seasonal_costs sc
	          JOIN seasons s ON s.id = sc.season_id
	          WHERE s.start_date <= ? AND s.end_date >= ?` + where + `
	          ORDER BY s.start_date, s.id`
	return queryRows(ctx, r.db, query, args, func(rows *sql.Rows) (model.SeasonalCost, error) {
		var c model.SeasonalCost
		err := rows.Scan(&c.SeasonID, &c.ActivityID, &c.StartDate, &c.EndDate, &c.Amount)
		return c, err
	})
}

func (r *RecapRepo) ActivityCosts(ctx context.Context, q recap.Query) ([]model.ActivityCost, error) {
	where, args := inFilter("activity_id", q.ActivityIDs, nil)
	query := `SELECT activity_id, amount FROM activity_guide_costs WHERE 1=1` + where + ` ORDER BY id`
	return queryRows(ctx, r.db, query, args, func(rows *sql.Rows) (model.ActivityCost, error) {
		var c model.ActivityCost
		err := rows.Scan(&c.ActivityID, &c.Amount)
		return c, err
	})
}

func (r *RecapRepo) GuideActivityCosts(ctx context.Context, q recap.Query) ([]model.GuideActivityCost, error) {
	where, args := inFilter("activity_id", q.ActivityIDs, nil)
	query := `SELECT activity_id, guide_id, amount FROM guide_activity_costs WHERE 1=1` + where + ` ORDER BY id`
	return queryRows(ctx, r.db, query, args, func(rows *sql.Rows) (model.GuideActivityCost, error) {
		var c model.GuideActivityCost
		err := rows.Scan(&c.ActivityID, &c.GuideID, &c.Amount)
		return c, err
	})
}

// ResourceRates returns every escort, headphone and printing rate.
func (r *RecapRepo) ResourceRates(ctx context.Context) ([]model.ResourceRate, error) {
	return queryRows(ctx, r.db, `SELECT kind, resource_id, amount FROM resource_rates ORDER BY id`, nil,
		func(rows *sql.Rows) (model.ResourceRate, error) {
			var rate model.ResourceRate
			err := rows.Scan(&rate.Kind, &rate.ResourceID, &rate.Amount)
			return rate, err
		})
}

// Vouchers returns the vouchers of the period's slots with their tickets.
func (r *RecapRepo) Vouchers(ctx context.Context, q recap.Query) ([]model.Voucher, error) {
	where, args := slotScope(q)
	query := `SELECT v.id, v.availability_id, COALESCE(v.code, '')
	          FROM vouchers v
	          JOIN activity_availability aa ON aa.id = v.availability_id` + where + `
	          ORDER BY v.id`
	out, err := queryRows(ctx, r.db, query, args, func(rows *sql.Rows) (model.Voucher, error) {
		var v model.Voucher
		err := rows.Scan(&v.ID, &v.AvailabilityID, &v.Code)
		return v, err
	})
	if err != nil || len(out) == 0 {
		return out, err
	}

	ids := make([]int64, len(out))
	pos := make(map[int64]int, len(out))
	for i, v := range out {
		ids[i] = v.ID
		pos[v.ID] = i
	}
	for _, part := range chunks(ids, maxInList) {
		where, args := inFilter("voucher_id", part, nil)
		tickets, err := queryRows(ctx, r.db,
			`SELECT id, voucher_id, COALESCE(ticket_type, ''), price FROM voucher_tickets WHERE 1=1`+where+` ORDER BY id`,
			args, func(rows *sql.Rows) (model.Ticket, error) {
				var t model.Ticket
				err := rows.Scan(&t.ID, &t.VoucherID, &t.Type, &t.Price)
				return t, err
			})
		if err != nil {
			return nil, err
		}
		for _, t := range tickets {
			i := pos[t.VoucherID]
			out[i].Tickets = append(out[i].Tickets, t)
		}
	}
	return out, nil
}

// HistoricalCategories returns every pricing category title ever booked
// for the activities, or for all activities when the list is empty.
func (r *RecapRepo) HistoricalCategories(ctx context.Context, activityIDs []string) ([]string, error) {
	where, args := inFilter("ab.activity_id", activityIDs, nil)
	query := `SELECT DISTINCT pcb.booked_title
	          FROM pricing_category_bookings pcb
	          JOIN activity_bookings ab ON ab.activity_booking_id = pcb.activity_booking_id
	          WHERE pcb.booked_title IS NOT NULL AND pcb.booked_title <> ''` + where + `
	          ORDER BY pcb.booked_title`
	return queryRows(ctx, r.db, query, args, func(rows *sql.Rows) (string, error) {
		var s string
		err := rows.Scan(&s)
		return s, err
	})
}
