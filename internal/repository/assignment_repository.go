package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/tour-ops-dashboard/internal/model"
)

// AssignmentRepo rewrites the staff assigned to a slot.
type AssignmentRepo struct {
	db *sql.DB
}

// NewAssignmentRepo constructs an AssignmentRepo over db.
func NewAssignmentRepo(db *sql.DB) *AssignmentRepo {
	return &AssignmentRepo{db: db}
}

// Slot returns the availability row addressed by id, or ErrNotFound.
func (r *AssignmentRepo) Slot(ctx context.Context, availabilityID int64) (model.Availability, error) {
	var a model.Availability
	err := r.db.QueryRowContext(ctx,
		`SELECT aa.id, aa.activity_id, COALESCE(a.title, ''), DATE_FORMAT(aa.local_date, '%Y-%m-%d'),
		        TIME_FORMAT(aa.local_time, '%H:%i:%s'), aa.vacancy_available, aa.vacancy_sold, aa.status
		 FROM activity_availability aa
		 LEFT JOIN activities a ON a.activity_id = aa.activity_id
		 WHERE aa.id = ?`, availabilityID).
		Scan(&a.ID, &a.ActivityID, &a.ActivityTitle, &a.LocalDate, &a.LocalTime, &a.VacancyAvailable, &a.VacancySold, &a.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return a, ErrNotFound
	}
	return a, err
}

// ReplaceGuides swaps the guide assignments of a slot for guides in one
// transaction. An unknown slot, guide or service group yields ErrNotFound
// and leaves the previous assignments in place.
func (r *AssignmentRepo) ReplaceGuides(ctx context.Context, availabilityID int64, guides []model.GuideAssignment) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	if err = lockSlot(ctx, tx, availabilityID); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM guide_assignments WHERE availability_id = ?`, availabilityID); err != nil {
		return err
	}
	for _, g := range guides {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO guide_assignments (availability_id, guide_id, cost_override, service_group_id) VALUES (?, ?, ?, ?)`,
			availabilityID, g.GuideID, g.CostOverride, g.ServiceGroupID); err != nil {
			return translate(err)
		}
	}
	return nil
}

// ReplaceEscorts swaps the escort assignments of a slot in one transaction.
func (r *AssignmentRepo) ReplaceEscorts(ctx context.Context, availabilityID int64, escorts []model.EscortAssignment) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	if err = lockSlot(ctx, tx, availabilityID); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM escort_assignments WHERE availability_id = ?`, availabilityID); err != nil {
		return err
	}
	for _, e := range escorts {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO escort_assignments (availability_id, escort_id, cost_override) VALUES (?, ?, ?)`,
			availabilityID, e.EscortID, e.CostOverride); err != nil {
			return translate(err)
		}
	}
	return nil
}

// lockSlot takes a row lock on the availability so concurrent replaces of
// the same slot serialize.
func lockSlot(ctx context.Context, tx *sql.Tx, availabilityID int64) error {
	var id int64
	err := tx.QueryRowContext(ctx, `SELECT id FROM activity_availability WHERE id = ? FOR UPDATE`, availabilityID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
