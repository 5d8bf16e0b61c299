package main

import (
	"errors"
	"strings"
	"time"

	"jirams/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Case lifecycle statuses. Status values are normalized into this closed set
// at every write; free-text statuses are rejected.
const (
	StatusPending     = "PENDING"
	StatusFiled       = "FILED"
	StatusUnderReview = "UNDER_REVIEW"
	StatusReviewed    = "REVIEWED"
	StatusClosed      = "CLOSED"
)

// Parameters of the hearing auto-created on the transition into REVIEWED.
const (
	autoHearingLead     = 7 * 24 * time.Hour
	autoHearingLocation = "Main Court Room"
)

var (
	ErrCaseNotFound  = errors.New("case not found")
	ErrForbidden     = errors.New("forbidden")
	ErrInvalidStatus = errors.New("invalid status")
)

// normalizeStatus maps a raw status string onto the closed status set,
// case-insensitively and tolerating spaces for underscores ("under review").
func normalizeStatus(raw string) (string, bool) {
	s := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(raw), " ", "_"))
	switch s {
	case StatusPending, StatusFiled, StatusUnderReview, StatusReviewed, StatusClosed:
		return s, true
	}
	return "", false
}

// isPreReview reports whether a case in this status may still be changed or
// withdrawn by the civilian who filed it.
func isPreReview(status string) bool {
	return status == StatusPending || status == StatusFiled
}

type statusUpdate struct {
	Status       string
	AssignedToID *uint
}

// applyStatusUpdate applies an admin status/assignment update to a case and
// enacts the side effect of the lifecycle: the first transition into REVIEWED
// schedules one hearing seven days out, registered to the acting admin, with
// no judge yet.
//
// The case row is locked for the duration of the transaction so that the
// hearing-existence check and the insert cannot interleave with a concurrent
// update; at most one auto-created hearing can ever exist per case.
func applyStatusUpdate(gdb *gorm.DB, caseID uint, upd statusUpdate, actor *models.User) (*models.Case, *models.Hearing, error) {
	if !isAuthorized(actor.RoleName(), models.RoleRegistrar, models.RoleJudge, models.RoleProsecutor) {
		return nil, nil, ErrForbidden
	}

	newStatus := ""
	if upd.Status != "" {
		ns, ok := normalizeStatus(upd.Status)
		if !ok {
			return nil, nil, ErrInvalidStatus
		}
		newStatus = ns
	}

	var cs models.Case
	var created *models.Hearing
	err := gdb.Transaction(func(tx *gorm.DB) error {
		q := tx
		// sqlite has no FOR UPDATE; its single-writer lock covers the same window.
		if tx.Dialector.Name() == "postgres" {
			q = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		if err := q.First(&cs, caseID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCaseNotFound
			}
			return err
		}

		prevStatus := cs.Status
		if newStatus != "" {
			cs.Status = newStatus
		}
		if upd.AssignedToID != nil {
			cs.AssignedToID = upd.AssignedToID
		}
		if err := tx.Save(&cs).Error; err != nil {
			return err
		}

		if newStatus == StatusReviewed && prevStatus != StatusReviewed {
			var count int64
			if err := tx.Model(&models.Hearing{}).Where("case_id = ?", cs.ID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				h := models.Hearing{
					CaseID:        cs.ID,
					RegistrarID:   actor.ID,
					ScheduledDate: time.Now().Add(autoHearingLead),
					Location:      autoHearingLocation,
					Status:        models.HearingScheduled,
				}
				if err := tx.Create(&h).Error; err != nil {
					return err
				}
				created = &h
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return &cs, created, nil
}
