// file: internals/features/sessions/groups/service/group_service.go
package service

import (
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"formationhub_backend/internals/features/sessions/engine"
	groupModel "formationhub_backend/internals/features/sessions/groups/model"
	sessModel "formationhub_backend/internals/features/sessions/sessions/model"
	sessService "formationhub_backend/internals/features/sessions/sessions/service"
	traineeModel "formationhub_backend/internals/features/sessions/trainees/model"
	traineeService "formationhub_backend/internals/features/sessions/trainees/service"
	helper "formationhub_backend/internals/helpers"
)

const groupReferenceLength = 8

// GroupService owns the per-client group records: size, pricing, membership
// and status, plus the cascades into the trainee lifecycle.
type GroupService struct {
	DB        *gorm.DB
	Cfg       engine.Config
	Capacity  *sessService.CapacityService
	Lifecycle *traineeService.LifecycleService
}

func NewGroupService(db *gorm.DB, cfg engine.Config, capacity *sessService.CapacityService, lifecycle *traineeService.LifecycleService) *GroupService {
	return &GroupService{DB: db, Cfg: cfg, Capacity: capacity, Lifecycle: lifecycle}
}

/* ===============================
   Create / pricing
=================================*/

type CreateGroupInput struct {
	SessionID      uuid.UUID
	ClientID       uuid.UUID
	ContactID      *uuid.UUID
	NbPersonnes    int
	PricePerPerson float64
	Notes          datatypes.JSON
}

// CreateGroup books a client's seat block. price_total is computed here;
// caller-provided totals are ignored by construction.
func (s *GroupService) CreateGroup(in CreateGroupInput) (*groupModel.GroupModel, *engine.Error) {
	if in.NbPersonnes < 1 {
		return nil, engine.Validation("nb_personnes must be >= 1")
	}
	if in.PricePerPerson < 0 {
		return nil, engine.Validation("price_per_person must be >= 0")
	}

	var exists int64
	if err := s.DB.Model(&sessModel.SessionModel{}).
		Where("id = ?", in.SessionID).
		Count(&exists).Error; err != nil {
		return nil, engine.Persistence("failed to check session", err)
	}
	if exists == 0 {
		return nil, engine.NotFound("session not found")
	}

	grp := groupModel.GroupModel{
		ID:             uuid.New(),
		SessionID:      in.SessionID,
		ClientID:       in.ClientID,
		ContactID:      in.ContactID,
		NbPersonnes:    in.NbPersonnes,
		PricePerPerson: in.PricePerPerson,
		PriceTotal:     float64(in.NbPersonnes) * in.PricePerPerson,
		Status:         groupModel.GroupPending,
		PaymentStatus:  groupModel.PaymentPending,
		Notes:          in.Notes,
	}

	// Reference collisions are rare (31^8 space) but the unique index is the
	// guard, same as access codes.
	for attempt := 0; attempt < s.Cfg.CodeMaxRetries; attempt++ {
		ref, err := helper.AlphaCode(groupReferenceLength)
		if err != nil {
			return nil, engine.Persistence("failed to draw reference", err)
		}
		grp.Reference = ref
		if err := s.DB.Create(&grp).Error; err != nil {
			if helper.IsDuplicateKey(err) {
				continue
			}
			return nil, engine.Persistence("failed to create group", err)
		}
		return &grp, nil
	}
	return nil, engine.Conflict("could not generate a unique group reference")
}

// Resize changes the purchased seat count and recomputes price_total.
// Rejected when more trainees are already attached than the new size.
func (s *GroupService) Resize(groupID uuid.UUID, newSize int) (*groupModel.GroupModel, *engine.Error) {
	if newSize < 1 {
		return nil, engine.Validation("new size must be >= 1")
	}

	var out groupModel.GroupModel
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		grp, eerr := s.lockGroup(tx, groupID)
		if eerr != nil {
			return eerr
		}

		enrolled, eerr := s.countMembers(tx, groupID)
		if eerr != nil {
			return eerr
		}
		if enrolled > newSize {
			return engine.Validation(
				fmt.Sprintf("more trainees enrolled (%d) than new size (%d)", enrolled, newSize)).
				WithDetail("enrolled", enrolled).WithDetail("requested_size", newSize)
		}

		total := float64(newSize) * grp.PricePerPerson
		if err := tx.Model(&groupModel.GroupModel{}).
			Where("id = ?", groupID).
			Updates(map[string]any{
				"nb_personnes": newSize,
				"price_total":  total,
			}).Error; err != nil {
			return engine.Persistence("failed to resize group", err)
		}

		grp.NbPersonnes = newSize
		grp.PriceTotal = total
		out = *grp
		return nil
	})
	if err != nil {
		return nil, asEngineErr(err)
	}
	return &out, nil
}

// Reprice recomputes price_total with the existing size.
func (s *GroupService) Reprice(groupID uuid.UUID, newPricePerPerson float64) (*groupModel.GroupModel, *engine.Error) {
	if newPricePerPerson < 0 {
		return nil, engine.Validation("price_per_person must be >= 0")
	}

	var out groupModel.GroupModel
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		grp, eerr := s.lockGroup(tx, groupID)
		if eerr != nil {
			return eerr
		}

		total := float64(grp.NbPersonnes) * newPricePerPerson
		if err := tx.Model(&groupModel.GroupModel{}).
			Where("id = ?", groupID).
			Updates(map[string]any{
				"price_per_person": newPricePerPerson,
				"price_total":      total,
			}).Error; err != nil {
			return engine.Persistence("failed to reprice group", err)
		}

		grp.PricePerPerson = newPricePerPerson
		grp.PriceTotal = total
		out = *grp
		return nil
	})
	if err != nil {
		return nil, asEngineErr(err)
	}
	return &out, nil
}

/* ===============================
   Membership
=================================*/

// AddTrainee attaches a trainee to a group, creating the enrollment row if
// the trainee is not yet in the session. The group row is locked for the
// duration of the check-and-insert so two concurrent adds on a near-full
// group cannot both pass.
func (s *GroupService) AddTrainee(groupID, traineeID, sessionID uuid.UUID) (*traineeModel.EnrollmentModel, *engine.Error) {
	var out traineeModel.EnrollmentModel
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		grp, eerr := s.lockGroup(tx, groupID)
		if eerr != nil {
			return eerr
		}
		if grp.SessionID != sessionID {
			return engine.Validation("group does not belong to this session")
		}
		if grp.Status == groupModel.GroupCancelled {
			return engine.Validation("group is cancelled")
		}

		members, eerr := s.countMembers(tx, groupID)
		if eerr != nil {
			return eerr
		}
		if members >= grp.NbPersonnes {
			return engine.Conflict("group is full").
				WithDetail("current", members).WithDetail("nb_personnes", grp.NbPersonnes)
		}

		var enr traineeModel.EnrollmentModel
		err := tx.
			Where("session_id = ? AND trainee_id = ?", sessionID, traineeID).
			First(&enr).Error
		switch {
		case err == nil:
			if enr.GroupID != nil {
				return engine.Validation("trainee already belongs to a group")
			}
			if enr.TraineeStatus == traineeModel.TraineeCancelled {
				return engine.Validation("enrollment is cancelled")
			}
			// Attaching an existing enrollment does not grow the session
			// headcount, so no capacity re-check is needed here.
			if err := tx.Model(&traineeModel.EnrollmentModel{}).
				Where("id = ?", enr.ID).
				Update("group_id", groupID).Error; err != nil {
				return engine.Persistence("failed to attach trainee", err)
			}
			enr.GroupID = &groupID
			out = enr
			return nil

		case errors.Is(err, gorm.ErrRecordNotFound):
			// New session headcount: lock the session row first, so the
			// ceiling check serializes against adds through other groups and
			// against concurrent threshold shrinks, then re-validate inside
			// this same transaction.
			var sess sessModel.SessionModel
			if err := helper.LockForUpdate(tx).
				Where("id = ?", sessionID).
				First(&sess).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return engine.NotFound("session not found")
				}
				return engine.Persistence("failed to lock session", err)
			}
			add, eerr := s.Capacity.CanAdd(sessionID, 1, tx)
			if eerr != nil {
				return eerr
			}
			if !add.CanAdd {
				return engine.Conflict("session is full").
					WithDetail("remaining", add.Remaining)
			}

			out = traineeModel.EnrollmentModel{
				ID:            uuid.New(),
				SessionID:     sessionID,
				TraineeID:     traineeID,
				GroupID:       &groupID,
				TraineeStatus: traineeModel.TraineeRegistered,
			}
			if err := tx.Create(&out).Error; err != nil {
				return engine.Persistence("failed to create enrollment", err)
			}
			return nil

		default:
			return engine.Persistence("failed to load enrollment", err)
		}
	})
	if err != nil {
		return nil, asEngineErr(err)
	}
	return &out, nil
}

// RemoveTrainee detaches the trainee from their group and resets the
// lifecycle to registered.
func (s *GroupService) RemoveTrainee(traineeID, sessionID uuid.UUID) *engine.Error {
	res := s.DB.Model(&traineeModel.EnrollmentModel{}).
		Where("session_id = ? AND trainee_id = ?", sessionID, traineeID).
		Updates(map[string]any{
			"group_id":       nil,
			"trainee_status": traineeModel.TraineeRegistered,
		})
	if res.Error != nil {
		return engine.Persistence("failed to remove trainee", res.Error)
	}
	if res.RowsAffected == 0 {
		return engine.NotFound("enrollment not found")
	}
	return nil
}

/* ===============================
   Status cascades
=================================*/

// Confirm marks the group (and its payment) confirmed, then cascades: every
// member still in registered moves to confirmed. Re-running is a no-op for
// already confirmed members.
func (s *GroupService) Confirm(groupID uuid.UUID) (*groupModel.GroupModel, *engine.Error) {
	grp, eerr := s.loadGroup(groupID)
	if eerr != nil {
		return nil, eerr
	}
	if grp.Status == groupModel.GroupCancelled {
		return nil, engine.Validation("cannot confirm a cancelled group")
	}

	if err := s.DB.Model(&groupModel.GroupModel{}).
		Where("id = ?", groupID).
		Updates(map[string]any{
			"status":         groupModel.GroupConfirmed,
			"payment_status": groupModel.PaymentConfirmed,
		}).Error; err != nil {
		return nil, engine.Persistence("failed to confirm group", err)
	}
	grp.Status = groupModel.GroupConfirmed
	grp.PaymentStatus = groupModel.PaymentConfirmed

	var members []traineeModel.EnrollmentModel
	if err := s.DB.
		Where("group_id = ? AND trainee_status = ?", groupID, traineeModel.TraineeRegistered).
		Find(&members).Error; err != nil {
		return nil, engine.Persistence("failed to list group members", err)
	}
	for _, m := range members {
		if _, eerr := s.Lifecycle.SetStatus(grp.SessionID, m.TraineeID, traineeModel.TraineeConfirmed); eerr != nil {
			log.Printf("[GROUP_CONFIRM] group=%s trainee=%s: %s", groupID, m.TraineeID, eerr.Message)
		}
	}
	return grp, nil
}

// Cancel marks the group cancelled and cascades: members whose lifecycle
// still allows it move to cancelled, and every member is detached.
func (s *GroupService) Cancel(groupID uuid.UUID, reason string) (*groupModel.GroupModel, *engine.Error) {
	grp, eerr := s.loadGroup(groupID)
	if eerr != nil {
		return nil, eerr
	}
	if grp.Status == groupModel.GroupCancelled {
		return grp, nil
	}

	if err := s.DB.Model(&groupModel.GroupModel{}).
		Where("id = ?", groupID).
		Update("status", groupModel.GroupCancelled).Error; err != nil {
		return nil, engine.Persistence("failed to cancel group", err)
	}
	grp.Status = groupModel.GroupCancelled
	if reason != "" {
		log.Printf("[GROUP_CANCEL] group=%s reason=%q", groupID, reason)
	}

	cancellable := []traineeModel.TraineeStatus{
		traineeModel.TraineeRegistered,
		traineeModel.TraineeConfirmed,
		traineeModel.TraineeConvoked,
		traineeModel.TraineeInfoCompleted,
	}
	if err := s.DB.Model(&traineeModel.EnrollmentModel{}).
		Where("group_id = ? AND trainee_status IN ?", groupID, cancellable).
		Update("trainee_status", traineeModel.TraineeCancelled).Error; err != nil {
		return nil, engine.Persistence("failed to cancel members", err)
	}
	if err := s.DB.Model(&traineeModel.EnrollmentModel{}).
		Where("group_id = ?", groupID).
		Update("group_id", nil).Error; err != nil {
		return nil, engine.Persistence("failed to detach members", err)
	}
	return grp, nil
}

/* ===============================
   Read paths
=================================*/

func (s *GroupService) ListGroups(sessionID uuid.UUID, limit, offset int) ([]groupModel.GroupModel, int64, *engine.Error) {
	var total int64
	if err := s.DB.Model(&groupModel.GroupModel{}).
		Where("session_id = ?", sessionID).
		Count(&total).Error; err != nil {
		return nil, 0, engine.Persistence("failed to count groups", err)
	}

	var groups []groupModel.GroupModel
	if err := s.DB.
		Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Limit(limit).Offset(offset).
		Find(&groups).Error; err != nil {
		return nil, 0, engine.Persistence("failed to list groups", err)
	}
	return groups, total, nil
}

func (s *GroupService) ListTrainees(groupID uuid.UUID, limit, offset int) ([]traineeModel.EnrollmentModel, int64, *engine.Error) {
	var total int64
	if err := s.DB.Model(&traineeModel.EnrollmentModel{}).
		Where("group_id = ?", groupID).
		Count(&total).Error; err != nil {
		return nil, 0, engine.Persistence("failed to count trainees", err)
	}

	var members []traineeModel.EnrollmentModel
	if err := s.DB.
		Where("group_id = ?", groupID).
		Order("created_at ASC").
		Limit(limit).Offset(offset).
		Find(&members).Error; err != nil {
		return nil, 0, engine.Persistence("failed to list trainees", err)
	}
	return members, total, nil
}

/* ===============================
   Internals
=================================*/

func (s *GroupService) loadGroup(groupID uuid.UUID) (*groupModel.GroupModel, *engine.Error) {
	var grp groupModel.GroupModel
	if err := s.DB.Where("id = ?", groupID).First(&grp).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, engine.NotFound("group not found")
		}
		return nil, engine.Persistence("failed to load group", err)
	}
	return &grp, nil
}

func (s *GroupService) lockGroup(tx *gorm.DB, groupID uuid.UUID) (*groupModel.GroupModel, error) {
	var grp groupModel.GroupModel
	if err := helper.LockForUpdate(tx).
		Where("id = ?", groupID).
		First(&grp).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, engine.NotFound("group not found")
		}
		return nil, engine.Persistence("failed to load group", err)
	}
	return &grp, nil
}

func (s *GroupService) countMembers(tx *gorm.DB, groupID uuid.UUID) (int, error) {
	var count int64
	if err := tx.Model(&traineeModel.EnrollmentModel{}).
		Where("group_id = ?", groupID).
		Where("trainee_status <> ?", traineeModel.TraineeCancelled).
		Count(&count).Error; err != nil {
		return 0, engine.Persistence("failed to count members", err)
	}
	return int(count), nil
}

func asEngineErr(err error) *engine.Error {
	var ee *engine.Error
	if errors.As(err, &ee) {
		return ee
	}
	return engine.Persistence("transaction failed", err)
}
