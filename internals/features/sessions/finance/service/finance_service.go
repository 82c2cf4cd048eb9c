// file: internals/features/sessions/finance/service/finance_service.go
package service

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"formationhub_backend/internals/features/sessions/engine"
	groupModel "formationhub_backend/internals/features/sessions/groups/model"
	sessModel "formationhub_backend/internals/features/sessions/sessions/model"
	traineeModel "formationhub_backend/internals/features/sessions/trainees/model"
)

// FinanceService derives revenue views from group state. Pure read path: it
// never mutates anything.
type FinanceService struct {
	DB *gorm.DB
}

func NewFinanceService(db *gorm.DB) *FinanceService { return &FinanceService{DB: db} }

/* ===============================
   Revenue buckets
=================================*/

// Revenue buckets every group's price_total by (status, payment_status).
// Invariant: Total == Paid + Pending + Cancelled, and Confirmed == Paid +
// Pending (pending groups count as pending revenue until confirmed).
type Revenue struct {
	Total     float64 `json:"total"`
	Confirmed float64 `json:"confirmed"`
	Paid      float64 `json:"paid"`
	Pending   float64 `json:"pending"`
	Cancelled float64 `json:"cancelled"`
}

func bucket(groups []groupModel.GroupModel) Revenue {
	var r Revenue
	for _, g := range groups {
		r.Total += g.PriceTotal
		switch g.Status {
		case groupModel.GroupCancelled:
			r.Cancelled += g.PriceTotal
		case groupModel.GroupConfirmed:
			r.Confirmed += g.PriceTotal
			if g.PaymentStatus == groupModel.PaymentConfirmed {
				r.Paid += g.PriceTotal
			} else {
				r.Pending += g.PriceTotal
			}
		default:
			r.Pending += g.PriceTotal
		}
	}
	return r
}

func (s *FinanceService) SessionRevenue(sessionID uuid.UUID) (Revenue, *engine.Error) {
	groups, eerr := s.groups(sessionID, nil)
	if eerr != nil {
		return Revenue{}, eerr
	}
	return bucket(groups), nil
}

func (s *FinanceService) ClientRevenue(sessionID, clientID uuid.UUID) (Revenue, *engine.Error) {
	groups, eerr := s.groups(sessionID, &clientID)
	if eerr != nil {
		return Revenue{}, eerr
	}
	return bucket(groups), nil
}

/* ===============================
   Stats
=================================*/

type Stats struct {
	AvgPricePerPerson float64 `json:"avg_price_per_person"`
	FillRate          float64 `json:"fill_rate"`
}

// Stats: average confirmed price per head and fill rate against capacity.
// Both guarded against a zero denominator.
func (s *FinanceService) Stats(sessionID uuid.UUID) (Stats, *engine.Error) {
	sess, eerr := s.session(sessionID)
	if eerr != nil {
		return Stats{}, eerr
	}

	var confirmedHeadcount int64
	if err := s.DB.Model(&traineeModel.EnrollmentModel{}).
		Where("session_id = ?", sessionID).
		Where("trainee_status = ?", traineeModel.TraineeConfirmed).
		Count(&confirmedHeadcount).Error; err != nil {
		return Stats{}, engine.Persistence("failed to count confirmed trainees", err)
	}

	rev, eerr := s.SessionRevenue(sessionID)
	if eerr != nil {
		return Stats{}, eerr
	}

	var st Stats
	if confirmedHeadcount > 0 {
		st.AvgPricePerPerson = rev.Confirmed / float64(confirmedHeadcount)
	}
	if sess.MaxParticipants > 0 {
		st.FillRate = float64(confirmedHeadcount) / float64(sess.MaxParticipants) * 100
	}
	return st, nil
}

/* ===============================
   Report
=================================*/

type ClientBreakdown struct {
	ClientID    uuid.UUID `json:"client_id"`
	Groups      int       `json:"groups"`
	NbPersonnes int       `json:"nb_personnes"`
	Revenue     Revenue   `json:"revenue"`
}

type Report struct {
	SessionID uuid.UUID         `json:"session_id"`
	Title     string            `json:"title"`
	StartDate time.Time         `json:"start_date"`
	Revenue   Revenue           `json:"revenue"`
	Stats     Stats             `json:"stats"`
	ByClient  []ClientBreakdown `json:"by_client"`
}

// Report: session metadata + global revenue + per-client breakdown over all
// non-cancelled groups.
func (s *FinanceService) Report(sessionID uuid.UUID) (Report, *engine.Error) {
	sess, eerr := s.session(sessionID)
	if eerr != nil {
		return Report{}, eerr
	}

	rev, eerr := s.SessionRevenue(sessionID)
	if eerr != nil {
		return Report{}, eerr
	}
	st, eerr := s.Stats(sessionID)
	if eerr != nil {
		return Report{}, eerr
	}

	groups, eerr := s.groups(sessionID, nil)
	if eerr != nil {
		return Report{}, eerr
	}

	byClient := map[uuid.UUID]*ClientBreakdown{}
	var order []uuid.UUID
	for _, g := range groups {
		if g.Status == groupModel.GroupCancelled {
			continue
		}
		cb, ok := byClient[g.ClientID]
		if !ok {
			cb = &ClientBreakdown{ClientID: g.ClientID}
			byClient[g.ClientID] = cb
			order = append(order, g.ClientID)
		}
		cb.Groups++
		cb.NbPersonnes += g.NbPersonnes
		cb.Revenue = bucket(groupsOfClient(groups, g.ClientID))
	}

	report := Report{
		SessionID: sess.ID,
		Title:     sess.Title,
		StartDate: sess.StartDate,
		Revenue:   rev,
		Stats:     st,
	}
	for _, clientID := range order {
		report.ByClient = append(report.ByClient, *byClient[clientID])
	}
	return report, nil
}

/* ===============================
   Internals
=================================*/

func groupsOfClient(groups []groupModel.GroupModel, clientID uuid.UUID) []groupModel.GroupModel {
	var out []groupModel.GroupModel
	for _, g := range groups {
		if g.ClientID == clientID && g.Status != groupModel.GroupCancelled {
			out = append(out, g)
		}
	}
	return out
}

func (s *FinanceService) session(sessionID uuid.UUID) (*sessModel.SessionModel, *engine.Error) {
	var sess sessModel.SessionModel
	if err := s.DB.Where("id = ?", sessionID).First(&sess).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, engine.NotFound("session not found")
		}
		return nil, engine.Persistence("failed to load session", err)
	}
	return &sess, nil
}

func (s *FinanceService) groups(sessionID uuid.UUID, clientID *uuid.UUID) ([]groupModel.GroupModel, *engine.Error) {
	q := s.DB.Where("session_id = ?", sessionID)
	if clientID != nil {
		q = q.Where("client_id = ?", *clientID)
	}
	var groups []groupModel.GroupModel
	if err := q.Order("created_at ASC").Find(&groups).Error; err != nil {
		return nil, engine.Persistence("failed to list groups", err)
	}
	return groups, nil
}
