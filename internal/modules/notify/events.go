package notify

import (
	"context"
	"time"

	"carmarket/internal/domain"
	"carmarket/internal/repository"
)

const (
	EventRequestCreated  = "request.created"
	EventRequestResolved = "request.resolved"
)

type Event struct {
	Type      string    `json:"type"`
	RequestID int64     `json:"request_id"`
	CarID     *int64    `json:"car_id,omitempty"`
	Accepted  *bool     `json:"accepted,omitempty"`
	At        time.Time `json:"at"`
}

// Publisher fans rental lifecycle events out to the connected staff of the
// affected exhibition. Delivery is best effort.
type Publisher struct {
	hub   *Hub
	staff *repository.StaffRepository
}

func NewPublisher(hub *Hub, staff *repository.StaffRepository) *Publisher {
	return &Publisher{hub: hub, staff: staff}
}

func (p *Publisher) RequestCreated(exhibitionID int64, req *domain.RentRequest) {
	p.broadcast(exhibitionID, Event{
		Type:      EventRequestCreated,
		RequestID: req.ID,
		CarID:     req.CarID,
		At:        time.Now(),
	})
}

func (p *Publisher) RequestResolved(exhibitionID int64, req *domain.RentRequest) {
	accepted := req.IsAccepted
	p.broadcast(exhibitionID, Event{
		Type:      EventRequestResolved,
		RequestID: req.ID,
		CarID:     req.CarID,
		Accepted:  &accepted,
		At:        time.Now(),
	})
}

func (p *Publisher) broadcast(exhibitionID int64, ev Event) {
	staff, err := p.staff.ListByExhibition(context.Background(), exhibitionID)
	if err != nil {
		return
	}
	for _, st := range staff {
		_ = p.hub.Push(st.UserID, ev)
	}
}
