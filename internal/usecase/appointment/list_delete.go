package appointment

import (
	"context"

	"github.com/classicdental/dental-scheduler/internal/audit"
	domain "github.com/classicdental/dental-scheduler/internal/domain/appointment"
	"github.com/classicdental/dental-scheduler/internal/httperr"
	"github.com/classicdental/dental-scheduler/internal/models"
)

type ListAppointments struct {
	repo domain.Repository
}

func NewListAppointments(repo domain.Repository) *ListAppointments {
	return &ListAppointments{repo: repo}
}

func (uc *ListAppointments) Execute(ctx context.Context, f domain.ListFilter) ([]models.Appointment, error) {
	return uc.repo.List(ctx, f)
}

type GetAppointment struct {
	repo domain.Repository
}

func NewGetAppointment(repo domain.Repository) *GetAppointment {
	return &GetAppointment{repo: repo}
}

func (uc *GetAppointment) Execute(ctx context.Context, id uint) (*models.Appointment, error) {
	return getAppointment(ctx, uc.repo, id)
}

type DeleteAppointment struct {
	repo  domain.Repository
	audit Auditor
}

func NewDeleteAppointment(repo domain.Repository, audit Auditor) *DeleteAppointment {
	return &DeleteAppointment{repo: repo, audit: audit}
}

func (uc *DeleteAppointment) Execute(ctx context.Context, actorID, id uint) error {
	ok, err := uc.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return httperr.ErrBusiness(domain.ErrCodeNotFound)
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   actor(actorID),
		Action:   "appointment_deleted",
		Entity:   "appointment",
		EntityID: audit.Uint(id),
	})
	return nil
}
