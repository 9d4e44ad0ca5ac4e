package models

import (
	"context"

	"github.com/mynaparrot/meethub-server/pkg/config"
	"github.com/mynaparrot/meethub-server/pkg/domain"
	"github.com/sirupsen/logrus"
)

type JoinRoomReq struct {
	RoomId   string `json:"roomId"`
	UserId   string `json:"-"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type JoinRoomRes struct {
	Room    *domain.Room `json:"room"`
	Waiting bool         `json:"waiting"`
}

// JoinRoom checks the password and the owner's participant allowance, then
// adds the user. The first user to join becomes host.
func (m *RoomModel) JoinRoom(ctx context.Context, req *JoinRoomReq) (*JoinRoomRes, error) {
	res := new(JoinRoomRes)
	r, err := m.update(ctx, req.RoomId, func(r *domain.Room) error {
		if !r.CheckPassword(req.Password) {
			return domain.NewValidationFault(config.InvalidRoomPassword)
		}
		chk := m.subModel.CheckParticipantsLimit(ctx, r.CreatedBy, int64(len(r.Participants))+1)
		if !chk.Allowed {
			return domain.NewQuotaExceededFault(chk.Remaining, "%s", chk.Reason)
		}
		waiting, err := r.Join(domain.RoomParticipant{
			UserId: req.UserId,
			Name:   req.Name,
			Email:  req.Email,
		})
		res.Waiting = waiting
		return err
	})
	if err != nil {
		return nil, err
	}
	res.Room = r

	m.logger.WithFields(logrus.Fields{
		"roomId":  r.Id,
		"userId":  req.UserId,
		"waiting": res.Waiting,
	}).Debugln("user joined room")
	return res, nil
}

func (m *RoomModel) AdmitParticipant(ctx context.Context, roomId, requestedBy, userId string) (*domain.Room, error) {
	return m.update(ctx, roomId, func(r *domain.Room) error {
		if err := requireManager(r, requestedBy); err != nil {
			return err
		}
		return r.Admit(userId)
	})
}

func (m *RoomModel) RejectParticipant(ctx context.Context, roomId, requestedBy, userId string) (*domain.Room, error) {
	return m.update(ctx, roomId, func(r *domain.Room) error {
		if err := requireManager(r, requestedBy); err != nil {
			return err
		}
		return r.Reject(userId)
	})
}

func (m *RoomModel) LeaveRoom(ctx context.Context, roomId, userId string) (*domain.Room, error) {
	return m.update(ctx, roomId, func(r *domain.Room) error {
		r.Leave(userId)
		return nil
	})
}

func (m *RoomModel) TransferHost(ctx context.Context, roomId, requestedBy, userId string) (*domain.Room, error) {
	return m.update(ctx, roomId, func(r *domain.Room) error {
		if !r.IsHost(requestedBy) {
			return domain.NewForbiddenFault(config.OnlyHostCanRequest)
		}
		return r.TransferHost(userId)
	})
}

func (m *RoomModel) AddModerator(ctx context.Context, roomId, requestedBy, userId string) (*domain.Room, error) {
	return m.update(ctx, roomId, func(r *domain.Room) error {
		if err := requireManager(r, requestedBy); err != nil {
			return err
		}
		return r.AddModerator(userId)
	})
}

func (m *RoomModel) RemoveModerator(ctx context.Context, roomId, requestedBy, userId string) (*domain.Room, error) {
	return m.update(ctx, roomId, func(r *domain.Room) error {
		if err := requireManager(r, requestedBy); err != nil {
			return err
		}
		r.RemoveModerator(userId)
		return nil
	})
}
