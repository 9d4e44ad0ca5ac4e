package models

import (
	"context"

	"github.com/mynaparrot/meethub-server/pkg/config"
	"github.com/mynaparrot/meethub-server/pkg/domain"
	"github.com/mynaparrot/meethub-server/pkg/services/collab"
	"github.com/mynaparrot/meethub-server/pkg/services/storage"
	"github.com/sirupsen/logrus"
)

type RoomModel struct {
	app          *config.AppConfig
	ds           *storage.Facade
	subModel     *SubscriptionModel
	historyModel *HistoryModel
	streaming    collab.Streaming
	logger       *logrus.Entry
}

func NewRoomModel(app *config.AppConfig, ds *storage.Facade, subModel *SubscriptionModel, historyModel *HistoryModel, streaming collab.Streaming, logger *logrus.Logger) *RoomModel {
	return &RoomModel{
		app:          app,
		ds:           ds,
		subModel:     subModel,
		historyModel: historyModel,
		streaming:    streaming,
		logger:       logger.WithField("model", "room"),
	}
}

type CreateRoomReq struct {
	CreatedBy          string `json:"-"`
	Name               string `json:"name"`
	Password           string `json:"password"`
	WaitingRoomEnabled *bool  `json:"waitingRoomEnabled"`
	MaxParticipants    int64  `json:"maxParticipants"`
}

func (m *RoomModel) CreateRoom(ctx context.Context, req *CreateRoomReq) (*domain.Room, error) {
	settings := domain.RoomSettings{
		WaitingRoomEnabled: m.app.RoomSettings.WaitingRoomEnabled,
		MaxParticipants:    req.MaxParticipants,
	}
	if req.WaitingRoomEnabled != nil {
		settings.WaitingRoomEnabled = *req.WaitingRoomEnabled
	}

	// the room cap can never go above the owner's plan
	limit := m.subModel.GetUserSubscription(ctx, req.CreatedBy).MaxParticipants
	if limit != domain.Unlimited && (settings.MaxParticipants <= 0 || settings.MaxParticipants > limit) {
		settings.MaxParticipants = limit
	}

	r, err := domain.NewRoom(domain.NewRoomOptions{
		Name:      req.Name,
		CreatedBy: req.CreatedBy,
		Password:  req.Password,
		Settings:  settings,
		TTL:       m.app.RoomSettings.DefaultTTL,
	})
	if err != nil {
		return nil, err
	}
	if err := m.ds.SaveRoom(ctx, r); err != nil {
		return nil, err
	}

	m.logger.WithFields(logrus.Fields{
		"roomId":    r.Id,
		"createdBy": r.CreatedBy,
	}).Infoln("room created")
	return r, nil
}

func (m *RoomModel) GetRoom(ctx context.Context, roomId string) (*domain.Room, error) {
	r := m.ds.GetRoom(ctx, roomId)
	if r == nil {
		return nil, domain.NewNotFoundFault(config.RequestedRoomNotExist)
	}
	return r, nil
}

func (m *RoomModel) GetAllRooms(ctx context.Context) []*domain.Room {
	return m.ds.GetAllRooms(ctx)
}

// DeleteRoom removes the room only. A scheduled meeting pointing at it is
// left untouched.
func (m *RoomModel) DeleteRoom(ctx context.Context, roomId string) error {
	if m.ds.GetRoom(ctx, roomId) == nil {
		return domain.NewNotFoundFault(config.RequestedRoomNotExist)
	}
	if err := m.ds.DeleteRoom(ctx, roomId); err != nil {
		return err
	}
	m.logger.WithField("roomId", roomId).Infoln("room deleted")
	return nil
}

// update loads the room, applies fn and stores the result. Nothing is
// written when fn fails.
func (m *RoomModel) update(ctx context.Context, roomId string, fn func(r *domain.Room) error) (*domain.Room, error) {
	r, err := m.GetRoom(ctx, roomId)
	if err != nil {
		return nil, err
	}
	if err := fn(r); err != nil {
		return nil, err
	}
	if err := m.ds.SaveRoom(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// canManage is true for the current host, a moderator or the creator.
func canManage(r *domain.Room, userId string) bool {
	return r.IsModerator(userId) || r.CreatedBy == userId
}

func requireManager(r *domain.Room, userId string) error {
	if !canManage(r, userId) {
		return domain.NewForbiddenFault(config.OnlyHostCanRequest)
	}
	return nil
}
