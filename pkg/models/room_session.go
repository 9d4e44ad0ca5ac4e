package models

import (
	"context"

	"github.com/mynaparrot/meethub-server/pkg/domain"
	"github.com/sirupsen/logrus"
)

// StartMeeting moves the room to started. The owner must have at least one
// call minute left.
func (m *RoomModel) StartMeeting(ctx context.Context, roomId, userId string) (*domain.Room, error) {
	return m.update(ctx, roomId, func(r *domain.Room) error {
		if err := requireManager(r, userId); err != nil {
			return err
		}
		chk := m.subModel.CheckCallMinutesLimit(ctx, r.CreatedBy, 1)
		if !chk.Allowed {
			return domain.NewQuotaExceededFault(chk.Remaining, "%s", chk.Reason)
		}
		return r.Start()
	})
}

// EndMeeting ends the room, writes the history entry and charges the
// meeting duration to the owner. History and usage failures are logged;
// the room stays ended.
func (m *RoomModel) EndMeeting(ctx context.Context, roomId, userId string) (*domain.Room, error) {
	var participants int64
	var alreadyEnded bool
	r, err := m.update(ctx, roomId, func(r *domain.Room) error {
		if err := requireManager(r, userId); err != nil {
			return err
		}
		alreadyEnded = r.MeetingStatus == domain.MeetingStatusEnded
		participants = int64(len(r.Participants))
		if r.IsStreaming {
			if err := m.streaming.StopStreaming(ctx, r.Id); err != nil {
				m.logger.WithError(err).WithField("roomId", r.Id).Warnln("failed to stop stream")
			}
		}
		r.End()
		return nil
	})
	if err != nil || alreadyEnded {
		return r, err
	}

	log := m.logger.WithFields(logrus.Fields{
		"roomId":   r.Id,
		"duration": r.Duration(),
	})
	if _, err := m.historyModel.Record(ctx, r, participants); err != nil {
		log.WithError(err).Errorln("failed to record meeting history")
	}
	if d := r.Duration(); d > 0 {
		if _, err := m.subModel.TrackCallMinutes(ctx, r.CreatedBy, d); err != nil {
			log.WithError(err).Warnln("failed to track call minutes")
		}
	}
	log.Infoln("meeting ended")
	return r, nil
}

func (m *RoomModel) SetRecording(ctx context.Context, roomId, userId string, on bool) (*domain.Room, error) {
	return m.update(ctx, roomId, func(r *domain.Room) error {
		if err := requireManager(r, userId); err != nil {
			return err
		}
		if on {
			if err := m.subModel.RequireAction(ctx, r.CreatedBy, domain.ActionRecord); err != nil {
				return err
			}
		}
		return r.SetRecording(on)
	})
}

type StartStreamingReq struct {
	Url     string            `json:"url"`
	Key     string            `json:"key"`
	Options map[string]string `json:"options"`
}

// StartStreaming asks the streaming service to push the room and keeps the
// returned stream info on the room.
func (m *RoomModel) StartStreaming(ctx context.Context, roomId, userId string, req *StartStreamingReq) (*domain.Room, error) {
	return m.update(ctx, roomId, func(r *domain.Room) error {
		if err := requireManager(r, userId); err != nil {
			return err
		}
		if r.MeetingStatus != domain.MeetingStatusStarted {
			return domain.NewValidationFault("meeting is not running")
		}
		if err := m.subModel.RequireAction(ctx, r.CreatedBy, domain.ActionLiveStream); err != nil {
			return err
		}
		info, err := m.streaming.StartStreaming(ctx, r.Id, req.Url, req.Key, req.Options)
		if err != nil {
			return err
		}
		r.SetStreaming(info)
		return nil
	})
}

func (m *RoomModel) StopStreaming(ctx context.Context, roomId, userId string) (*domain.Room, error) {
	return m.update(ctx, roomId, func(r *domain.Room) error {
		if err := requireManager(r, userId); err != nil {
			return err
		}
		if !r.IsStreaming {
			return nil
		}
		if err := m.streaming.StopStreaming(ctx, r.Id); err != nil && !domain.IsNotFound(err) {
			return err
		}
		r.SetStreaming(nil)
		return nil
	})
}

func (m *RoomModel) GetStreamStatus(ctx context.Context, roomId string) (*domain.StreamInfo, error) {
	if _, err := m.GetRoom(ctx, roomId); err != nil {
		return nil, err
	}
	return m.streaming.GetStreamStatus(ctx, roomId)
}
