package models

import (
	"context"
	"slices"

	"github.com/mynaparrot/meethub-server/pkg/domain"
)

func requireParticipant(r *domain.Room, userId string) error {
	if !slices.ContainsFunc(r.Participants, func(p domain.RoomParticipant) bool {
		return p.UserId == userId
	}) {
		return domain.NewForbiddenFault("user %s is not in the room", userId)
	}
	return nil
}

func (m *RoomModel) SendChatMessage(ctx context.Context, roomId, userId, name, message string) (domain.ChatMessage, error) {
	var msg domain.ChatMessage
	_, err := m.update(ctx, roomId, func(r *domain.Room) error {
		if err := requireParticipant(r, userId); err != nil {
			return err
		}
		var err error
		msg, err = r.AppendChat(userId, name, message)
		return err
	})
	return msg, err
}

func (m *RoomModel) CreatePoll(ctx context.Context, roomId, userId, question string, options []string) (domain.Poll, error) {
	var poll domain.Poll
	_, err := m.update(ctx, roomId, func(r *domain.Room) error {
		if err := requireManager(r, userId); err != nil {
			return err
		}
		var err error
		poll, err = r.AddPoll(userId, question, options)
		return err
	})
	return poll, err
}

func (m *RoomModel) VotePoll(ctx context.Context, roomId, userId, pollId, option string) error {
	_, err := m.update(ctx, roomId, func(r *domain.Room) error {
		if err := requireParticipant(r, userId); err != nil {
			return err
		}
		return r.VotePoll(pollId, option)
	})
	return err
}

func (m *RoomModel) ShareFile(ctx context.Context, roomId, userId string, f domain.SharedFile) (domain.SharedFile, error) {
	if f.Name == "" || f.Url == "" {
		return domain.SharedFile{}, domain.NewValidationFault("file name and url are required")
	}
	_, err := m.update(ctx, roomId, func(r *domain.Room) error {
		if err := requireParticipant(r, userId); err != nil {
			return err
		}
		f.UploadedBy = userId
		f = r.AddFile(f)
		return nil
	})
	return f, err
}

func (m *RoomModel) React(ctx context.Context, roomId, userId, emoji string) (domain.Reaction, error) {
	var re domain.Reaction
	if emoji == "" {
		return re, domain.NewValidationFault("emoji is required")
	}
	_, err := m.update(ctx, roomId, func(r *domain.Room) error {
		if err := requireParticipant(r, userId); err != nil {
			return err
		}
		re = r.AddReaction(userId, emoji)
		return nil
	})
	return re, err
}
