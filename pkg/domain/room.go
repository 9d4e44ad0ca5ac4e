package domain

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

type MeetingStatus string

const (
	MeetingStatusWaiting MeetingStatus = "waiting"
	MeetingStatusStarted MeetingStatus = "started"
	MeetingStatusEnded   MeetingStatus = "ended"

	MaxModerators = 5
)

// Now returns the current time at the precision every backend can store.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

type RoomParticipant struct {
	UserId   string    `json:"userId"`
	Name     string    `json:"name"`
	Email    string    `json:"email,omitempty"`
	JoinedAt time.Time `json:"joinedAt"`
}

type ChatMessage struct {
	Id      string    `json:"id"`
	UserId  string    `json:"userId"`
	Name    string    `json:"name"`
	Message string    `json:"message"`
	SentAt  time.Time `json:"sentAt"`
}

type Poll struct {
	Id        string           `json:"id"`
	Question  string           `json:"question"`
	Options   []string         `json:"options"`
	Votes     map[string]int64 `json:"votes"`
	CreatedBy string           `json:"createdBy"`
	CreatedAt time.Time        `json:"createdAt"`
	Closed    bool             `json:"closed"`
}

type SharedFile struct {
	Id         string    `json:"id"`
	Name       string    `json:"name"`
	Url        string    `json:"url"`
	Size       int64     `json:"size"`
	UploadedBy string    `json:"uploadedBy"`
	UploadedAt time.Time `json:"uploadedAt"`
}

type Reaction struct {
	UserId string    `json:"userId"`
	Emoji  string    `json:"emoji"`
	At     time.Time `json:"at"`
}

// StreamInfo is whatever the streaming collaborator returned when a stream started.
type StreamInfo struct {
	StreamId  string            `json:"streamId"`
	Url       string            `json:"url"`
	Status    string            `json:"status"`
	StartedAt time.Time         `json:"startedAt"`
	Options   map[string]string `json:"options,omitempty"`
}

type RoomSettings struct {
	WaitingRoomEnabled bool  `json:"waitingRoomEnabled"`
	MaxParticipants    int64 `json:"maxParticipants"`
}

// Room is a live meeting session.
type Room struct {
	Id            string            `json:"id"`
	Name          string            `json:"name"`
	CreatedBy     string            `json:"createdBy"`
	MainHost      *string           `json:"mainHost"`
	OriginalHost  *string           `json:"originalHost"`
	HostId        *string           `json:"hostId"`
	Moderators    []string          `json:"moderators"`
	Participants  []RoomParticipant `json:"participants"`
	WaitingRoom   []RoomParticipant `json:"waitingRoom"`
	Password      string            `json:"password"`
	MeetingStatus MeetingStatus     `json:"meetingStatus"`
	IsRecording   bool              `json:"isRecording"`
	IsStreaming   bool              `json:"isStreaming"`
	StreamingInfo *StreamInfo       `json:"streamingInfo"`
	Chat          []ChatMessage     `json:"chat"`
	Polls         []Poll            `json:"polls"`
	Files         []SharedFile      `json:"files"`
	Reactions     []Reaction        `json:"reactions"`
	Settings      RoomSettings      `json:"settings"`
	CreatedAt     time.Time         `json:"createdAt"`
	StartedAt     *time.Time        `json:"startedAt"`
	EndedAt       *time.Time        `json:"endedAt"`
	ExpiresAt     *time.Time        `json:"expiresAt"`
}

type NewRoomOptions struct {
	Name      string
	CreatedBy string
	Password  string
	Settings  RoomSettings
	TTL       time.Duration
}

// NewRoom builds a room in the waiting state. An empty password is replaced
// by a generated one; a supplied one must pass ValidatePassword.
func NewRoom(opts NewRoomOptions) (*Room, error) {
	password, err := ResolvePassword(opts.Password)
	if err != nil {
		return nil, err
	}

	createdAt := Now()
	r := &Room{
		Id:            uuid.NewString(),
		Name:          opts.Name,
		CreatedBy:     opts.CreatedBy,
		Password:      password,
		MeetingStatus: MeetingStatusWaiting,
		Settings:      opts.Settings,
		CreatedAt:     createdAt,
	}
	if opts.TTL > 0 {
		e := createdAt.Add(opts.TTL)
		r.ExpiresAt = &e
	}
	r.Normalize()

	return r, nil
}

// Normalize replaces absent collections with empty ones.
func (r *Room) Normalize() {
	if r.Moderators == nil {
		r.Moderators = []string{}
	}
	if r.Participants == nil {
		r.Participants = []RoomParticipant{}
	}
	if r.WaitingRoom == nil {
		r.WaitingRoom = []RoomParticipant{}
	}
	if r.Chat == nil {
		r.Chat = []ChatMessage{}
	}
	if r.Polls == nil {
		r.Polls = []Poll{}
	}
	if r.Files == nil {
		r.Files = []SharedFile{}
	}
	if r.Reactions == nil {
		r.Reactions = []Reaction{}
	}
	if r.MeetingStatus == "" {
		r.MeetingStatus = MeetingStatusWaiting
	}
}

func (r *Room) IsExpired(now time.Time) bool {
	return r.ExpiresAt != nil && r.ExpiresAt.Before(now)
}

func (r *Room) CheckPassword(password string) bool {
	return r.Password == password
}

func (r *Room) IsHost(userId string) bool {
	return r.MainHost != nil && *r.MainHost == userId
}

func (r *Room) IsModerator(userId string) bool {
	return r.IsHost(userId) || slices.Contains(r.Moderators, userId)
}

func (r *Room) participantIndex(list []RoomParticipant, userId string) int {
	return slices.IndexFunc(list, func(p RoomParticipant) bool {
		return p.UserId == userId
	})
}

// Join adds the user to the room. The first user to join becomes the host.
// It returns true when the user was placed in the waiting room instead.
func (r *Room) Join(p RoomParticipant) (bool, error) {
	if r.MeetingStatus == MeetingStatusEnded {
		return false, NewValidationFault("meeting has already ended")
	}
	if r.participantIndex(r.Participants, p.UserId) >= 0 {
		return false, nil
	}
	if p.JoinedAt.IsZero() {
		p.JoinedAt = Now()
	}

	if r.MainHost == nil {
		host := p.UserId
		r.MainHost = &host
		r.OriginalHost = &host
		r.HostId = &host
		r.Participants = append(r.Participants, p)
		return false, nil
	}

	if r.Settings.MaxParticipants > 0 && int64(len(r.Participants)) >= r.Settings.MaxParticipants {
		return false, NewQuotaExceededFault(0, "room is full")
	}

	if r.Settings.WaitingRoomEnabled && !r.IsModerator(p.UserId) && (r.OriginalHost == nil || *r.OriginalHost != p.UserId) {
		if r.participantIndex(r.WaitingRoom, p.UserId) < 0 {
			r.WaitingRoom = append(r.WaitingRoom, p)
		}
		return true, nil
	}

	r.Participants = append(r.Participants, p)
	return false, nil
}

// Admit moves a user from the waiting room into the meeting.
func (r *Room) Admit(userId string) error {
	i := r.participantIndex(r.WaitingRoom, userId)
	if i < 0 {
		return NewNotFoundFault("user %s is not in the waiting room", userId)
	}
	p := r.WaitingRoom[i]
	r.WaitingRoom = slices.Delete(r.WaitingRoom, i, i+1)
	r.Participants = append(r.Participants, p)
	return nil
}

// Reject drops a user from the waiting room.
func (r *Room) Reject(userId string) error {
	i := r.participantIndex(r.WaitingRoom, userId)
	if i < 0 {
		return NewNotFoundFault("user %s is not in the waiting room", userId)
	}
	r.WaitingRoom = slices.Delete(r.WaitingRoom, i, i+1)
	return nil
}

// Leave removes the user. When the host leaves, the next moderator present
// (or the longest present participant) takes over.
func (r *Room) Leave(userId string) {
	if i := r.participantIndex(r.WaitingRoom, userId); i >= 0 {
		r.WaitingRoom = slices.Delete(r.WaitingRoom, i, i+1)
	}
	i := r.participantIndex(r.Participants, userId)
	if i < 0 {
		return
	}
	r.Participants = slices.Delete(r.Participants, i, i+1)

	if !r.IsHost(userId) || len(r.Participants) == 0 {
		return
	}
	next := r.Participants[0].UserId
	for _, p := range r.Participants {
		if slices.Contains(r.Moderators, p.UserId) {
			next = p.UserId
			break
		}
	}
	r.MainHost = &next
	r.HostId = &next
}

// TransferHost hands the host role to a participant.
func (r *Room) TransferHost(userId string) error {
	if r.participantIndex(r.Participants, userId) < 0 {
		return NewNotFoundFault("user %s is not in the room", userId)
	}
	r.MainHost = &userId
	r.HostId = &userId
	return nil
}

func (r *Room) AddModerator(userId string) error {
	if slices.Contains(r.Moderators, userId) {
		return nil
	}
	if len(r.Moderators) >= MaxModerators {
		return NewValidationFault("a room can have at most %d moderators", MaxModerators)
	}
	r.Moderators = append(r.Moderators, userId)
	return nil
}

func (r *Room) RemoveModerator(userId string) {
	r.Moderators = slices.DeleteFunc(r.Moderators, func(m string) bool {
		return m == userId
	})
}

func (r *Room) Start() error {
	switch r.MeetingStatus {
	case MeetingStatusStarted:
		return nil
	case MeetingStatusEnded:
		return NewValidationFault("meeting has already ended")
	}
	now := Now()
	r.MeetingStatus = MeetingStatusStarted
	r.StartedAt = &now
	return nil
}

func (r *Room) End() {
	if r.MeetingStatus == MeetingStatusEnded {
		return
	}
	now := Now()
	r.MeetingStatus = MeetingStatusEnded
	r.EndedAt = &now
	r.IsRecording = false
	r.IsStreaming = false
	r.StreamingInfo = nil
}

// Duration is the time the meeting ran, rounded to whole minutes.
func (r *Room) Duration() int64 {
	if r.StartedAt == nil {
		return 0
	}
	end := Now()
	if r.EndedAt != nil {
		end = *r.EndedAt
	}
	return int64(end.Sub(*r.StartedAt).Round(time.Minute) / time.Minute)
}

// SetRecording toggles recording; only a started meeting can record.
func (r *Room) SetRecording(on bool) error {
	if on && r.MeetingStatus != MeetingStatusStarted {
		return NewValidationFault("meeting is not running")
	}
	r.IsRecording = on
	return nil
}

func (r *Room) SetStreaming(info *StreamInfo) {
	r.IsStreaming = info != nil
	r.StreamingInfo = info
}

func (r *Room) AppendChat(userId, name, message string) (ChatMessage, error) {
	if message == "" {
		return ChatMessage{}, NewValidationFault("message is empty")
	}
	m := ChatMessage{
		Id:      uuid.NewString(),
		UserId:  userId,
		Name:    name,
		Message: message,
		SentAt:  Now(),
	}
	r.Chat = append(r.Chat, m)
	return m, nil
}

func (r *Room) AddPoll(createdBy, question string, options []string) (Poll, error) {
	if question == "" || len(options) < 2 {
		return Poll{}, NewValidationFault("a poll needs a question and at least two options")
	}
	p := Poll{
		Id:        uuid.NewString(),
		Question:  question,
		Options:   options,
		Votes:     map[string]int64{},
		CreatedBy: createdBy,
		CreatedAt: Now(),
	}
	r.Polls = append(r.Polls, p)
	return p, nil
}

func (r *Room) VotePoll(pollId, option string) error {
	i := slices.IndexFunc(r.Polls, func(p Poll) bool {
		return p.Id == pollId
	})
	if i < 0 {
		return NewNotFoundFault("poll %s not found", pollId)
	}
	p := &r.Polls[i]
	if p.Closed {
		return NewValidationFault("poll is closed")
	}
	if !slices.Contains(p.Options, option) {
		return NewValidationFault("unknown poll option %q", option)
	}
	if p.Votes == nil {
		p.Votes = map[string]int64{}
	}
	p.Votes[option]++
	return nil
}

func (r *Room) AddFile(f SharedFile) SharedFile {
	if f.Id == "" {
		f.Id = uuid.NewString()
	}
	if f.UploadedAt.IsZero() {
		f.UploadedAt = Now()
	}
	r.Files = append(r.Files, f)
	return f
}

func (r *Room) AddReaction(userId, emoji string) Reaction {
	re := Reaction{UserId: userId, Emoji: emoji, At: Now()}
	r.Reactions = append(r.Reactions, re)
	return re
}
