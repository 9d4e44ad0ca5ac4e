package config

const (
	RequestedRoomNotExist    = "requested room does not exist"
	RequestedMeetingNotExist = "requested scheduled meeting does not exist"
	InvalidRoomPassword      = "invalid room password"
	OnlyAdminCanRequest      = "only admin can send this request"
	OnlyHostCanRequest       = "only the host or a moderator can send this request"
	UserIdRequired           = "user id is required"
	InvalidPlan              = "invalid subscription plan"
	CallMinutesExceeded      = "call minutes limit exceeded"
	ParticipantsExceeded     = "participants limit exceeded"
	FeatureNotInPlan         = "feature is not available on the current plan"
	StorageUnavailable       = "storage backend is unavailable"
)
