package domain

// UpdateKind tags the shape of an inbound update.
type UpdateKind int

const (
	UpdateUnsupported UpdateKind = iota
	UpdateCommand
	UpdateText
	UpdateVoice
)

func (k UpdateKind) String() string {
	switch k {
	case UpdateCommand:
		return "command"
	case UpdateText:
		return "text"
	case UpdateVoice:
		return "voice"
	default:
		return "unsupported"
	}
}

// Voice references an audio note hosted by the transport.
type Voice struct {
	FileID   string
	MimeType string
}

// Update is the transport-neutral view of one inbound message.
// Command/Argument are set for UpdateCommand, Body for UpdateText, Voice for UpdateVoice.
type Update struct {
	ID     int64
	Kind   UpdateKind
	UserID int64
	ChatID int64

	Command  string
	Argument string
	Body     string
	Voice    *Voice
}
