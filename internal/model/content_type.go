package model

import "strings"

// ContentType is the closed set of item kinds the corpus can hold.
type ContentType string

const (
	ChatMessage      ContentType = "CHAT_MESSAGE"
	Email            ContentType = "EMAIL"
	ConversationNote ContentType = "CONVERSATION_NOTE"
	StatusChange     ContentType = "CONVERSATION_STATUS_CHANGE"
	PhoneCall        ContentType = "PHONE_CALL"
	TopicChange      ContentType = "TOPIC_CHANGE"
	SurveyAnswer     ContentType = "SURVEY_ANSWER"
	UnknownContent   ContentType = "UNKNOWN"
)

// ContentTypeFilterAll is the planner sentinel meaning "no filter".
const ContentTypeFilterAll = "all"

// ParseContentType normalizes a raw tag to a known content type.
// Unrecognized tags map to UnknownContent, never an error.
func ParseContentType(raw string) ContentType {
	switch ContentType(strings.ToUpper(strings.TrimSpace(raw))) {
	case ChatMessage:
		return ChatMessage
	case Email:
		return Email
	case ConversationNote:
		return ConversationNote
	case StatusChange:
		return StatusChange
	case PhoneCall:
		return PhoneCall
	case TopicChange:
		return TopicChange
	case SurveyAnswer:
		return SurveyAnswer
	default:
		return UnknownContent
	}
}

// ChatLikeContentTypes is the fallback filter used when query planning fails.
func ChatLikeContentTypes() []ContentType {
	return []ContentType{ChatMessage, Email, ConversationNote}
}
