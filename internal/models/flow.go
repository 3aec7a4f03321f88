package models

// FlowState marks what free-text input the conversation expects next from a
// user. It is persisted on the session record so an in-flight flow survives
// process restarts and horizontally scaled handlers.
type FlowState string

const (
	// FlowNone means no free-text input is pending.
	FlowNone FlowState = ""
	// FlowAwaitingQuery means the next text message is a search query.
	FlowAwaitingQuery FlowState = "awaiting_query"

	FlowAwaitingBan           FlowState = "awaiting_ban"
	FlowAwaitingUnban         FlowState = "awaiting_unban"
	FlowAwaitingAddChannel    FlowState = "awaiting_add_channel"
	FlowAwaitingRemoveChannel FlowState = "awaiting_remove_channel"
	FlowAwaitingBroadcast     FlowState = "awaiting_broadcast"
)

// AdminInput reports whether the state expects privileged admin input.
func (f FlowState) AdminInput() bool {
	switch f {
	case FlowAwaitingBan, FlowAwaitingUnban, FlowAwaitingAddChannel,
		FlowAwaitingRemoveChannel, FlowAwaitingBroadcast:
		return true
	}
	return false
}
