package bot

// Action is a callback button identity. The set is closed: DispatchCallback
// switches over every value and drops anything else.
type Action string

const (
	ActionVerify      Action = "gate_verify"
	ActionMenu        Action = "menu_main"
	ActionSearch      Action = "search_begin"
	ActionCategories  Action = "category_menu"
	ActionSetCategory Action = "category_set"    // payload: category name
	ActionSearchIn    Action = "category_search" // payload: category name

	ActionPrev   Action = "pager_prev"
	ActionNext   Action = "pager_next"
	ActionSelect Action = "pager_select"

	ActionAdminStats      Action = "admin_stats"
	ActionAdminBan        Action = "admin_ban"
	ActionAdminUnban      Action = "admin_unban"
	ActionAdminChannels   Action = "admin_channels"
	ActionAdminAddChan    Action = "admin_channel_add"
	ActionAdminRemoveChan Action = "admin_channel_del"
	ActionAdminBroadcast  Action = "admin_broadcast"
	ActionAdminBack       Action = "admin_back"
)

// Privileged reports whether the action belongs to the admin surface.
func (a Action) Privileged() bool {
	switch a {
	case ActionAdminStats, ActionAdminBan, ActionAdminUnban,
		ActionAdminChannels, ActionAdminAddChan, ActionAdminRemoveChan,
		ActionAdminBroadcast, ActionAdminBack:
		return true
	}
	return false
}
