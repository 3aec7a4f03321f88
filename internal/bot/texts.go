package bot

// User-facing texts. Markdown (v1) parse mode throughout.
const (
	textWelcome = "*Hi!* I search free stock media for you: photos, illustrations, vectors, videos, music and GIFs.\n\nPick an action below."
	textMenu    = "*Main menu*\n\nPick an action below."
	textHelp    = "Use the buttons to search. Tap *Search* and send me a query, or pick a category first."

	textBanned = "You are banned from using this bot."

	textGateWall     = "To use the bot, subscribe to the channels below, then tap *I subscribed*."
	textGateStillNot = "Not yet. Subscribe to every channel, then try again."

	textAskQuery     = "Send me a search query."
	textNoResults    = "Nothing found for that query. Try different words or another category."
	textSearchFailed = "The search service is unavailable right now. Try again in a minute."

	textCategoryMenu = "*Category*\n\nCurrent: %s\nPick a new one."

	textAdminMenu     = "*Admin panel*"
	textAdminChannels = "*Mandatory channels*\n\n%s"
	textAdminNoChans  = "no channels configured"

	textAskBanID    = "Send the numeric user id to ban."
	textAskUnbanID  = "Send the numeric user id to unban."
	textAskChannel  = "Send the channel handle to add, like @channel."
	textAskRemoval  = "Send the channel to remove: @handle or numeric id."
	textAskBcast    = "Send the message to broadcast to all users."

	textBadUserID      = "That is not a user id. Send digits only."
	textBadHandle      = "That is not a handle. Send it like @channel."
	textChanNotFound   = "No such channel in the list."
	textChanUnreached  = "Could not resolve that channel. Is the bot able to see it?"
	textBcastEmpty     = "Broadcast message cannot be empty."

	textBanApplied    = "User `%d` banned."
	textUnbanApplied  = "User `%d` unbanned."
	textChanAdded     = "Channel @%s added."
	textChanRemoved   = "Channel removed."

	textBcastStarted  = "Broadcasting..."
	textBcastProgress = "Broadcasting: %d processed (sent %d, failed %d)"
	textBcastSummary  = "Broadcast finished.\nRecipients: %d\nSent: %d\nFailed: %d"

	textStats = "*Statistics*\n\nUsers: %d\nSearches: %d\nMandatory channels: %d\nBanned: %d"
)
