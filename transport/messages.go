package transport

// User- and staff-facing notification texts. Localization is a host-process
// concern; these are the plain defaults.
const (
	MsgCommandStart         = "Hi! Send me a message and it will be forwarded anonymously after moderation."
	MsgCommandInfo          = "This bot anonymously forwards your posts into the channel once they pass moderation."
	MsgModerationPending    = "Your post was sent to moderation, please wait."
	MsgModerationRejected   = "Your post was rejected by moderation."
	MsgSendSuccess          = "Your post has been sent."
	MsgSendError            = "Failed to process your post, please try again later."
	MsgUserBlocked          = "You are blocked and cannot submit posts."
	MsgSubscriptionRequired = "You need to be subscribed to the channel to submit posts."
	MsgNotRegistered        = "Please send /start first."
	MsgThrottledFmt         = "You are sending posts too often. Try again in %d seconds."

	StaffApprovedFmt = "Moderation approved a post: %s"
	StaffRejectedFmt = "Moderation rejected a post: %s"
)
