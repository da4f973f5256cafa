// Transport-facing half of the pipeline: inbound message handling, media
// group aggregation, event routing, and fan-out delivery. The actual chat
// platform is abstracted behind the Delivery interface; this package owns no
// wire format.
package transport

// Message is the platform-neutral view of one inbound chat message. Exactly
// one of Text / PhotoRef / VideoRef is expected to be meaningful; multi-part
// posts arrive as several messages sharing a MediaGroupID.
type Message struct {
	ChatID    int64 `json:"chatId"`
	UserID    int64 `json:"userId"`
	MessageID int64 `json:"messageId"`

	Text    string `json:"text,omitempty"`
	Caption string `json:"caption,omitempty"`

	MediaGroupID string `json:"mediaGroupId,omitempty"`
	PhotoRef     string `json:"photoRef,omitempty"`
	VideoRef     string `json:"videoRef,omitempty"`
}

// SourceText returns the user-authored text of the message: the body for
// plain messages, the caption for media.
func (m *Message) SourceText() string {
	if m.Text != "" {
		return m.Text
	}
	return m.Caption
}
