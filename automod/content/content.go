// Content payload types for user submissions: plain text, a single media
// item, or a debounced media group.
package content

type MediaKind string

const (
	MediaPhoto = MediaKind("photo")
	MediaVideo = MediaKind("video")
)

// Content is the closed set of payload shapes a logical post can carry.
// Consumers switch over the concrete type; there is exactly one variant set.
type Content interface {
	isContent()
}

type TextItem struct {
	Text string
}

// MediaItem references a single photo or video by its transport-level file
// ref. Within a group, only the first item carries the caption.
type MediaItem struct {
	Kind    MediaKind
	Ref     string
	Caption string
}

// MediaGroup is an ordered batch of media items belonging to one logical
// post. Item order is arrival order.
type MediaGroup struct {
	Items []MediaItem
}

func (TextItem) isContent()   {}
func (MediaItem) isContent()  {}
func (MediaGroup) isContent() {}
