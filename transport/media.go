package transport

import (
	"github.com/veil-social/veil/automod/content"
)

// InputMedia is the platform-level representation of one attachment inside a
// grouped send.
type InputMedia struct {
	Kind    content.MediaKind
	Media   string
	Caption string
}

func WrapMedia(item content.MediaItem) InputMedia {
	return InputMedia{
		Kind:    item.Kind,
		Media:   item.Ref,
		Caption: item.Caption,
	}
}

// WrapMediaGroup converts a media group into platform media objects,
// preserving item order. Captions pass through as-is: assembly guarantees
// only the first item carries one.
func WrapMediaGroup(group content.MediaGroup) []InputMedia {
	out := make([]InputMedia, 0, len(group.Items))
	for _, item := range group.Items {
		out = append(out, WrapMedia(item))
	}
	return out
}
