package transport

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/veil-social/veil/automod/content"
)

func TestPendingMessagesBasics(t *testing.T) {
	assert := assert.New(t)

	p := NewPendingMessages(4)

	_, ok := p.Pop(1)
	assert.False(ok)

	p.Set(1, 100)
	p.Set(2, 200)
	p.Set(1, 101) // overwrite keeps one entry per chat

	id, ok := p.Pop(1)
	assert.True(ok)
	assert.Equal(int64(101), id)

	_, ok = p.Pop(1)
	assert.False(ok)

	id, ok = p.Pop(2)
	assert.True(ok)
	assert.Equal(int64(200), id)
}

func TestPendingMessagesEvictsOldest(t *testing.T) {
	assert := assert.New(t)

	p := NewPendingMessages(2)
	p.Set(1, 100)
	p.Set(2, 200)
	p.Set(3, 300)

	_, ok := p.Pop(1)
	assert.False(ok)

	id, ok := p.Pop(2)
	assert.True(ok)
	assert.Equal(int64(200), id)

	id, ok = p.Pop(3)
	assert.True(ok)
	assert.Equal(int64(300), id)
}

func TestWrapMediaGroup(t *testing.T) {
	assert := assert.New(t)

	group := content.MediaGroup{Items: []content.MediaItem{
		{Kind: content.MediaPhoto, Ref: "p1", Caption: "hi"},
		{Kind: content.MediaVideo, Ref: "v1"},
	}}

	wrapped := WrapMediaGroup(group)
	assert.Len(wrapped, 2)
	assert.Equal(content.MediaPhoto, wrapped[0].Kind)
	assert.Equal("p1", wrapped[0].Media)
	assert.Equal("hi", wrapped[0].Caption)
	assert.Equal(content.MediaVideo, wrapped[1].Kind)
	assert.Empty(wrapped[1].Caption)
}
