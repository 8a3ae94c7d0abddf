package block

import (
	"context"

	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/diamondburned/embedkit/md/embed"
)

// WidgetBlock is any widget placed into a container.
type WidgetBlock interface {
	gtk.Widgetter
}

// TextWidgetBlock is a block that text can be appended to.
type TextWidgetBlock interface {
	WidgetBlock
	TextBlock() *TextBlock
}

// ContainerWidgetBlock is a block that holds other blocks.
type ContainerWidgetBlock interface {
	WidgetBlock
	State() *ContainerState
}

// ContainerState holds the blocks of one nesting level, such as the viewer
// itself or a blockquote inside it.
type ContainerState struct {
	*gtk.Box
	// Viewer is the top-level viewer, shared by every nesting level.
	Viewer *Viewer
	// Depth is the blockquote nesting level. The viewer is at depth 0.
	Depth int

	blocks  []WidgetBlock
	current WidgetBlock
}

func newContainerState(viewer *Viewer, parent *gtk.Box) *ContainerState {
	return &ContainerState{Box: parent, Viewer: viewer}
}

// WithParent creates a nested ContainerState that appends into parent.
func (s *ContainerState) WithParent(parent *gtk.Box) *ContainerState {
	return &ContainerState{
		Box:    parent,
		Viewer: s.Viewer,
		Depth:  s.Depth + 1,
	}
}

// Context returns the Viewer's context.
func (s *ContainerState) Context() context.Context { return s.Viewer.ctx }

// Codec returns the Viewer's codec.
func (s *ContainerState) Codec() *embed.Codec { return s.Viewer.Codec }

// TagTable returns the Viewer's TagTable.
func (s *ContainerState) TagTable() *gtk.TextTagTable {
	return s.Viewer.TagTable()
}

// Current returns the block that is currently written into, or nil after
// FinalizeBlock.
func (s *ContainerState) Current() WidgetBlock {
	return s.current
}

// Blocks returns the blocks appended at this level.
func (s *ContainerState) Blocks() []WidgetBlock {
	return s.blocks
}

// TextBlock returns the current block if text can be written into it.
// Otherwise, a new TextBlock is appended.
func (s *ContainerState) TextBlock() *TextBlock {
	switch text := s.current.(type) {
	case *TextBlock:
		return text
	case TextWidgetBlock:
		return text.TextBlock()
	default:
		block := NewTextBlock(s)
		s.Append(block)
		return block
	}
}

// FinalizeBlock ends the current block. The next write creates a new one.
func (s *ContainerState) FinalizeBlock() {
	s.current = nil
}

// Append appends block and makes it the current block.
func (s *ContainerState) Append(block WidgetBlock) {
	s.blocks = append(s.blocks, block)
	s.current = block
	s.Box.Append(block)
}
