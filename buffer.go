package main

// cursorStep is how far the cursor jumps after every edit or arrow
// press, clamped to the text bounds.
const cursorStep = 10

// inputBuffer holds the SQL text under composition. The cursor is an
// offset in runes, never bytes, so multi-byte input stays editable.
type inputBuffer struct {
	text   []rune
	cursor int
}

func (b *inputBuffer) clampCursor(pos int) int {
	if pos < 0 {
		return 0
	}
	if pos > len(b.text) {
		return len(b.text)
	}
	return pos
}

func (b *inputBuffer) moveLeft() {
	b.cursor = b.clampCursor(b.cursor - cursorStep)
}

func (b *inputBuffer) moveRight() {
	b.cursor = b.clampCursor(b.cursor + cursorStep)
}

func (b *inputBuffer) insert(r rune) {
	text := make([]rune, 0, len(b.text)+1)
	text = append(text, b.text[:b.cursor]...)
	text = append(text, r)
	text = append(text, b.text[b.cursor:]...)
	b.text = text
	b.moveRight()
}

// deleteBeforeCursor removes the rune immediately left of the cursor.
// No-op when the cursor sits at the start.
func (b *inputBuffer) deleteBeforeCursor() {
	if b.cursor == 0 {
		return
	}
	text := make([]rune, 0, len(b.text)-1)
	text = append(text, b.text[:b.cursor-1]...)
	text = append(text, b.text[b.cursor:]...)
	b.text = text
	b.moveLeft()
}

func (b *inputBuffer) clear() {
	b.text = nil
	b.cursor = 0
}

func (b *inputBuffer) snapshot() string {
	return string(b.text)
}
