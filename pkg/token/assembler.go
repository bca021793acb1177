// Package token assembles numeric tokens from a serial byte stream.
package token

// Capacity is the size of the token buffer including the terminator slot.
const Capacity = 50

// MaxLen is the maximum number of characters kept for a single token.
const MaxLen = Capacity - 1

// Variant selects the byte classification rules.
type Variant int

const (
	// VariantMirror accepts digits and '.' and terminates on '\n' only.
	VariantMirror Variant = iota
	// VariantEdge additionally accepts '-' and terminates on ','.
	VariantEdge
)

// String implements fmt.Stringer.
func (v Variant) String() string {
	switch v {
	case VariantMirror:
		return "mirror"
	case VariantEdge:
		return "edge"
	}
	return "unknown"
}

// ParseVariant converts a name back into a Variant.
func ParseVariant(name string) (Variant, bool) {
	switch name {
	case "mirror", "1":
		return VariantMirror, true
	case "edge", "2":
		return VariantEdge, true
	}
	return VariantMirror, false
}

// Result indicates the result after feeding one byte.
type Result struct {
	// Emitted is set when the byte terminated a token.
	Emitted bool
	// Token is the emitted token, valid only if Emitted.
	Token string
	// Truncated is set on emission if any byte of the token was dropped.
	Truncated bool
	// Dropped is set when this byte was accepted but the buffer was full.
	Dropped bool
}

// Assembler accumulates accepted bytes into a fixed buffer.
// The zero value is a VariantMirror assembler.
type Assembler struct {
	Variant Variant

	buf       [Capacity]byte
	pos       int
	truncated bool
}

// New creates an Assembler.
func New(variant Variant) *Assembler {
	return &Assembler{Variant: variant}
}

// Len returns the length of the in-progress token.
func (a *Assembler) Len() int {
	return a.pos
}

// Pending returns the in-progress token.
func (a *Assembler) Pending() string {
	return string(a.buf[:a.pos])
}

// Reset drops the in-progress token.
func (a *Assembler) Reset() {
	a.pos, a.truncated = 0, false
}

// Feed consumes one byte.
func (a *Assembler) Feed(b byte) (r Result) {
	switch {
	case b == '\n':
		return a.emit()
	case a.accepts(b):
		if a.pos < MaxLen {
			a.buf[a.pos] = b
			a.pos++
		} else {
			a.truncated, r.Dropped = true, true
		}
	case b == ',' && a.Variant == VariantEdge:
		return a.emit()
	}
	return
}

// FeedBytes feeds each byte and calls fn for every emitted token.
func (a *Assembler) FeedBytes(p []byte, fn func(Result)) {
	for _, b := range p {
		if r := a.Feed(b); r.Emitted && fn != nil {
			fn(r)
		}
	}
}

func (a *Assembler) accepts(b byte) bool {
	if b >= '0' && b <= '9' || b == '.' {
		return true
	}
	return b == '-' && a.Variant == VariantEdge
}

func (a *Assembler) emit() Result {
	r := Result{Emitted: true, Token: string(a.buf[:a.pos]), Truncated: a.truncated}
	a.Reset()
	return r
}
