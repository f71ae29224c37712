package bits

// Field copies width bits from src starting at bit offset from, into b
// starting at bit offset to, leaving the rest of b untouched. Rejects
// the call wholesale (no mutation at all) if the range doesn't fit
// both b and src: to+width > b.bw, from+width > src.bw, or width < 0.
// Returns ok=false in that case.
func Field(to *Bits, toStart int, from *Bits, fromStart int, width int) (ok bool) {
	if width < 0 || toStart < 0 || fromStart < 0 {
		return false
	}
	if toStart+width > to.bw || fromStart+width > from.bw {
		return false
	}
	for i := 0; i < width; i++ {
		to.SetBit(toStart+i, from.GetBit(fromStart+i))
	}
	return true
}

// FieldTo copies width bits from src (starting at bit 0) to b starting
// at bit offset to. Returns ok=false (leaving b unchanged) if the
// range is out of bounds.
func (b *Bits) FieldTo(to int, src *Bits, width int) (ok bool) {
	return Field(b, to, src, 0, width)
}

// FieldFrom copies width bits from b starting at bit offset from, into
// dst (starting at bit 0). Returns ok=false (leaving dst unchanged) if
// the range is out of bounds.
func (b *Bits) FieldFrom(from int, dst *Bits, width int) (ok bool) {
	return Field(dst, 0, b, from, width)
}

// FieldWidth zeroes b, then copies width bits from src into it, both
// starting at bit 0. Returns ok=false if the range is out of bounds;
// b is still left zeroed in that case, since the zeroing isn't part of
// the field-range contract.
func (b *Bits) FieldWidth(src *Bits, width int) (ok bool) {
	b.Zero()
	return Field(b, 0, src, 0, width)
}

// FieldBit copies a single bit from src at position from into b at
// position to. Returns ok=false (leaving b unchanged) if either
// position is out of range.
func (b *Bits) FieldBit(to int, src *Bits, from int) (ok bool) {
	return Field(b, to, src, from, 1)
}

// Lut looks up an entryWidth-wide entry at position inx (where
// entryWidth = b.bw, the receiver's own width) in table, and writes it
// into b. table must be exactly b.bw * 2^inx.bw bits wide, matching the
// "one entry per index, entries as wide as the receiver" layout used
// throughout the reference implementation's bitfield primitives.
// Returns ok=false (leaving b unchanged) if table's width doesn't fit
// that relationship.
func (b *Bits) Lut(table *Bits, inx *Bits) bool {
	entryWidth := b.bw
	want := entryWidth << uint(inx.bw)
	if table.bw != want {
		return false
	}
	idx := lutIndex(inx)
	for i := 0; i < entryWidth; i++ {
		b.SetBit(i, table.GetBit(idx*entryWidth+i))
	}
	return true
}

// LutSet writes entry into table at the position selected by inx,
// where entry is entryWidth bits wide and table holds 2^inx.bw such
// entries. Returns ok=false (leaving table unchanged) if the widths
// are inconsistent.
func LutSet(table *Bits, entry *Bits, inx *Bits) bool {
	entryWidth := entry.bw
	want := entryWidth << uint(inx.bw)
	if table.bw != want {
		return false
	}
	idx := lutIndex(inx)
	return Field(table, idx*entryWidth, entry, 0, entryWidth)
}

func lutIndex(inx *Bits) int {
	idx := 0
	for i := 0; i < inx.bw; i++ {
		if inx.GetBit(i) {
			idx |= 1 << i
		}
	}
	return idx
}

// Mux writes lhs into b if sel is false, or rhs into b if sel is true.
// Reports ok=false (leaving b unchanged) on bitwidth mismatch between
// b, lhs, and rhs.
func (b *Bits) Mux(lhs, rhs *Bits, sel bool) (ok bool) {
	if b.bw != lhs.bw || b.bw != rhs.bw {
		return false
	}
	if sel {
		b.CopyFrom(rhs)
	} else {
		b.CopyFrom(lhs)
	}
	return true
}
