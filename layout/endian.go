package layout

// WithByteOrder returns a copy of the layout in which every numeric
// item, switch identifier, and length prefix that lacks an explicit
// byte order is set to o. Items with an explicit order are left
// untouched. The receiver is never modified.
func WithByteOrder(l *Layout, o ByteOrder) *Layout {
	out := l.clone()
	applyOrderLayout(out, o)
	return out
}

func applyOrder(it *Item, o ByteOrder) {
	switch it.Kind {
	case KindNumeric:
		if it.Order == OrderUnset {
			it.Order = o
		}

	case KindBytes:
		applyPrefixOrder(&it.Len, o)
		if it.Nested != nil {
			applyOrderLayout(it.Nested, o)
		}

	case KindArray:
		applyPrefixOrder(&it.Len, o)
		applyOrderLayout(it.Elem, o)

	case KindSwitch:
		if it.Order == OrderUnset {
			it.Order = o
		}
		for _, v := range it.Variants {
			applyOrderLayout(v.Layout, o)
		}
	}
}

func applyOrderLayout(l *Layout, o ByteOrder) {
	if l.item != nil {
		applyOrder(l.item, o)
	}
	for i := range l.fields {
		applyOrder(&l.fields[i].Item, o)
	}
}

func applyPrefixOrder(ls *LenSpec, o ByteOrder) {
	if ls.Kind == LenPrefix && ls.PrefixOrder == OrderUnset {
		ls.PrefixOrder = o
	}
}
