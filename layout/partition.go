package layout

import (
	"github.com/wippyai/binlayout/errors"
)

// The fixed/dynamic partition splits a layout into the portion the
// engine can synthesize on its own (Fixed conversions, omitted
// constants, and sub-layouts composed entirely of such) and the portion
// a caller must still supply. Filtered layouts describe value shape;
// they are not themselves encodable schemas, since dropping siblings
// changes byte positions.

// FixedItems returns the statically-determined sub-layout, or nil when
// nothing in the layout is statically determined.
func FixedItems(l *Layout) *Layout {
	if l.item != nil {
		if it, ok := fixedPart(*l.item); ok {
			return &Layout{item: &it}
		}
		return nil
	}
	var fields []Field
	for _, f := range l.fields {
		if it, ok := fixedPart(f.Item); ok {
			fields = append(fields, Field{Name: f.Name, Item: it})
		}
	}
	if fields == nil {
		return nil
	}
	return &Layout{fields: fields}
}

// DynamicItems returns the caller-supplied sub-layout, or nil when the
// whole layout is statically determined.
func DynamicItems(l *Layout) *Layout {
	if l.item != nil {
		if it, ok := dynamicPart(*l.item); ok {
			return &Layout{item: &it}
		}
		return nil
	}
	var fields []Field
	for _, f := range l.fields {
		if it, ok := dynamicPart(f.Item); ok {
			fields = append(fields, Field{Name: f.Name, Item: it})
		}
	}
	if fields == nil {
		return nil
	}
	return &Layout{fields: fields}
}

func fixedPart(it Item) (Item, bool) {
	if it.Omit {
		return it.clone(), true
	}
	if _, ok := it.fixedConv(); ok {
		return it.clone(), true
	}
	if _, ok := it.customConv(); ok {
		// Custom conversions need caller input; never static.
		return Item{}, false
	}

	switch it.Kind {
	case KindBytes:
		if it.Nested == nil {
			return Item{}, false
		}
		sub := FixedItems(it.Nested)
		if sub == nil {
			return Item{}, false
		}
		out := it.clone()
		out.Nested = sub
		return out, true

	case KindArray:
		sub := FixedItems(it.Elem)
		if sub == nil {
			return Item{}, false
		}
		out := it.clone()
		out.Elem = sub
		return out, true

	case KindSwitch:
		var variants []Variant
		for _, v := range it.Variants {
			if sub := FixedItems(v.Layout); sub != nil {
				variants = append(variants, Variant{Tag: v.Tag, Label: v.Label, Layout: sub})
			}
		}
		if variants == nil {
			return Item{}, false
		}
		out := it.clone()
		out.Variants = variants
		return out, true
	}

	return Item{}, false
}

func dynamicPart(it Item) (Item, bool) {
	if it.Omit {
		return Item{}, false
	}
	if _, ok := it.fixedConv(); ok {
		return Item{}, false
	}
	if _, ok := it.customConv(); ok {
		return it.clone(), true
	}

	switch it.Kind {
	case KindBytes:
		if it.Nested == nil {
			return it.clone(), true
		}
		sub := DynamicItems(it.Nested)
		if sub == nil {
			return Item{}, false
		}
		out := it.clone()
		out.Nested = sub
		return out, true

	case KindArray:
		sub := DynamicItems(it.Elem)
		if sub == nil {
			return Item{}, false
		}
		out := it.clone()
		out.Elem = sub
		return out, true

	case KindSwitch:
		var variants []Variant
		for _, v := range it.Variants {
			if sub := DynamicItems(v.Layout); sub != nil {
				variants = append(variants, Variant{Tag: v.Tag, Label: v.Label, Layout: sub})
			}
		}
		if variants == nil {
			return Item{}, false
		}
		out := it.clone()
		out.Variants = variants
		return out, true
	}

	return it.clone(), true
}

// AddFixedValues reconstructs the complete value for the layout from
// only its dynamic portion, re-deriving every statically-determined
// field from its Fixed conversion. The inverse of projecting a full
// value onto DynamicItems(l).
func AddFixedValues(l *Layout, dynamic any) (any, error) {
	if l.conv != nil {
		return nil, errors.Unsupported(errors.PhaseEncode, "AddFixedValues over a converted layout")
	}
	return addFixedLayout(l, dynamic, nil)
}

func addFixedLayout(l *Layout, dynamic any, path []string) (any, error) {
	if l.item != nil {
		it := *l.item
		if it.Omit {
			return nil, nil
		}
		return addFixedItem(it, dynamic, path)
	}

	m, e := asRecord(dynamic, errors.PhaseEncode, path)
	if e != nil {
		return nil, e
	}
	out := make(map[string]any, len(l.fields))
	if err := addFixedFields(l.fields, m, out, path); err != nil {
		return nil, err
	}
	return out, nil
}

func addFixedFields(fields []Field, dyn, out map[string]any, path []string) error {
	for _, f := range fields {
		it := f.Item
		if it.Omit {
			continue
		}
		if fx, ok := it.fixedConv(); ok {
			out[f.Name] = fx.Decoded
			continue
		}
		if !itemNeedsInput(it) {
			out[f.Name] = synthesizeValue(it)
			continue
		}
		v, ok := dyn[f.Name]
		if !ok {
			return errors.FieldMissing(errors.PhaseEncode, path, f.Name)
		}
		merged, err := addFixedItem(it, v, childPath(path, f.Name))
		if err != nil {
			return err
		}
		out[f.Name] = merged
	}
	return nil
}

func addFixedItem(it Item, dyn any, path []string) (any, error) {
	if _, ok := it.customConv(); ok {
		return dyn, nil
	}

	switch it.Kind {
	case KindBytes:
		if it.Nested == nil || !layoutHasFixed(it.Nested) {
			return dyn, nil
		}
		return addFixedLayout(it.Nested, dyn, path)

	case KindArray:
		if !layoutHasFixed(it.Elem) {
			return dyn, nil
		}
		elems, e := asSlice(dyn, errors.PhaseEncode, path)
		if e != nil {
			return nil, e
		}
		out := make([]any, len(elems))
		for i, el := range elems {
			v, err := addFixedLayout(it.Elem, el, indexPath(path, i))
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil

	case KindSwitch:
		anyFixed := false
		for _, v := range it.Variants {
			if layoutHasFixed(v.Layout) {
				anyFixed = true
				break
			}
		}
		if !anyFixed {
			return dyn, nil
		}
		m, e := asRecord(dyn, errors.PhaseEncode, path)
		if e != nil {
			return nil, e
		}
		tagVal, ok := m[it.tagName()]
		if !ok {
			return nil, errors.FieldMissing(errors.PhaseEncode, path, it.tagName())
		}
		v, found := matchVariant(it, tagVal)
		if !found {
			return nil, errors.UnknownVariant(errors.PhaseEncode, path, tagVal)
		}
		out := make(map[string]any, len(v.Layout.fields)+1)
		out[it.tagName()] = tagVal
		if err := addFixedFields(v.Layout.fields, m, out, path); err != nil {
			return nil, err
		}
		return out, nil
	}

	return dyn, nil
}

// itemNeedsInput reports whether any caller-supplied value is required
// to produce the item's decoded content.
func itemNeedsInput(it Item) bool {
	if it.Omit {
		return false
	}
	if _, ok := it.fixedConv(); ok {
		return false
	}
	if _, ok := it.customConv(); ok {
		return true
	}
	switch it.Kind {
	case KindBytes:
		if it.Nested == nil {
			return true
		}
		for _, f := range it.Nested.fields {
			if itemNeedsInput(f.Item) {
				return true
			}
		}
		if sub, ok := it.Nested.Item(); ok {
			return itemNeedsInput(sub)
		}
		return false
	case KindArray, KindSwitch:
		// Element counts and identifiers always come from the caller.
		return true
	}
	return true
}

// layoutHasFixed reports whether the layout contains any
// statically-determined content to merge back in.
func layoutHasFixed(l *Layout) bool {
	return FixedItems(l) != nil
}

// synthesizeValue builds the decoded value of an item that needs no
// caller input: the constants of its Fixed conversions assembled into
// the item's decoded shape.
func synthesizeValue(it Item) any {
	if it.Omit {
		return nil
	}
	if fx, ok := it.fixedConv(); ok {
		return fx.Decoded
	}
	if it.Kind == KindBytes && it.Nested != nil {
		if sub, ok := it.Nested.Item(); ok {
			return synthesizeValue(sub)
		}
		m := make(map[string]any)
		for _, f := range it.Nested.fields {
			if f.Item.Omit {
				continue
			}
			m[f.Name] = synthesizeValue(f.Item)
		}
		return m
	}
	return nil
}
