package card

import "slices"

// SmartToggle returns the selection after a plain click on item: a lone
// selected item is deselected, one of several selected items becomes the
// only selection, anything else replaces the selection.
func SmartToggle[T comparable](selection []T, item T) []T {
	if len(selection) == 1 && selection[0] == item {
		return nil
	}
	return []T{item}
}

// Toggle flips the membership of item, appending when absent. The input
// slice is not modified.
func Toggle[T comparable](selection []T, item T) []T {
	if i := slices.Index(selection, item); i >= 0 {
		return slices.Delete(slices.Clone(selection), i, i+1)
	}
	return append(slices.Clone(selection), item)
}
