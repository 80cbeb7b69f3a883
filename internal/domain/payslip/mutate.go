package payslip

// ReplaceAt returns a copy of items with the element at index swapped for item.
func ReplaceAt(items []LineItem, index int, item LineItem) ([]LineItem, error) {
	if index < 0 || index >= len(items) {
		return nil, ErrIndexOutOfRange
	}
	out := append([]LineItem(nil), items...)
	out[index] = item
	return out, nil
}

func Append(items []LineItem, item LineItem) []LineItem {
	out := make([]LineItem, 0, len(items)+1)
	out = append(out, items...)
	return append(out, item)
}

// RemoveAt returns a copy of items without the element at index; order of the
// remaining items is kept.
func RemoveAt(items []LineItem, index int) ([]LineItem, error) {
	if index < 0 || index >= len(items) {
		return nil, ErrIndexOutOfRange
	}
	out := make([]LineItem, 0, len(items)-1)
	out = append(out, items[:index]...)
	return append(out, items[index+1:]...), nil
}

// Visible drops draft rows (empty name) before rendering.
func Visible(items []LineItem) []LineItem {
	out := make([]LineItem, 0, len(items))
	for _, item := range items {
		if item.Name != "" {
			out = append(out, item)
		}
	}
	return out
}
