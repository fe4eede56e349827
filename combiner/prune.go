package combiner

import "github.com/erraggy/oascombine/document"

// Prune returns a copy of n without object members whose value is null,
// an empty object or an empty array. Members emptied by pruning are
// removed too. Array items are pruned but never removed, and security
// requirement lists are kept verbatim so that a requirement such as
// {"api_key": []} survives.
func Prune(n *document.Node) *document.Node {
	out := prune(n)
	if out == nil {
		return document.NewObject()
	}
	return out
}

func prune(n *document.Node) *document.Node {
	switch n.Kind() {
	case document.KindObject:
		out := document.NewObject()
		for _, m := range n.Members() {
			var v *document.Node
			if m.Key == "security" && isRequirementList(m.Value) {
				v = m.Value
			} else {
				v = prune(m.Value)
			}
			if !v.IsEmpty() {
				out.Set(m.Key, v)
			}
		}
		return out
	case document.KindArray:
		items := n.Items()
		for i, item := range items {
			if p := prune(item); p != nil {
				items[i] = p
			}
		}
		return document.NewArray(items...)
	}
	return n
}

func isRequirementList(n *document.Node) bool {
	if !n.IsArray() {
		return false
	}
	for _, req := range n.Items() {
		if !req.IsObject() {
			return false
		}
		for _, m := range req.Members() {
			if !m.Value.IsArray() {
				return false
			}
		}
	}
	return true
}
