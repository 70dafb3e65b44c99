package nlattr

import (
	"fmt"

	"github.com/m-lab/go-netlink/nlwire"
)

// Handle is the primary query API over an attribute container:
// GetAttr/GetAttrPayloadAs/GetNested give O(n) linear lookup by type,
// which is intentional -- attribute lists are short and on-wire order
// matters for debugging, so we never build a side index.
type Handle[T item, PT itemDecoder[T]] struct {
	items List[T]
}

// NewHandle wraps an already-decoded list of attributes for lookup.
func NewHandle[T item, PT itemDecoder[T]](items List[T]) Handle[T, PT] {
	return Handle[T, PT]{items: items}
}

// Items returns the underlying list in on-wire order.
func (h Handle[T, PT]) Items() List[T] {
	return h.items
}

// GetAttr returns the first attribute whose TypeOnly matches t, or ok=false
// if none does. Masking is applied to both sides so callers compare against
// bare family constants.
func (h Handle[T, PT]) GetAttr(t uint16) (T, bool) {
	for _, a := range h.items {
		if a.TypeOnly() == t&^typeMask {
			return a, true
		}
	}
	var zero T
	return zero, false
}

// ErrMissingAttr is returned by GetAttrPayloadAs and GetNested when no
// attribute with the requested type is present.
type ErrMissingAttr struct {
	Type uint16
}

func (e *ErrMissingAttr) Error() string {
	return fmt.Sprintf("nlattr: no attribute with type %d", e.Type)
}

// payload retrieves an attribute's raw payload bytes; both Attr and Rtattr
// expose Payload directly, but the generic constraint only promises item, so
// the concrete type is recovered with a type switch (nil for any other type).
func payload(a any) []byte {
	switch v := a.(type) {
	case Attr:
		return v.Payload
	case Rtattr:
		return v.Payload
	default:
		return nil
	}
}

// GetAttrPayloadAs looks up attribute t and decodes its payload into a
// fresh T2 value via dec, returning ErrMissingAttr if t is absent.
func GetAttrPayloadAs[T item, PT itemDecoder[T], T2 any](h Handle[T, PT], t uint16, dec func([]byte) (T2, error)) (T2, error) {
	a, ok := h.GetAttr(t)
	if !ok {
		var zero T2
		return zero, &ErrMissingAttr{Type: t}
	}
	return dec(payload(a))
}

// GetNested returns a Handle over the nested attribute list carried as the
// payload of attribute t, which must itself be a sequence of T-typed
// attributes: a nested attribute's payload is itself a sequence of
// attributes of the same kind.
func GetNested[T item, PT itemDecoder[T]](h Handle[T, PT], t uint16) (Handle[T, PT], error) {
	a, ok := h.GetAttr(t)
	if !ok {
		return Handle[T, PT]{}, &ErrMissingAttr{Type: t}
	}
	p := payload(a)
	buf := nlwire.NewBuffer(p)
	nested, err := DecodeList[T, PT](buf, len(p))
	if err != nil {
		return Handle[T, PT]{}, err
	}
	return NewHandle[T, PT](nested), nil
}
