package nlmsg

import "errors"

// Builder errors for messages constructed without required fields.
var (
	ErrMissingType    = errors.New("nlmsg: builder requires a message Type")
	ErrMissingPayload = errors.New("nlmsg: builder requires a Payload")
)

// Builder assembles a Message field by field, validating completeness
// before Build returns one, instead of exposing raw field assignment on
// Message directly. Seq and Pid are normally left zero and stamped by the
// router at send time; set them explicitly only for messages sent outside
// a Router.
type Builder struct {
	typ      Type
	hasType  bool
	flags    Flags
	seq      uint32
	pid      uint32
	payload  Payload
	hasBody  bool
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Type sets the mandatory message type.
func (b *Builder) Type(t Type) *Builder {
	b.typ = t
	b.hasType = true
	return b
}

// Flags sets the flag bitset, replacing any previously set flags.
func (b *Builder) Flags(f Flags) *Builder {
	b.flags = f
	return b
}

// AddFlags unions f into the current flag bitset.
func (b *Builder) AddFlags(f Flags) *Builder {
	b.flags = b.flags.Union(f)
	return b
}

// Seq pins an explicit sequence number. Most callers should leave this
// unset and let a Router allocate one.
func (b *Builder) Seq(seq uint32) *Builder {
	b.seq = seq
	return b
}

// Pid pins an explicit sender port id. Most callers should leave this
// unset and let a Router stamp its bound port id.
func (b *Builder) Pid(pid uint32) *Builder {
	b.pid = pid
	return b
}

// Payload sets the mandatory typed payload.
func (b *Builder) Payload(p Payload) *Builder {
	b.payload = p
	b.hasBody = true
	return b
}

// Build validates the builder and returns the assembled Message, or a
// builder error if a mandatory field is missing.
func (b *Builder) Build() (Message, error) {
	if !b.hasType {
		return Message{}, ErrMissingType
	}
	if !b.hasBody {
		return Message{}, ErrMissingPayload
	}
	return Message{
		Header: Header{
			Type:  b.typ,
			Flags: b.flags,
			Seq:   b.seq,
			Pid:   b.pid,
		},
		Payload: b.payload,
	}, nil
}
