package nlrouter

import (
	"context"
	"fmt"

	"github.com/m-lab/go-netlink/nlattr"
	"github.com/m-lab/go-netlink/nlmsg"
	"github.com/m-lab/go-netlink/nliter"
	"github.com/m-lab/go-netlink/nlwire"
)

// Generic-netlink controller constants (linux/genetlink.h). These are not
// exposed by golang.org/x/sys/unix, so they are defined here locally.
const (
	GenlIDCtrl = 0x10

	ctrlCmdGetfamily = 3

	ctrlAttrFamilyID    = 1
	ctrlAttrFamilyName  = 2
	ctrlAttrMcastGroups = 7

	// Sub-attributes of one entry in the CTRL_ATTR_MCAST_GROUPS nest: each
	// entry is itself a nested attribute (indexed by an arbitrary,
	// kernel-assigned type, not by these constants) carrying a name/id pair.
	ctrlAttrMcastGrpName = 1
	ctrlAttrMcastGrpID   = 2
)

// FamilyResolver resolves a generic-netlink family name to its numeric
// message-type id via CTRL_CMD_GETFAMILY, the one well-known family every
// genl family is reachable
// through.
type FamilyResolver struct {
	r *Router
}

// NewFamilyResolver wraps a Router for family-name lookups.
func NewFamilyResolver(r *Router) *FamilyResolver {
	return &FamilyResolver{r: r}
}

// Resolve asks the kernel's generic-netlink controller for the numeric
// family id matching name (e.g. "nl80211", "acpi_event"), plus a
// multicast-group-name -> group-id map built from the reply's nested
// CTRL_ATTR_MCAST_GROUPS attribute, if the family advertises any.
func (f *FamilyResolver) Resolve(ctx context.Context, name string) (uint16, map[string]uint32, error) {
	var attrs nlattr.List[nlattr.Attr]
	attrs.Append(nlattr.Attr{Type: ctrlAttrFamilyName, Payload: nlattr.PayloadString(name)})

	msg, err := nlmsg.NewBuilder().
		Type(nlmsg.Type(GenlIDCtrl)).
		Payload(nlmsg.GenlMsg{Cmd: ctrlCmdGetfamily, Version: 1, Attrs: attrs}).
		Build()
	if err != nil {
		return 0, nil, err
	}

	stream, err := f.r.Request(ctx, msg, "genl-ctrl")
	if err != nil {
		return 0, nil, err
	}
	defer stream.Close()

	item, err := stream.Recv(ctx)
	if err != nil {
		return 0, nil, fmt.Errorf("nlrouter: resolving family %q: %w", name, err)
	}
	if item.Kind == nliter.KindError {
		if item.Error != nil {
			return 0, nil, fmt.Errorf("nlrouter: resolving family %q: %w", name, item.Error.AsErrno())
		}
		return 0, nil, fmt.Errorf("nlrouter: resolving family %q: kernel returned an error", name)
	}

	buf := nlwire.NewBuffer(item.Raw)
	genl, err := nlmsg.DecodeGenlMsgWithInput(buf, len(item.Raw))
	if err != nil {
		return 0, nil, fmt.Errorf("nlrouter: decoding family %q response: %w", name, err)
	}
	id, err := nlattr.GetAttrPayloadAs(genl.Handle(), ctrlAttrFamilyID, func(b []byte) (uint16, error) {
		return nlattr.AsUint16(b, nlattr.ErrorOnMismatch)
	})
	if err != nil {
		return 0, nil, fmt.Errorf("nlrouter: family %q: %w", name, err)
	}
	return id, mcastGroups(genl.Handle()), nil
}

// mcastGroups parses the nested CTRL_ATTR_MCAST_GROUPS attribute, if
// present, into a name -> id map. Each entry of the outer nest is itself a
// nested attribute carrying a CTRL_ATTR_MCAST_GRP_NAME/CTRL_ATTR_MCAST_GRP_ID
// pair; a family with no multicast groups omits the attribute entirely, so
// a missing nest is not an error.
func mcastGroups(h nlattr.Handle[nlattr.Attr, *nlattr.Attr]) map[string]uint32 {
	nested, err := nlattr.GetNested(h, ctrlAttrMcastGroups)
	if err != nil {
		return nil
	}
	groups := make(map[string]uint32)
	for _, grp := range nested.Items() {
		sub, err := nlattr.DecodeList[nlattr.Attr, *nlattr.Attr](nlwire.NewBuffer(grp.Payload), len(grp.Payload))
		if err != nil {
			continue
		}
		subHandle := nlattr.NewHandle[nlattr.Attr, *nlattr.Attr](sub)
		nameAttr, ok := subHandle.GetAttr(ctrlAttrMcastGrpName)
		if !ok {
			continue
		}
		id, err := nlattr.GetAttrPayloadAs(subHandle, ctrlAttrMcastGrpID, func(b []byte) (uint32, error) {
			return nlattr.AsUint32(b, nlattr.ErrorOnMismatch)
		})
		if err != nil {
			continue
		}
		groups[nlattr.AsString(nameAttr.Payload)] = id
	}
	return groups
}
