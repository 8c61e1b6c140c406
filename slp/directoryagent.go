package slp

import "strconv"

// TCPPortTag is the attribute tag a DA must carry so that discovering peers
// know which port to prefer for TCP requests.
const TCPPortTag = "service:directory-agent.tcp-port"

// MulticastGroup is the well-known SLP multicast group address (RFC 2608
// §2), used for both multicast SrvRqsts and unsolicited/boot/shutdown
// DAAdverts.
const MulticastGroup = "239.255.255.253"

// DirectoryAgentInfo is a DA's self-description, as emitted in DAAdverts.
type DirectoryAgentInfo struct {
	Address    string // the interface address this DA is bound to
	Scopes     Scopes
	Attributes Attributes
	Language   string
	BootTime   int64 // seconds since epoch; set once at start
}

// NewDirectoryAgentInfo builds a DirectoryAgentInfo, merging in the
// tcp-port tag as required by §3.
func NewDirectoryAgentInfo(address string, scopes Scopes, attributes Attributes, language string, port int, bootTime int64) DirectoryAgentInfo {
	portAttrs := NewAttributes()
	portAttrs.SetValues(TCPPortTag, IntValue(int64(port)))
	return DirectoryAgentInfo{
		Address:    address,
		Scopes:     scopes,
		Attributes: attributes.Merge(portAttrs),
		Language:   language,
		BootTime:   bootTime,
	}
}

// URL is the DAAdvert identity: exactly "service:directory-agent://<host>".
func (d DirectoryAgentInfo) URL() string {
	return "service:directory-agent://" + d.Address
}

func (d DirectoryAgentInfo) Port() int {
	values := d.Attributes.Values(TCPPortTag)
	if len(values) == 0 {
		return 0
	}
	if values[0].Type == ValueInteger {
		return int(values[0].Int)
	}
	p, _ := strconv.Atoi(values[0].Str)
	return p
}
