package da

import (
	"github.com/slpgo/slpd/safemap"
	"github.com/slpgo/slpd/slp"
)

// directoryAgents is the immutable-after-start map of bind address to the
// DirectoryAgentInfo a DA answers discovery for on that interface (§5 "the
// DirectoryAgentInfo map is immutable after start"). Keyed by the expanded
// literal, not the configured wildcard (§9 "wildcard bind addresses").
type directoryAgents struct {
	byAddress *safemap.SafeMap[string, slp.DirectoryAgentInfo]
}

func newDirectoryAgents(infos []slp.DirectoryAgentInfo) *directoryAgents {
	m := safemap.New[string, slp.DirectoryAgentInfo]()
	for _, info := range infos {
		m.Set(info.Address, info)
	}
	return &directoryAgents{byAddress: m}
}

func (d *directoryAgents) lookup(localAddress string) (slp.DirectoryAgentInfo, bool) {
	return d.byAddress.Get(localAddress)
}

func (d *directoryAgents) all() []slp.DirectoryAgentInfo {
	out := make([]slp.DirectoryAgentInfo, 0, d.byAddress.Len())
	d.byAddress.ForEach(func(_ string, info slp.DirectoryAgentInfo) {
		out = append(out, info)
	})
	return out
}
