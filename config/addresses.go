package config

import "net"

// ExpandAddresses resolves any wildcard bind address ("0.0.0.0" or "::") to
// the host's configured interface addresses, per §9 "wildcard bind
// addresses": the DA's DirectoryAgentInfo map must be keyed by the
// expanded literal so a received datagram's local address resolves to a
// binding. Non-wildcard addresses pass through unchanged.
func ExpandAddresses(addresses []string) ([]string, error) {
	var out []string
	for _, addr := range addresses {
		if addr != "0.0.0.0" && addr != "::" {
			out = append(out, addr)
			continue
		}
		host, err := localInterfaceAddresses()
		if err != nil {
			return nil, err
		}
		out = append(out, host...)
	}
	return dedupe(out), nil
}

func localInterfaceAddresses() ([]string, error) {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return nil, err
	}
	var out []string
	for _, a := range addrs {
		ipNet, ok := a.(*net.IPNet)
		if !ok || ipNet.IP.IsLoopback() {
			continue
		}
		out = append(out, ipNet.IP.String())
	}
	return out, nil
}

func dedupe(addrs []string) []string {
	seen := make(map[string]bool, len(addrs))
	out := make([]string, 0, len(addrs))
	for _, a := range addrs {
		if seen[a] {
			continue
		}
		seen[a] = true
		out = append(out, a)
	}
	return out
}
