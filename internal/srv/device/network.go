package device

import (
	"context"
	"net"
	"time"
)

const networkProbeTimeout = 3 * time.Second

// Network tells whether the board can reach the internet by opening a TCP
// connection to a probe address.
type Network struct {
	probeAddress string
	dialer       net.Dialer
}

func NewNetwork(probeAddress string) *Network {
	return &Network{
		probeAddress: probeAddress,
		dialer:       net.Dialer{Timeout: networkProbeTimeout},
	}
}

func (n *Network) Online(ctx context.Context) bool {
	if n.probeAddress == "" {
		return true
	}
	conn, err := n.dialer.DialContext(ctx, "tcp", n.probeAddress)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}
