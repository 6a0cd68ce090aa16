// pkg/platform/network.go

package platform

import (
	"context"
	"net"
	"time"
)

// PrimaryAddress returns the source address the kernel picks for outbound
// traffic. No packet is sent; a UDP "connect" only selects a route.
func PrimaryAddress() string {
	conn, err := net.DialTimeout("udp", "192.0.2.1:80", 2*time.Second)
	if err != nil {
		return "127.0.0.1"
	}
	defer conn.Close()
	if addr, ok := conn.LocalAddr().(*net.UDPAddr); ok && addr.IP != nil {
		return addr.IP.String()
	}
	return "127.0.0.1"
}

// Resolver looks up host names.
type Resolver interface {
	LookupHost(ctx context.Context, host string) ([]string, error)
}

// Resolves reports whether host has at least one DNS record.
func Resolves(ctx context.Context, r Resolver, host string) bool {
	if r == nil {
		r = net.DefaultResolver
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	addrs, err := r.LookupHost(ctx, host)
	return err == nil && len(addrs) > 0
}
