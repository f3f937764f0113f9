package client

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"strings"
	"syscall"
	"time"

	"github.com/bmatcuk/doublestar/v4"
)

var (
	ErrHostNotAllowed = errors.New("host not in allow list")
	ErrPrivateAddress = errors.New("refusing to connect to non-public address")
)

const maxRedirects = 10

// carrier-grade NAT space is not covered by netip.Addr.IsPrivate
var sharedAddressSpace = netip.MustParsePrefix("100.64.0.0/10")

// hostGuard decides which hosts the client may reach
type hostGuard struct {
	patterns     []string
	blockPrivate bool
}

// newHostGuard normalizes patterns. A malformed pattern never matches, so
// a list holding only bad patterns refuses every host.
func newHostGuard(patterns []string, blockPrivate bool) *hostGuard {
	g := &hostGuard{blockPrivate: blockPrivate}
	for _, p := range patterns {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			g.patterns = append(g.patterns, p)
		}
	}
	return g
}

// allowURL checks rawURL's host against the allow list. An empty list
// allows every host.
func (g *hostGuard) allowURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrHostNotAllowed, err)
	}
	return g.allowHost(u.Hostname())
}

func (g *hostGuard) allowHost(host string) error {
	if len(g.patterns) == 0 {
		return nil
	}
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	for _, p := range g.patterns {
		if ok, _ := doublestar.Match(p, host); ok {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrHostNotAllowed, host)
}

// checkRedirect applies the allow list to every hop
func (g *hostGuard) checkRedirect(req *http.Request, via []*http.Request) error {
	if len(via) >= maxRedirects {
		return fmt.Errorf("stopped after %d redirects", maxRedirects)
	}
	return g.allowHost(req.URL.Hostname())
}

// control runs after DNS resolution, so a public name that resolves to
// an internal address is still refused
func (g *hostGuard) control(network, address string, _ syscall.RawConn) error {
	if !g.blockPrivate {
		return nil
	}
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrPrivateAddress, address)
	}
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrPrivateAddress, address)
	}
	if !isPublic(addr.Unmap()) {
		return fmt.Errorf("%w: %s", ErrPrivateAddress, addr)
	}
	return nil
}

func isPublic(addr netip.Addr) bool {
	switch {
	case addr.IsLoopback(), addr.IsPrivate(), addr.IsUnspecified(),
		addr.IsLinkLocalUnicast(), addr.IsLinkLocalMulticast(),
		addr.IsInterfaceLocalMulticast(), addr.IsMulticast():
		return false
	case sharedAddressSpace.Contains(addr):
		return false
	}
	return true
}

// dialer returns the dialer used for every outbound connection
func (g *hostGuard) dialer() *net.Dialer {
	return &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
		Control:   g.control,
	}
}
