package network

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"liquid_handler/internal/logger"
)

const (
	DefaultAttempts   = 20
	DefaultRetryDelay = 500 * time.Millisecond

	// NotConnected is what Address reports while the link is down.
	NotConnected = "Not connected"
)

var errNoIPv4 = errors.New("no IPv4 address")

// LookupFunc returns the IPv4 address the device is reachable on.
type LookupFunc func() (net.IP, error)

// Manager waits for the host to have a usable IPv4 address. It does not
// associate with networks itself; that is the OS's job.
type Manager struct {
	lookup   LookupFunc
	attempts int
	delay    time.Duration
	log      *logger.Logger

	mu        sync.RWMutex
	connected bool
	addr      net.IP
}

// NewManager probes iface, or every non-loopback interface when iface is empty.
func NewManager(iface string, attempts int, delay time.Duration, log *logger.Logger) *Manager {
	return NewManagerWithLookup(InterfaceLookup(iface), attempts, delay, log)
}

func NewManagerWithLookup(lookup LookupFunc, attempts int, delay time.Duration, log *logger.Logger) *Manager {
	if attempts <= 0 {
		attempts = DefaultAttempts
	}
	if delay < 0 {
		delay = DefaultRetryDelay
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Manager{lookup: lookup, attempts: attempts, delay: delay, log: log}
}

// Connect probes up to attempts times, delay apart, and reports whether an
// address was found. It gives up early when ctx is done.
func (m *Manager) Connect(ctx context.Context) bool {
	var lastErr error
	for i := 0; i < m.attempts; i++ {
		ip, err := m.lookup()
		if err == nil {
			m.mu.Lock()
			m.connected, m.addr = true, ip
			m.mu.Unlock()
			m.log.Infow("network_connected", "ip", ip.String(), "attempts", i+1)
			return true
		}
		lastErr = err

		if i == m.attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			m.log.Warnw("network_connect_cancelled", "err", ctx.Err())
			return m.markDown()
		case <-time.After(m.delay):
		}
	}
	m.log.Warnw("network_connect_failed", "err", lastErr, "attempts", m.attempts)
	return m.markDown()
}

func (m *Manager) markDown() bool {
	m.mu.Lock()
	m.connected, m.addr = false, nil
	m.mu.Unlock()
	return false
}

func (m *Manager) IsConnected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.connected
}

// Address is the IPv4 address found by Connect, or NotConnected.
func (m *Manager) Address() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.connected {
		return NotConnected
	}
	return m.addr.String()
}

// Disconnect forgets the address. The interface itself is left alone.
func (m *Manager) Disconnect() {
	m.markDown()
	m.log.Infow("network_disconnected")
}

// InterfaceLookup returns a LookupFunc over the host's interfaces.
func InterfaceLookup(name string) LookupFunc {
	return func() (net.IP, error) {
		var ifaces []net.Interface
		if name != "" {
			ifc, err := net.InterfaceByName(name)
			if err != nil {
				return nil, fmt.Errorf("interface %q: %w", name, err)
			}
			ifaces = []net.Interface{*ifc}
		} else {
			all, err := net.Interfaces()
			if err != nil {
				return nil, fmt.Errorf("list interfaces: %w", err)
			}
			ifaces = all
		}

		for _, ifc := range ifaces {
			if ifc.Flags&net.FlagUp == 0 || ifc.Flags&net.FlagLoopback != 0 {
				continue
			}
			addrs, err := ifc.Addrs()
			if err != nil {
				continue
			}
			if ip := firstIPv4(addrs); ip != nil {
				return ip, nil
			}
		}
		return nil, errNoIPv4
	}
}

func firstIPv4(addrs []net.Addr) net.IP {
	for _, a := range addrs {
		var ip net.IP
		switch v := a.(type) {
		case *net.IPNet:
			ip = v.IP
		case *net.IPAddr:
			ip = v.IP
		}
		if ip4 := ip.To4(); ip4 != nil && !ip4.IsLoopback() && !ip4.IsLinkLocalUnicast() {
			return ip4
		}
	}
	return nil
}
