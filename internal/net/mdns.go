package net

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/mdns"
)

const serviceType = "_localboard._tcp"

// Service is a hub found on the local network.
type Service struct {
	Instance string
	Addr     string
}

// Advertise announces a hub listening on port. instance defaults to the
// host name. Shut the returned server down to stop advertising.
func Advertise(port int, instance string) (*mdns.Server, error) {
	if instance == "" {
		host, err := os.Hostname()
		if err != nil {
			return nil, fmt.Errorf("could not get hostname: %w", err)
		}
		instance = host
	}
	service, err := mdns.NewMDNSService(instance, serviceType, "", "", port, nil, []string{"LocalBoard"})
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS service: %w", err)
	}
	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return nil, fmt.Errorf("failed to start mDNS server: %w", err)
	}
	return server, nil
}

// Browse looks for hubs for up to timeout and returns what it found.
func Browse(ctx context.Context, timeout time.Duration) ([]Service, error) {
	entries := make(chan *mdns.ServiceEntry, 8)
	found := make(chan []Service, 1)
	go func() {
		var out []Service
		seen := make(map[string]bool)
		for e := range entries {
			if e.AddrV4 == nil || e.Port == 0 {
				continue
			}
			addr := fmt.Sprintf("%s:%d", e.AddrV4, e.Port)
			if seen[addr] {
				continue
			}
			seen[addr] = true
			out = append(out, Service{Instance: e.Name, Addr: addr})
		}
		found <- out
	}()

	params := mdns.DefaultParams(serviceType)
	params.Entries = entries
	params.Timeout = timeout
	params.DisableIPv6 = true
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < params.Timeout {
			params.Timeout = left
		}
	}
	err := mdns.Query(params)
	close(entries)
	services := <-found
	if err != nil {
		return services, fmt.Errorf("mdns query: %w", err)
	}
	return services, ctx.Err()
}
