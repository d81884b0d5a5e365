package net

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
)

// LinkScheme prefixes the share links boards hand to each other.
const LinkScheme = "localboard://"

// OutgoingIP finds the preferred local IP address for the hub to share.
func OutgoingIP() string {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		// No route to the internet; fall back to the interfaces.
		return firstIPv4().String()
	}
	defer conn.Close()
	return conn.LocalAddr().(*net.UDPAddr).IP.String()
}

// firstIPv4 is the address of the first up, non-loopback interface, or
// loopback when there is none.
func firstIPv4() net.IP {
	ifaces, _ := net.Interfaces()
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, _ := iface.Addrs()
		for _, a := range addrs {
			if ipnet, ok := a.(*net.IPNet); ok && ipnet.IP.To4() != nil {
				return ipnet.IP.To4()
			}
		}
	}
	return net.IPv4(127, 0, 0, 1)
}

// ShareLink builds the link other boards join with.
func ShareLink(host string, port int) string {
	return LinkScheme + net.JoinHostPort(host, strconv.Itoa(port))
}

// WebsocketURL turns a share link, a host:port or an http(s)/ws(s) URL into
// the hub's websocket URL.
func WebsocketURL(target string) (string, error) {
	target = strings.TrimSuffix(strings.TrimSpace(target), "/")
	switch {
	case strings.HasPrefix(target, LinkScheme):
		target = "ws://" + strings.TrimPrefix(target, LinkScheme)
	case strings.HasPrefix(target, "http://"):
		target = "ws://" + strings.TrimPrefix(target, "http://")
	case strings.HasPrefix(target, "https://"):
		target = "wss://" + strings.TrimPrefix(target, "https://")
	case !strings.Contains(target, "://"):
		target = "ws://" + target
	}
	u, err := url.Parse(target)
	if err != nil {
		return "", fmt.Errorf("invalid board address %q: %w", target, err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return "", fmt.Errorf("invalid board address %q: unsupported scheme %s", target, u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("invalid board address %q: missing host", target)
	}
	if u.Path == "" {
		u.Path = "/ws"
	}
	return u.String(), nil
}
