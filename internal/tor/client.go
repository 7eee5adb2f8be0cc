package tor

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"golang.org/x/net/proxy"
)

// checkProxyTimeout bounds the proxy connectivity check. It is short
// because the check only verifies the SOCKS5 handshake, it never routes
// an actual request through Tor.
const checkProxyTimeout = 2 * time.Second

// Client provides Tor network connectivity for darkweb engine queries.
// It wraps a SOCKS5 dialer and builds HTTP clients that route through it.
//
// Design decision: The client only needs the daemon's SOCKS port, so it
// works identically with an external Tor daemon and with the embedded one
// managed by EmbeddedTor. Daemon lifecycle stays out of this type.
type Client struct {
	// proxyAddress is the Tor SOCKS5 proxy address in "host:port" format.
	proxyAddress string

	// dialer is the SOCKS5 dialer, cached so every HTTP client built
	// from this Client shares it.
	dialer proxy.Dialer

	// timeout is the default timeout for HTTP clients built here.
	timeout time.Duration
}

// NewClient creates a Tor client for the given SOCKS5 proxy address.
//
// The proxyAddress must be in "host:port" format (e.g., "127.0.0.1:9050").
// The address format is validated but the proxy is not contacted; call
// CheckConnection to verify a daemon is actually listening there.
func NewClient(proxyAddress string, timeout time.Duration) (*Client, error) {
	if !isValidProxyAddress(proxyAddress) {
		return nil, ErrInvalidProxyAddress
	}

	// Tor's SOCKS port does not require authentication by default.
	dialer, err := proxy.SOCKS5("tcp", proxyAddress, nil, proxy.Direct)
	if err != nil {
		return nil, fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
	}

	return &Client{
		proxyAddress: proxyAddress,
		dialer:       dialer,
		timeout:      timeout,
	}, nil
}

// isValidProxyAddress checks if the address is in valid "host:port" format.
// The format is specific enough (no scheme, no path) that a full URL
// parser would accept inputs we want to reject.
func isValidProxyAddress(address string) bool {
	parts := strings.Split(address, ":")
	if len(parts) != 2 {
		return false
	}

	host := parts[0]
	port := parts[1]

	if host == "" || port == "" {
		return false
	}

	portNum := 0
	for _, c := range port {
		if c < '0' || c > '9' {
			return false
		}
		portNum = portNum*10 + int(c-'0')
		if portNum > 65535 {
			return false
		}
	}

	return portNum >= 1
}

// SOCKS5 protocol constants
const (
	socks5Version       = 0x05
	socks5AuthNone      = 0x00
	socks5AuthNoAccept  = 0xFF
	socks5CmdConnect    = 0x01
	socks5AddrTypeDomID = 0x03

	// socks5TestOnion is a synthetic .onion address used for SOCKS5
	// verification. It intentionally does not exist: we only need the
	// proxy to process a CONNECT request, not to reach anything.
	socks5TestOnion = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa.onion"
)

// CheckConnection verifies that the Tor proxy is running and accessible.
//
// The check performs a real SOCKS5 handshake rather than a string match:
// version negotiation, auth method selection, and a CONNECT request for a
// synthetic onion host. A fake proxy cannot easily mimic all three steps.
func (c *Client) CheckConnection(ctx context.Context) ProxyStatus {
	ctx, cancel := context.WithTimeout(ctx, checkProxyTimeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", c.proxyAddress)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return ProxyStatusTimeout
		}
		return ProxyStatusCannotConnect
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(checkProxyTimeout)); err != nil {
		return ProxyStatusCannotConnect
	}

	// Version negotiation: offer no-authentication only.
	_, err = conn.Write([]byte{socks5Version, 0x01, socks5AuthNone})
	if err != nil {
		return ProxyStatusCannotConnect
	}

	authResp := make([]byte, 2)
	if _, err := io.ReadFull(conn, authResp); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ProxyStatusTimeout
		}
		return ProxyStatusWrongType
	}

	version := authResp[0]
	authMethod := authResp[1]

	if version != socks5Version {
		return ProxyStatusWrongType
	}
	if authMethod == socks5AuthNoAccept || authMethod != socks5AuthNone {
		// Tor's SOCKS port accepts unauthenticated clients by default,
		// so anything else is some other proxy.
		return ProxyStatusWrongType
	}

	// CONNECT to a synthetic onion host. The connection itself may fail,
	// the point is that the proxy processes the request.
	testOnion := socks5TestOnion
	testPort := uint16(80)

	connectReq := []byte{
		socks5Version,
		socks5CmdConnect,
		0x00, // reserved
		socks5AddrTypeDomID,
		byte(len(testOnion)),
	}
	connectReq = append(connectReq, []byte(testOnion)...)
	connectReq = append(connectReq, byte(testPort>>8), byte(testPort&0xFF))

	_, err = conn.Write(connectReq)
	if err != nil {
		return ProxyStatusCannotConnect
	}

	connectResp := make([]byte, 4)
	if _, err := io.ReadFull(conn, connectResp); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ProxyStatusTimeout
		}
		return ProxyStatusWrongType
	}

	if connectResp[0] != socks5Version {
		return ProxyStatusWrongType
	}

	// Any reply code counts. Tor answers 0x04 (host unreachable) or 0x01
	// (general failure) for the synthetic address, which still proves it
	// handled the SOCKS5 request.
	return ProxyStatusOK
}

// NewHTTPClient creates an HTTP client that routes all requests through
// the Tor proxy.
//
// Design decisions:
//   - TLS verification is disabled because hidden services use self-signed
//     certificates; the onion address itself authenticates the service.
//   - The connection pool is smaller than Go's defaults because each
//     connection occupies a Tor circuit.
//   - Compression is disabled so response sizes leak less about content.
func (c *Client) NewHTTPClient() *http.Client {
	transport := &http.Transport{
		DialContext: func(_ context.Context, network, addr string) (net.Conn, error) {
			return c.dialer.Dial(network, addr)
		},
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: true, //nolint:gosec // Required for .onion services
		},
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     30 * time.Second,
		DisableCompression:  true,
	}

	// Some onion search engines set session cookies across result pages.
	jar, _ := cookiejar.New(nil) //nolint:errcheck // cookiejar.New only fails with invalid options

	return &http.Client{
		Transport: transport,
		Timeout:   c.timeout,
		Jar:       jar,
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}
}

// ProxyAddress returns the configured proxy address.
func (c *Client) ProxyAddress() string {
	return c.proxyAddress
}

// NewHTTPClientWithHeaders creates a Tor HTTP client that sets the given
// headers on every request, including redirects. The darkweb searcher
// uses this to present a consistent User-Agent to every engine.
func (c *Client) NewHTTPClientWithHeaders(headers map[string]string) *http.Client {
	client := c.NewHTTPClient()
	client.Transport = &headerInjectingTransport{
		base:    client.Transport,
		headers: headers,
	}
	return client
}

// headerInjectingTransport wraps an http.RoundTripper to set headers on
// every outgoing request.
type headerInjectingTransport struct {
	base    http.RoundTripper
	headers map[string]string
}

// RoundTrip implements http.RoundTripper. The request is cloned first
// because RoundTrippers must not modify the original request.
func (t *headerInjectingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())

	for key, value := range t.headers {
		clone.Header.Set(key, value)
	}

	return t.base.RoundTrip(clone)
}
