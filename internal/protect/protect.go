// Package protect не дает серверу ходить по ссылкам пользователя во
// внутреннюю сеть (SSRF).
package protect

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"
)

var privateIPBlocks []*net.IPNet

func init() {
	for _, cidr := range []string{
		"0.0.0.0/8",      // "this" network
		"127.0.0.0/8",    // localhost
		"10.0.0.0/8",     // private network
		"172.16.0.0/12",  // private network
		"192.168.0.0/16", // private network
		"100.64.0.0/10",  // carrier-grade NAT
		"169.254.0.0/16", // link-local
		"::/128",         // IPv6 unspecified
		"::1/128",        // IPv6 loopback
		"fc00::/7",       // IPv6 unique local
		"fe80::/10",      // IPv6 link-local
	} {
		_, block, _ := net.ParseCIDR(cidr)
		privateIPBlocks = append(privateIPBlocks, block)
	}
}

// IsPrivateIP сообщает, относится ли адрес к внутренней сети.
// IPv4-mapped IPv6 адреса (::ffff:127.0.0.1) проверяются как IPv4.
func IsPrivateIP(ip net.IP) bool {
	if ip4 := ip.To4(); ip4 != nil {
		ip = ip4
	}
	for _, block := range privateIPBlocks {
		if block.Contains(ip) {
			return true
		}
	}
	return false
}

var ErrSSRF = errors.New("ssrf protection")

type lookupFunc func(host string) ([]net.IP, error)

// ReplaceHostToIP резолвит хост, проверяет ip, возвращает адрес в котором host заменен на ip.
// Возвращает любые ошибки которые возникаю при разрешении хоста. Если ip локальный, возвращает ошибку ErrSSRF.
func ReplaceHostToIP(addr string) (string, error) {
	return replaceHostToIP(addr, net.LookupIP)
}

func replaceHostToIP(addr string, lookup lookupFunc) (string, error) {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "", err
	}

	// Резолвим DNS
	ips, err := lookup(host)
	if err != nil {
		return "", err
	}
	if len(ips) == 0 {
		return "", fmt.Errorf("no IP addresses found for %s", host)
	}

	for _, ip := range ips {
		if IsPrivateIP(ip) {
			return "", fmt.Errorf("%w: private IP %s is not allowed", ErrSSRF, ip)
		}
	}

	return net.JoinHostPort(ips[0].String(), port), nil
}

// DialContext оборачивает dialer: соединение открывается только с публичным адресом.
func DialContext(dialer *net.Dialer) func(ctx context.Context, network, addr string) (net.Conn, error) {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		addr, err := ReplaceHostToIP(addr)
		if err != nil {
			return nil, err
		}
		return dialer.DialContext(ctx, network, addr)
	}
}

// NewHTTPClient создаёт клиент с разумными таймаутами для загрузки медиа и защитой от SSRF.
func NewHTTPClient() *http.Client {
	dialer := &net.Dialer{
		Timeout:   5 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	return &http.Client{
		Transport: &http.Transport{
			DialContext:           DialContext(dialer),
			ForceAttemptHTTP2:     true,
			TLSHandshakeTimeout:   10 * time.Second,
			ResponseHeaderTimeout: 10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
			MaxIdleConns:          100,
			IdleConnTimeout:       90 * time.Second,
		},
	}
}
