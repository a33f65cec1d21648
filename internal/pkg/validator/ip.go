package validator

import (
	"net"
	"strings"
)

// NormalizeIP 规范化 IP 地址，移除 IPv6 的 zone identifier (fe80::1%eth0 -> fe80::1)
func NormalizeIP(ip string) string {
	if idx := strings.IndexByte(ip, '%'); idx != -1 {
		ip = ip[:idx]
	}
	if parsed := net.ParseIP(ip); parsed != nil {
		return parsed.String()
	}
	return ""
}
