package xflake

import (
	"errors"
	"fmt"
	"net"
	"net/netip"
	"os"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// 测试注入点
var (
	osHostname        = os.Hostname
	netInterfaceAddrs = net.InterfaceAddrs
)

const (
	// EnvInstance 直接指定实例号的环境变量（0-1023）。
	EnvInstance = "XFLAKE_INSTANCE"
	// EnvPodName K8s Pod 名称（Downward API 注入）。
	EnvPodName = "POD_NAME"
	// EnvHostname 主机名环境变量。
	EnvHostname = "HOSTNAME"
)

// DefaultInstance 解析本进程的实例号，按以下优先级尝试：
//
//  1. XFLAKE_INSTANCE 环境变量（0-1023，格式错误或越界直接返回错误）
//  2. POD_NAME 的哈希
//  3. HOSTNAME 环境变量的哈希
//  4. os.Hostname() 的哈希
//  5. 私有 IPv4 地址的低 10 位
//
// 哈希策略（2-4）在 1024 个槽位上存在碰撞风险：32 个节点的碰撞概率约 38%。
// 多节点部署应通过 XFLAKE_INSTANCE 显式分配。
func DefaultInstance() (int64, error) {
	if s := os.Getenv(EnvInstance); s != "" {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("xflake: invalid %s value %q: %w", EnvInstance, s, err)
		}
		if err := checkRange(FieldInstance, id, 0, MaxInstance); err != nil {
			return 0, fmt.Errorf("xflake: invalid %s value: %w", EnvInstance, err)
		}
		return id, nil
	}

	for _, env := range []string{EnvPodName, EnvHostname} {
		if v := os.Getenv(env); v != "" {
			return hashToInstance(v), nil
		}
	}

	hostnameID, hostnameErr := instanceFromOSHostname()
	if hostnameErr == nil {
		return hostnameID, nil
	}

	id, err := instanceFromPrivateIP()
	if err != nil {
		return 0, fmt.Errorf("xflake: all instance strategies exhausted (os-hostname: %v): %w", hostnameErr, err)
	}
	return id, nil
}

func instanceFromOSHostname() (int64, error) {
	hostname, err := osHostname()
	if err != nil {
		return 0, err
	}
	if hostname == "" {
		return 0, errors.New("os.Hostname returned empty string")
	}
	return hashToInstance(hostname), nil
}

// instanceFromPrivateIP 取私有 IPv4 的低 10 位。
// 多网卡环境下枚举顺序依赖操作系统，重启后可能变化。
func instanceFromPrivateIP() (int64, error) {
	ip, err := privateIPv4()
	if err != nil {
		return 0, err
	}
	b := ip.As4()
	return (int64(b[2])<<8 | int64(b[3])) & MaxInstance, nil
}

// hashToInstance 将 64 位 xxhash 逐段异或折叠为 10 位。
func hashToInstance(s string) int64 {
	h := xxhash.Sum64String(s)
	var folded uint64
	for h != 0 {
		folded ^= h & uint64(MaxInstance)
		h >>= InstanceBits
	}
	return int64(folded)
}

func privateIPv4() (netip.Addr, error) {
	addrs, err := netInterfaceAddrs()
	if err != nil {
		return netip.Addr{}, err
	}
	for _, addr := range addrs {
		ipnet, ok := addr.(*net.IPNet)
		if !ok {
			continue
		}
		ip, ok := netip.AddrFromSlice(ipnet.IP)
		if !ok {
			continue
		}
		ip = ip.Unmap()
		if ip.Is4() && !ip.IsLoopback() && (ip.IsPrivate() || ip.IsLinkLocalUnicast()) {
			return ip, nil
		}
	}
	return netip.Addr{}, ErrNoPrivateAddress
}
