// Package wol builds and sends Wake-on-LAN magic packets.
package wol

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"net"
	"strings"
)

// DefaultAddr is the limited broadcast address on the echo port.
const DefaultAddr = "255.255.255.255:7"

const (
	macLen    = 6
	repeatMac = 16
	// PacketLen is the length of a magic packet: 6 sync bytes and 16 MAC repetitions.
	PacketLen = macLen + macLen*repeatMac
)

var ErrInvalidMAC = errors.New("invalid mac address")

type MAC [macLen]byte

func (m MAC) String() string {
	return net.HardwareAddr(m[:]).String()
}

// ParseMAC accepts aa:bb:cc:dd:ee:ff, aa-bb-cc-dd-ee-ff, or aabbccddeeff.
func ParseMAC(s string) (MAC, error) {
	var mac MAC
	raw := strings.NewReplacer(":", "", "-", "", ".", "").Replace(strings.TrimSpace(s))
	if len(raw) != macLen*2 {
		return mac, fmt.Errorf("%w: %q", ErrInvalidMAC, s)
	}
	if _, err := hex.Decode(mac[:], []byte(raw)); err != nil {
		return mac, fmt.Errorf("%w: %q: %v", ErrInvalidMAC, s, err)
	}
	return mac, nil
}

func MagicPacket(mac MAC) []byte {
	packet := make([]byte, 0, PacketLen)
	for i := 0; i < macLen; i++ {
		packet = append(packet, 0xFF)
	}
	for i := 0; i < repeatMac; i++ {
		packet = append(packet, mac[:]...)
	}
	return packet
}

// Send sends a magic packet for mac to addr over UDP. Empty addr means DefaultAddr.
func Send(ctx context.Context, mac MAC, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}
	var d net.Dialer
	conn, err := d.DialContext(ctx, "udp", addr)
	if err != nil {
		return fmt.Errorf("wol: dial %s: %w", addr, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetWriteDeadline(deadline)
	}
	if _, err := conn.Write(MagicPacket(mac)); err != nil {
		return fmt.Errorf("wol: send to %s: %w", addr, err)
	}
	return nil
}
