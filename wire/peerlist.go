package wire

import (
	"fmt"
	"strconv"
	"strings"
)

// PeerAddr is a miner's dialable address as broadcast by the tracker.
type PeerAddr struct {
	IP   string
	Port string
}

// EncodePeerList renders peers as the semicolon-separated packet described
// in spec §6.2: each entry is `('<ip>', '<port>')`, the exact textual form
// Python produces for a 2-tuple of strings. An empty peers slice yields the
// empty string, meaning "you are the only known miner".
func EncodePeerList(peers []PeerAddr) string {
	parts := make([]string, len(peers))
	for i, p := range peers {
		parts[i] = fmt.Sprintf("('%s', '%s')", p.IP, p.Port)
	}
	return strings.Join(parts, ";")
}

// DecodePeerList parses the packet produced by EncodePeerList. This is
// deliberately a direct port of the reference's string-slicing approach
// (miner.py's handle_tracker / trader.py's tracker_thread), since spec §9
// requires byte-for-byte acceptance of this exact fragile format rather
// than a cleaner encoding.
func DecodePeerList(packet string) []PeerAddr {
	if packet == "" {
		return nil
	}
	entries := strings.Split(packet, ";")
	peers := make([]PeerAddr, 0, len(entries))
	for _, entry := range entries {
		fields := strings.SplitN(entry, ",", 2)
		if len(fields) != 2 {
			continue
		}
		ip := strings.Trim(strings.TrimSpace(fields[0]), "()'")
		port := strings.Trim(strings.TrimSpace(fields[1]), "()'")
		peers = append(peers, PeerAddr{IP: ip, Port: port})
	}
	return peers
}

// EncodeWalletDirectory renders the tracker->miner wallet packet (type 9,
// direction: tracker->miner) described in spec §6.3:
// "<all_wallets>;<active_wallets>", each field comma-separated.
func EncodeWalletDirectory(all, active []string) string {
	return strings.Join(all, ",") + ";" + strings.Join(active, ",")
}

// DecodeWalletDirectory parses the packet produced by EncodeWalletDirectory.
// Empty entries resulting from splitting an empty field are discarded, per
// spec §6.3.
func DecodeWalletDirectory(packet string) (all, active []string) {
	fields := strings.SplitN(packet, ";", 2)
	all = splitNonEmpty(fields[0])
	if len(fields) > 1 {
		active = splitNonEmpty(fields[1])
	}
	return all, active
}

func splitNonEmpty(s string) []string {
	if s == "" {
		return nil
	}
	out := make([]string, 0)
	for _, part := range strings.Split(s, ",") {
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// TraderRegistration is the trader->tracker payload for both type 8
// (register) and the trader-direction half of type 9 (unregister):
// "<port>,<wallet>".
type TraderRegistration struct {
	Port   string
	Wallet string
}

// EncodeTraderRegistration formats the "<port>,<wallet>" payload.
func EncodeTraderRegistration(port, wallet string) string {
	return port + "," + wallet
}

// DecodeTraderRegistration parses the "<port>,<wallet>" payload sent with
// message types 8 and 9 (trader direction).
func DecodeTraderRegistration(payload string) (TraderRegistration, bool) {
	parts := strings.SplitN(payload, ",", 2)
	if len(parts) != 2 {
		return TraderRegistration{}, false
	}
	return TraderRegistration{Port: parts[0], Wallet: parts[1]}, true
}

// ParsePort is a small convenience used when a listen-port string (type 5
// payload, or a registration's Port field) needs to become a number.
func ParsePort(s string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(s))
}
