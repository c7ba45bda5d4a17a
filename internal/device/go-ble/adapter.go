package goble

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	macAddressPattern = regexp.MustCompile(`^[0-9A-Fa-f]{2}([:-][0-9A-Fa-f]{2}){5}$`)
	// CoreBluetooth identifies peripherals by a per-host UUID instead of a MAC.
	peripheralUUIDPattern = regexp.MustCompile(`^[0-9A-Fa-f]{8}-[0-9A-Fa-f]{4}-[0-9A-Fa-f]{4}-[0-9A-Fa-f]{4}-[0-9A-Fa-f]{12}$`)
)

// AdapterIndex converts an adapter name ("hci0", "hci1", "0") into its HCI device index.
// An empty name selects the first adapter.
func AdapterIndex(adapter string) (int, error) {
	name := strings.TrimSpace(adapter)
	if name == "" {
		return 0, nil
	}
	id, err := strconv.Atoi(strings.TrimPrefix(name, "hci"))
	if err != nil || id < 0 {
		return 0, fmt.Errorf("invalid adapter %q: expected hciN", adapter)
	}
	return id, nil
}

// IsTransportAddress reports whether s has the shape of a peripheral address the
// host stack can dial directly: a MAC address or a CoreBluetooth peripheral UUID.
func IsTransportAddress(s string) bool {
	return macAddressPattern.MatchString(s) || peripheralUUIDPattern.MatchString(s)
}
