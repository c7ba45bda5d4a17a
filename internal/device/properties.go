package device

import "strings"

// Properties is the GATT characteristic properties bit field as defined by the
// Bluetooth Core specification (Vol 3, Part G, 3.3.1.1).
type Properties uint8

const (
	PropBroadcast Properties = 1 << iota
	PropRead
	PropWriteWithoutResponse
	PropWrite
	PropNotify
	PropIndicate
	PropAuthenticatedSignedWrites
	PropExtendedProperties
)

var propertyNames = []struct {
	prop Properties
	name string
}{
	{PropBroadcast, "broadcast"},
	{PropRead, "read"},
	{PropWriteWithoutResponse, "write-without-response"},
	{PropWrite, "write"},
	{PropNotify, "notify"},
	{PropIndicate, "indicate"},
	{PropAuthenticatedSignedWrites, "authenticated-signed-writes"},
	{PropExtendedProperties, "extended-properties"},
}

// Has reports whether all bits of p are set.
func (ps Properties) Has(p Properties) bool {
	return ps&p == p
}

// CanWrite reports whether the characteristic accepts writes in either mode.
func (ps Properties) CanWrite() bool {
	return ps&(PropWrite|PropWriteWithoutResponse) != 0
}

// CanSubscribe reports whether the characteristic can push values.
func (ps Properties) CanSubscribe() bool {
	return ps&(PropNotify|PropIndicate) != 0
}

// Names returns the property names in bit order.
func (ps Properties) Names() []string {
	names := make([]string, 0, len(propertyNames))
	for _, p := range propertyNames {
		if ps.Has(p.prop) {
			names = append(names, p.name)
		}
	}
	return names
}

func (ps Properties) String() string {
	return strings.Join(ps.Names(), ",")
}
