// Package device defines the boundary between the shell and the Bluetooth Low
// Energy host stack.
//
// The shell never talks to a radio directly. It discovers peripherals and opens
// GATT connections through a Stack, and performs characteristic operations on
// the returned Connection:
//   - Discovery with a bounded duration, results in discovery order
//   - Connection by transport address
//   - Service/characteristic enumeration with property names
//   - Characteristic read, write and notification subscription
//
// The go-ble backed implementation lives in the goble subpackage.
package device
