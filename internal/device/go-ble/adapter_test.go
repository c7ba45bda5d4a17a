package goble

import (
	"errors"
	"testing"

	"github.com/go-ble/ble"
	"github.com/srg/gyatt/internal/device"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdapterIndex(t *testing.T) {
	tests := []struct {
		name    string
		adapter string
		want    int
		wantErr bool
	}{
		{name: "empty selects first adapter", adapter: "", want: 0},
		{name: "hci0", adapter: "hci0", want: 0},
		{name: "hci1", adapter: "hci1", want: 1},
		{name: "bare index", adapter: "2", want: 2},
		{name: "garbage", adapter: "bluetooth", wantErr: true},
		{name: "negative", adapter: "hci-1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := AdapterIndex(tt.adapter)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsTransportAddress(t *testing.T) {
	assert.True(t, IsTransportAddress("AA:BB:CC:DD:EE:FF"))
	assert.True(t, IsTransportAddress("aa-bb-cc-dd-ee-ff"))
	assert.True(t, IsTransportAddress("5F0E1B2C-3D4E-5F60-7182-93A4B5C6D7E8"))
	assert.False(t, IsTransportAddress("MyWidget"))
	assert.False(t, IsTransportAddress("AA:BB:CC:DD:EE"))
	assert.False(t, IsTransportAddress(""))
}

func TestNewProperties(t *testing.T) {
	props := NewProperties(ble.CharRead | ble.CharWrite | ble.CharNotify)

	assert.True(t, props.Has(device.PropRead))
	assert.True(t, props.Has(device.PropWrite))
	assert.True(t, props.Has(device.PropNotify))
	assert.False(t, props.Has(device.PropIndicate))
	assert.Equal(t, "read,write,notify", props.String())
}

func TestNormalizeError(t *testing.T) {
	assert.Nil(t, NormalizeError(nil))

	err := NormalizeError(errors.New("central manager has invalid state: have=4 want=5: is Bluetooth turned on?"))
	assert.ErrorIs(t, err, device.ErrBluetoothOff)

	err = NormalizeError(errors.New("can't init hci: operation not permitted"))
	assert.True(t, device.IsConnectionState(err, device.NotInitialized))

	err = NormalizeError(errors.New("device not connected"))
	assert.ErrorIs(t, err, device.ErrNotConnected)

	plain := errors.New("att: invalid handle")
	assert.Equal(t, plain, NormalizeError(plain))
}
