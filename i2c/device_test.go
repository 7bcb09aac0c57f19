package i2c

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockI2CBus is a mock implementation of touch.I2CBus using testify/mock
type MockI2CBus struct {
	mock.Mock
}

func (m *MockI2CBus) WriteToAddr(ctx context.Context, address byte, buffer []byte) error {
	args := m.Called(ctx, address, buffer)
	return args.Error(0)
}

func (m *MockI2CBus) ReadFromAddr(ctx context.Context, address byte, buffer []byte) error {
	args := m.Called(ctx, address, buffer)
	if args.Get(0) != nil {
		if data, ok := args.Get(0).([]byte); ok && len(data) <= len(buffer) {
			copy(buffer, data)
		}
	}
	return args.Error(1)
}

func (m *MockI2CBus) Release(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func TestDevice_WriteRegister(t *testing.T) {
	bus := new(MockI2CBus)
	dev := NewDevice(bus, 0x41)
	ctx := context.Background()

	bus.On("WriteToAddr", mock.Anything, byte(0x41), []byte{0x03, 0x02}).Return(nil).Once()

	require.NoError(t, dev.WriteRegister(ctx, 0x03, 0x02))
	bus.AssertExpectations(t)
}

func TestDevice_ReadRegister(t *testing.T) {
	bus := new(MockI2CBus)
	dev := NewDevice(bus, 0x41)
	ctx := context.Background()

	// register select write, then the data read
	bus.On("WriteToAddr", mock.Anything, byte(0x41), []byte{0x40}).Return(nil).Once()
	bus.On("ReadFromAddr", mock.Anything, byte(0x41), mock.Anything).Return([]byte{0x81}, nil).Once()

	buf := make([]byte, 1)
	require.NoError(t, dev.ReadRegister(ctx, 0x40, buf))
	assert.Equal(t, byte(0x81), buf[0])
	bus.AssertExpectations(t)
}

func TestDevice_ErrorPropagation(t *testing.T) {
	tests := []struct {
		name          string
		setupMock     func(*MockI2CBus)
		run           func(*Device, context.Context) error
		expectedError string
	}{
		{
			name: "write error",
			setupMock: func(bus *MockI2CBus) {
				bus.On("WriteToAddr", mock.Anything, byte(0x41), mock.Anything).
					Return(errors.New("i2c write failed")).Once()
			},
			run: func(d *Device, ctx context.Context) error {
				return d.WriteRegister(ctx, 0x0B, 0xFF)
			},
			expectedError: "could not write register 0xb: i2c write failed",
		},
		{
			name: "register select error",
			setupMock: func(bus *MockI2CBus) {
				bus.On("WriteToAddr", mock.Anything, byte(0x41), mock.Anything).
					Return(errors.New("i2c write failed")).Once()
			},
			run: func(d *Device, ctx context.Context) error {
				return d.ReadRegister(ctx, 0x4B, make([]byte, 1))
			},
			expectedError: "could not select register 0x4b: i2c write failed",
		},
		{
			name: "read error after select",
			setupMock: func(bus *MockI2CBus) {
				bus.On("WriteToAddr", mock.Anything, byte(0x41), mock.Anything).
					Return(nil).Once()
				bus.On("ReadFromAddr", mock.Anything, byte(0x41), mock.Anything).
					Return(nil, errors.New("i2c read failed")).Once()
			},
			run: func(d *Device, ctx context.Context) error {
				return d.ReadRegister(ctx, 0x4B, make([]byte, 1))
			},
			expectedError: "could not read register 0x4b: i2c read failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bus := new(MockI2CBus)
			dev := NewDevice(bus, 0x41)
			tt.setupMock(bus)

			err := tt.run(dev, context.Background())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expectedError)
			bus.AssertExpectations(t)
		})
	}
}

func TestDevice_Release(t *testing.T) {
	bus := new(MockI2CBus)
	dev := NewDevice(bus, 0x41)
	bus.On("Release", mock.Anything).Return(nil).Once()
	require.NoError(t, dev.Release(context.Background()))
	bus.AssertExpectations(t)
}
