package touchscreen

import (
	"context"
)

// PointBehaviorFunc defines the function signature for touch point behavior.
// It returns one decoded sample or an error.
type PointBehaviorFunc func(ctx context.Context) (TouchPoint, error)

// TouchedBehaviorFunc defines the function signature for touch detection
// behavior.
type TouchedBehaviorFunc func(ctx context.Context) (bool, error)

// MockTouchScreen is a mock implementation of a touch screen that uses
// behavior functions to produce results without requiring hardware.
// This can be used to mock controllers like the STMPE610.
type MockTouchScreen struct {
	pointBehavior   PointBehaviorFunc
	touchedBehavior TouchedBehaviorFunc
}

// NewMockTouchScreen creates a new mock touch screen with the given behavior
// functions. The point behavior is called by ReadPoint, the touched behavior
// by Touched, BufferEmpty and BufferSize.
//
// Example usage:
//
//	screen := NewMockTouchScreen(
//		func(ctx context.Context) (TouchPoint, error) { return TouchPoint{X: 100, Y: 200, Pressure: 50}, nil },
//		func(ctx context.Context) (bool, error) { return true, nil },
//	)
func NewMockTouchScreen(pointBehavior PointBehaviorFunc, touchedBehavior TouchedBehaviorFunc) *MockTouchScreen {
	return &MockTouchScreen{
		pointBehavior:   pointBehavior,
		touchedBehavior: touchedBehavior,
	}
}

// ReadPoint returns the next sample by calling the point behavior function.
func (m *MockTouchScreen) ReadPoint(ctx context.Context) (TouchPoint, error) {
	return m.pointBehavior(ctx)
}

// Touched reports touch activity by calling the touched behavior function.
func (m *MockTouchScreen) Touched(ctx context.Context) (bool, error) {
	return m.touchedBehavior(ctx)
}

// BufferEmpty reports the inverse of the touched behavior: a touched mock
// screen has one pending sample.
func (m *MockTouchScreen) BufferEmpty(ctx context.Context) (bool, error) {
	touched, err := m.touchedBehavior(ctx)
	return !touched, err
}

// BufferSize reports 1 while the touched behavior reports activity, 0
// otherwise.
func (m *MockTouchScreen) BufferSize(ctx context.Context) (uint8, error) {
	touched, err := m.touchedBehavior(ctx)
	if err != nil {
		return 0, err
	}
	if touched {
		return 1, nil
	}
	return 0, nil
}

// NewMockSTMPE610 creates a new mock STMPE610 controller (alias for
// NewMockTouchScreen).
func NewMockSTMPE610(pointBehavior PointBehaviorFunc, touchedBehavior TouchedBehaviorFunc) *MockTouchScreen {
	return NewMockTouchScreen(pointBehavior, touchedBehavior)
}
