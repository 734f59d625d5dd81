package mocks

import (
	"github.com/robbyt/go-coffeescript/engine"
	"github.com/stretchr/testify/mock"
)

// Engine is a mock implementation of engine.Engine and engine.Initializer.
type Engine struct {
	mock.Mock
}

// Invoke is a mock implementation of the Invoke method.
func (m *Engine) Invoke(req *engine.Request) (string, error) {
	args := m.Called(req)
	return args.String(0), args.Error(1)
}

// Initialize is a mock implementation of the Initialize method.
func (m *Engine) Initialize() error {
	args := m.Called()
	return args.Error(0)
}
