package mocks

import (
	"github.com/stretchr/testify/mock"

	"streams-service/internal/models"
)

// NotifierMock records notification fan-out calls.
type NotifierMock struct {
	mock.Mock
}

func (m *NotifierMock) NotificationAdded(kind string, userID int, n models.Notification) {
	m.Called(kind, userID, n)
}
