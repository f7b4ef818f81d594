package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap/zaptest"
)

// Mock для nats.Conn
type mockNATSConn struct {
	publishFunc   func(subj string, data []byte) error
	subscribeFunc func(subj string, cb nats.MsgHandler) (*nats.Subscription, error)
	closeFunc     func()
}

func (m *mockNATSConn) Publish(subj string, data []byte) error {
	if m.publishFunc != nil {
		return m.publishFunc(subj, data)
	}
	return nil
}

func (m *mockNATSConn) Subscribe(subj string, cb nats.MsgHandler) (*nats.Subscription, error) {
	if m.subscribeFunc != nil {
		return m.subscribeFunc(subj, cb)
	}
	return &nats.Subscription{}, nil
}

func (m *mockNATSConn) Close() {
	if m.closeFunc != nil {
		m.closeFunc()
	}
}

func TestPublishLifecycleEvent(t *testing.T) {
	occurred := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name            string
		event           LifecycleEvent
		publishError    error
		expectedSubject string
		expectedError   string
	}{
		{
			name: "verification_submit",
			event: LifecycleEvent{
				Resource:       "verification",
				VerificationID: "DV-001",
				Status:         "submitted",
				Action:         "submit",
				ActorID:        "user-1",
				OccurredAt:     occurred,
			},
			expectedSubject: "verification.submit",
		},
		{
			name: "category_approve",
			event: LifecycleEvent{
				Resource:       "category",
				VerificationID: "2",
				Status:         "approved",
				Action:         "approve",
				ActorID:        "admin-1",
			},
			expectedSubject: "category.approve",
		},
		{
			name: "publish_error",
			event: LifecycleEvent{
				Resource:       "verification",
				VerificationID: "DV-001",
				Action:         "create",
			},
			publishError:  errors.New("nats connection failed"),
			expectedError: "failed to publish lifecycle event",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var publishedData []byte
			var publishedSubject string

			mockConn := &mockNATSConn{
				publishFunc: func(subj string, data []byte) error {
					publishedSubject = subj
					publishedData = data
					return tt.publishError
				},
			}

			client := newNATSClient(mockConn, zaptest.NewLogger(t))
			err := client.PublishLifecycleEvent(context.Background(), tt.event)

			if tt.expectedError != "" {
				if err == nil {
					t.Errorf("expected error containing '%s', but got nil", tt.expectedError)
					return
				}
				if !containsError(err.Error(), tt.expectedError) {
					t.Errorf("expected error containing '%s', but got '%s'", tt.expectedError, err.Error())
				}
				return
			}

			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}

			if publishedSubject != tt.expectedSubject {
				t.Errorf("expected subject '%s', but got '%s'", tt.expectedSubject, publishedSubject)
			}

			var msg LifecycleEvent
			if err := json.Unmarshal(publishedData, &msg); err != nil {
				t.Fatalf("failed to unmarshal published message: %v", err)
			}

			if msg.VerificationID != tt.event.VerificationID {
				t.Errorf("expected verification ID '%s', but got '%s'", tt.event.VerificationID, msg.VerificationID)
			}
			if msg.Action != tt.event.Action || msg.Status != tt.event.Status {
				t.Errorf("unexpected action/status: %s/%s", msg.Action, msg.Status)
			}
			// id и время проставляются, если не заданы
			if msg.ID == "" {
				t.Error("expected event id to be generated")
			}
			if msg.OccurredAt.IsZero() {
				t.Error("expected occurredAt to be set")
			}
			if !tt.event.OccurredAt.IsZero() && !msg.OccurredAt.Equal(tt.event.OccurredAt) {
				t.Errorf("expected occurredAt %v, got %v", tt.event.OccurredAt, msg.OccurredAt)
			}
		})
	}
}

func TestSubscribeToReviewed(t *testing.T) {
	tests := []struct {
		name            string
		subscribeError  error
		expectedError   string
		messageToHandle *ReviewedMessage
	}{
		{
			name: "successful_subscribe",
			messageToHandle: &ReviewedMessage{
				VerificationID: "DV-002",
				Status:         "approved",
			},
		},
		{
			name:           "subscribe_error",
			subscribeError: errors.New("failed to subscribe"),
			expectedError:  "failed to subscribe to reviewed messages",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var received *ReviewedMessage
			var subscribedSubject string
			var messageHandler nats.MsgHandler

			mockConn := &mockNATSConn{
				subscribeFunc: func(subj string, cb nats.MsgHandler) (*nats.Subscription, error) {
					subscribedSubject = subj
					messageHandler = cb
					return &nats.Subscription{}, tt.subscribeError
				},
			}

			client := newNATSClient(mockConn, zaptest.NewLogger(t))
			err := client.SubscribeToReviewed(context.Background(), func(msg ReviewedMessage) {
				received = &msg
			})

			if tt.expectedError != "" {
				if err == nil || !containsError(err.Error(), tt.expectedError) {
					t.Errorf("expected error containing '%s', but got %v", tt.expectedError, err)
				}
				return
			}

			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}

			if subscribedSubject != SubjectReviewed {
				t.Errorf("expected subject '%s', but got '%s'", SubjectReviewed, subscribedSubject)
			}

			msgData, _ := json.Marshal(tt.messageToHandle)
			messageHandler(&nats.Msg{Data: msgData})

			if received == nil {
				t.Fatal("expected handler to be called, but it wasn't")
			}
			if received.VerificationID != tt.messageToHandle.VerificationID {
				t.Errorf("expected verification ID '%s', but got '%s'", tt.messageToHandle.VerificationID, received.VerificationID)
			}
			if received.Status != tt.messageToHandle.Status {
				t.Errorf("expected status '%s', but got '%s'", tt.messageToHandle.Status, received.Status)
			}
		})
	}
}

func TestSubscribeToReviewedDropsInvalidMessages(t *testing.T) {
	var messageHandler nats.MsgHandler

	mockConn := &mockNATSConn{
		subscribeFunc: func(subj string, cb nats.MsgHandler) (*nats.Subscription, error) {
			messageHandler = cb
			return &nats.Subscription{}, nil
		},
	}

	client := newNATSClient(mockConn, zaptest.NewLogger(t))

	var handlerCalled bool
	if err := client.SubscribeToReviewed(context.Background(), func(ReviewedMessage) { handlerCalled = true }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	messageHandler(&nats.Msg{Data: []byte("invalid json")})
	messageHandler(&nats.Msg{Data: []byte(`{"status":"approved"}`)})

	// Обработчик не должен быть вызван для невалидных сообщений
	if handlerCalled {
		t.Error("handler should not be called for invalid message")
	}
}

func TestClose(t *testing.T) {
	var closeCalled bool

	mockConn := &mockNATSConn{
		closeFunc: func() {
			closeCalled = true
		},
	}

	client := newNATSClient(mockConn, zaptest.NewLogger(t))
	client.Close()

	if !closeCalled {
		t.Error("expected Close to be called on connection, but it wasn't")
	}
}

func TestCloseWithNilConnection(t *testing.T) {
	client := &natsClient{
		conn:   nil,
		logger: zaptest.NewLogger(t),
	}

	// Не должно паниковать при nil connection
	client.Close()
}

// Вспомогательная функция для проверки содержания ошибки
func containsError(got, want string) bool {
	return len(got) > 0 && len(want) > 0 && (got == want ||
		(len(got) >= len(want) && got[:len(want)] == want))
}
