package websocket

import (
	"chatgraph/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// connLogger logs websocket lifecycle events with the connection identity.
type connLogger struct {
	logger *zap.Logger
}

func newConnLogger(l *logger.Logger) connLogger {
	if l == nil {
		return connLogger{logger: zap.NewNop()}
	}
	return connLogger{logger: l.Logger.With(zap.String("component", "websocket"))}
}

func (l connLogger) Debug(event string, userID uuid.UUID, clientID string, fields ...zap.Field) {
	allFields := append([]zap.Field{
		zap.String("event", event),
		zap.String("user_id", userID.String()),
		zap.String("client_id", clientID),
	}, fields...)
	l.logger.Debug("websocket_event", allFields...)
}

func (l connLogger) Error(event string, userID uuid.UUID, clientID string, err error, fields ...zap.Field) {
	allFields := append([]zap.Field{
		zap.String("event", event),
		zap.String("user_id", userID.String()),
		zap.String("client_id", clientID),
		zap.Error(err),
	}, fields...)
	l.logger.Error("websocket_error", allFields...)
}
