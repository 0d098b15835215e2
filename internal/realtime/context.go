package realtime

import (
	"context"

	"golang.org/x/net/websocket"
)

type userIDContextKey struct{}

func withUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDContextKey{}, userID)
}

func userIDFromConn(conn *websocket.Conn) string {
	req := conn.Request()
	if req == nil {
		return ""
	}
	userID, _ := req.Context().Value(userIDContextKey{}).(string)
	return userID
}
