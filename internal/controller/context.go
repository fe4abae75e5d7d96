package controller

import "context"

type contextKey int

const (
	connIdCtxKey contextKey = iota
	usernameCtxKey
)

func (c *controller) getConnIdFromCtx(ctx context.Context) string {
	connId, ok := ctx.Value(connIdCtxKey).(string)
	if !ok {
		return ""
	}

	return connId
}

func (c *controller) getUsernameFromCtx(ctx context.Context) string {
	username, ok := ctx.Value(usernameCtxKey).(string)
	if !ok {
		return ""
	}

	return username
}
