package handlers

import (
	"context"
	"net/http"
)

// getParam returns a path or query parameter value whether pat stored it
// with a leading colon or net/http exposes it through PathValue.
func getParam(r *http.Request, name string) string {
	if r == nil {
		return ""
	}

	if val := r.URL.Query().Get(":" + name); val != "" {
		return val
	}

	if val := r.URL.Query().Get(name); val != "" {
		return val
	}

	return r.PathValue(name)
}

type ctxKey string

const userIDKey ctxKey = "user_id"

// WithUserID stores the authenticated user id on the request context.
func WithUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}

func userIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}
