package common

import (
	"context"
)

// ViewerContext holds per-request viewer identity resolved from a bearer
// token. When absent (nil), the server operates in open mode.
type ViewerContext struct {
	Subject  string
	ClientID string
}

type contextKey int

const viewerContextKey contextKey = iota

// WithViewerContext stores a ViewerContext in the request context.
func WithViewerContext(ctx context.Context, vc *ViewerContext) context.Context {
	return context.WithValue(ctx, viewerContextKey, vc)
}

// ViewerContextFromContext retrieves the ViewerContext from context, or nil if absent.
func ViewerContextFromContext(ctx context.Context) *ViewerContext {
	vc, _ := ctx.Value(viewerContextKey).(*ViewerContext)
	return vc
}

// ResolveSubject returns the viewer subject from context, or "anonymous"
// when no viewer context is present.
func ResolveSubject(ctx context.Context) string {
	if vc := ViewerContextFromContext(ctx); vc != nil && vc.Subject != "" {
		return vc.Subject
	}
	return "anonymous"
}
