package service

import "context"

type viewerCtxKey struct{}

// WithViewer attaches the resolved viewer to a request context.
func WithViewer(ctx context.Context, viewer *Viewer) context.Context {
	return context.WithValue(ctx, viewerCtxKey{}, viewer)
}

// ViewerFrom returns the attached viewer, or nil for anonymous requests.
func ViewerFrom(ctx context.Context) *Viewer {
	viewer, _ := ctx.Value(viewerCtxKey{}).(*Viewer)
	return viewer
}

// ViewerID returns the signed-in user id, or "" for anonymous requests.
func ViewerID(ctx context.Context) string {
	if viewer := ViewerFrom(ctx); viewer != nil {
		return viewer.User.ID
	}
	return ""
}
