// Package teaui is the terminal browser for a minderal session.
package teaui

import (
	"context"

	"github.com/rejonpardenilla/minderal/pkg/app"
)

// UI is the runner for `minderal ui`.
type UI struct {
	Session *app.Session
}

func (u *UI) Do(ctx context.Context) error {
	return Run(ctx, u.Session)
}
