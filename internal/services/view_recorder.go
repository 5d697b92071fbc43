package services

import (
	"context"
	"log"
	"time"
)

// ViewRecorder wraps the store's RecordView as a fire-and-forget side channel.
// A view is one page load; repeated loads by the same visitor (or the owner)
// each count. Failures are logged and swallowed so recording can never block
// or fail rendering.
type ViewRecorder struct {
	store   ProfileStore
	timeout time.Duration
}

func NewViewRecorder(store ProfileStore) *ViewRecorder {
	return &ViewRecorder{store: store, timeout: 5 * time.Second}
}

// RecordAsync records on a detached context so the increment survives the
// originating request ending first.
func (v *ViewRecorder) RecordAsync(profileID, referrer, userAgent string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), v.timeout)
		defer cancel()

		if err := v.store.RecordView(ctx, profileID, referrer, userAgent); err != nil {
			log.Printf("[ViewRecorder] profile=%s error=%v", profileID, err)
		}
	}()
}
