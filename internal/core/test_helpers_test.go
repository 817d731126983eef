package core

import (
	"testing"
	"time"
)

func mustNotice(t *testing.T, ch <-chan Notice, kind NoticeKind) Notice {
	t.Helper()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case n := <-ch:
			if n.Kind == kind {
				return n
			}
		case <-deadline:
			t.Fatalf("expected notice kind %v not received", kind)
		}
	}
}
