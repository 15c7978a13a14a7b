package notify

import (
	"testing"
	"time"
)

func TestExpireTimeout(t *testing.T) {
	tests := []struct {
		timeout time.Duration
		want    int32
	}{
		{0, -1},
		{-1, 0},
		{5 * time.Second, 5000},
	}
	for _, tt := range tests {
		if got := (Notification{Timeout: tt.timeout}).expireTimeout(); got != tt.want {
			t.Errorf("expireTimeout(%v) = %d, want %d", tt.timeout, got, tt.want)
		}
	}
}
