package webhooks

import (
	"context"
	"testing"
	"time"
)

func burstPing(webhookID string) Ping {
	return Ping{
		Base:    PingRef{ID: "appBase1"},
		Webhook: PingRef{ID: webhookID},
	}
}

func TestBurstController_NoneAllowsEverything(t *testing.T) {
	controller := NewBurstController(BurstOptions{Mode: BurstModeNone})
	for i := 0; i < 3; i++ {
		decision, err := controller.Allow(context.Background(), burstPing("achWebhook1"))
		if err != nil {
			t.Fatalf("allow: %v", err)
		}
		if !decision.Allow {
			t.Fatalf("expected ping %d to be allowed", i)
		}
	}
}

func TestBurstController_CoalesceSuppressesWithinWindow(t *testing.T) {
	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	controller := NewBurstController(BurstOptions{
		Mode:   BurstModeCoalesce,
		Window: 2 * time.Second,
		Now:    func() time.Time { return clock },
	})

	first, err := controller.Allow(context.Background(), burstPing("achWebhook1"))
	if err != nil || !first.Allow {
		t.Fatalf("expected first ping allowed, got %+v err=%v", first, err)
	}

	clock = clock.Add(500 * time.Millisecond)
	second, err := controller.Allow(context.Background(), burstPing("achWebhook1"))
	if err != nil {
		t.Fatalf("allow: %v", err)
	}
	if second.Allow {
		t.Fatalf("expected ping inside window to be suppressed")
	}
	if second.Metadata["coalesced"] != true {
		t.Fatalf("expected coalesced metadata, got %v", second.Metadata)
	}
	if second.Metadata["burst_key"] != "appbase1:achWebhook1" {
		t.Fatalf("unexpected burst key: %v", second.Metadata["burst_key"])
	}

	// coalesce anchors the window at the first ping, so 2s after it the
	// next ping goes through even though one arrived in between
	clock = clock.Add(1600 * time.Millisecond)
	third, err := controller.Allow(context.Background(), burstPing("achWebhook1"))
	if err != nil || !third.Allow {
		t.Fatalf("expected ping after window to be allowed, got %+v err=%v", third, err)
	}
}

func TestBurstController_DebounceRestartsWindow(t *testing.T) {
	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	controller := NewBurstController(BurstOptions{
		Mode:   BurstModeDebounce,
		Window: 2 * time.Second,
		Now:    func() time.Time { return clock },
	})

	if decision, _ := controller.Allow(context.Background(), burstPing("achWebhook1")); !decision.Allow {
		t.Fatalf("expected first ping allowed")
	}

	// each suppressed ping restarts the window, so a steady stream never
	// gets through until it quiets down
	for i := 0; i < 3; i++ {
		clock = clock.Add(1500 * time.Millisecond)
		decision, err := controller.Allow(context.Background(), burstPing("achWebhook1"))
		if err != nil {
			t.Fatalf("allow: %v", err)
		}
		if decision.Allow {
			t.Fatalf("expected streamed ping %d to stay suppressed", i)
		}
	}

	clock = clock.Add(2500 * time.Millisecond)
	decision, err := controller.Allow(context.Background(), burstPing("achWebhook1"))
	if err != nil || !decision.Allow {
		t.Fatalf("expected ping after quiet period to be allowed, got %+v err=%v", decision, err)
	}
}

func TestBurstController_IndependentKeys(t *testing.T) {
	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	controller := NewBurstController(BurstOptions{
		Mode:   BurstModeCoalesce,
		Window: 2 * time.Second,
		Now:    func() time.Time { return clock },
	})

	if decision, _ := controller.Allow(context.Background(), burstPing("achWebhook1")); !decision.Allow {
		t.Fatalf("expected first webhook allowed")
	}
	if decision, _ := controller.Allow(context.Background(), burstPing("achWebhook2")); !decision.Allow {
		t.Fatalf("expected different webhook to be allowed inside the other's window")
	}
}

func TestBurstController_MissingWebhookIDAllows(t *testing.T) {
	controller := NewBurstController(BurstOptions{Mode: BurstModeCoalesce, Window: time.Minute})
	for i := 0; i < 2; i++ {
		decision, err := controller.Allow(context.Background(), Ping{})
		if err != nil || !decision.Allow {
			t.Fatalf("expected keyless ping to be allowed, got %+v err=%v", decision, err)
		}
	}
}
