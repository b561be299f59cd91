package ratelimit

import (
	"testing"
	"time"
)

func TestLimiter_WindowAndReset(t *testing.T) {
	now := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	l := New(2, time.Minute)
	l.now = func() time.Time { return now }

	if !l.Allow("a") || !l.Allow("a") {
		t.Fatal("first two hits should pass")
	}
	if l.Allow("a") {
		t.Fatal("third hit should be limited")
	}
	if got := l.Remaining("a"); got != 0 {
		t.Errorf("Remaining = %d, want 0", got)
	}
	if !l.Allow("b") {
		t.Error("other keys are independent")
	}

	now = now.Add(61 * time.Second)
	if !l.Allow("a") {
		t.Error("window should have rolled over")
	}

	l.Reset("a")
	if got := l.Remaining("a"); got != 2 {
		t.Errorf("Remaining after reset = %d, want 2", got)
	}
}

func TestLimiter_Sweep(t *testing.T) {
	now := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	l := New(1, time.Minute)
	l.now = func() time.Time { return now }

	l.Allow("x")
	l.Allow("y")
	now = now.Add(2 * time.Minute)
	if n := l.Sweep(); n != 2 {
		t.Errorf("Sweep removed %d, want 2", n)
	}
}

func TestGuard_Login(t *testing.T) {
	g := NewGuard(Limits{LoginPerIP: 100, LoginPerEmail: 2})

	for i := 0; i < 2; i++ {
		if ok, _ := g.Login("10.0.0.1", "Ada@School.org "); !ok {
			t.Fatalf("attempt %d should pass", i+1)
		}
	}
	ok, msg := g.Login("10.0.0.2", "ada@school.org")
	if ok || msg == "" {
		t.Fatal("third attempt for the same email should be limited")
	}

	g.LoginSucceeded("ADA@school.org")
	if ok, _ := g.Login("10.0.0.3", "ada@school.org"); !ok {
		t.Error("success should clear the email counter")
	}
}

func TestGuard_Contact(t *testing.T) {
	g := NewGuard(Limits{ContactPerIP: 1})
	if ok, _ := g.Contact("1.2.3.4"); !ok {
		t.Fatal("first submission should pass")
	}
	if ok, _ := g.Contact("1.2.3.4"); ok {
		t.Error("second submission should be limited")
	}
}
