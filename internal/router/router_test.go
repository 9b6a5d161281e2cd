package router

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"rewaq/internal/clock"
	"rewaq/internal/engine"
	"rewaq/internal/ledger"
	"rewaq/internal/roster"
)

type fakeAssistant struct {
	calls int
	reply string
	err   error
}

func (f *fakeAssistant) Reply(ctx context.Context, userText string) (string, error) {
	f.calls++
	return f.reply, f.err
}

func newRouter(a *fakeAssistant) *Router {
	members := roster.New([]roster.Participant{{ID: "RA-001", DisplayName: "سارة"}})
	at := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	eng := engine.New(members, ledger.NewMemory(), nil, clock.NewFixed(at))
	return New(eng, a, nil)
}

func TestDispatchStaticCommands(t *testing.T) {
	r := newRouter(&fakeAssistant{})

	if got := r.Dispatch(context.Background(), "/start"); got != welcomeText {
		t.Errorf("/start reply = %q", got)
	}
	if got := r.Dispatch(context.Background(), "/help"); got != helpText {
		t.Errorf("/help reply = %q", got)
	}
}

func TestDispatchAttendanceFlow(t *testing.T) {
	assist := &fakeAssistant{}
	r := newRouter(assist)
	ctx := context.Background()

	reply := r.Dispatch(ctx, "/in RA-001")
	if !strings.Contains(reply, "سارة") || !strings.Contains(reply, "✅") {
		t.Errorf("check-in reply = %q, want success naming سارة", reply)
	}

	reply = r.Dispatch(ctx, "/in RA-001")
	if !strings.Contains(reply, "بالفعل") {
		t.Errorf("repeat check-in reply = %q, want already-checked-in notice", reply)
	}

	reply = r.Dispatch(ctx, "/out RA-001")
	if !strings.Contains(reply, "خروجكِ") {
		t.Errorf("check-out reply = %q, want success", reply)
	}

	reply = r.Dispatch(ctx, "/out RA-001")
	if !strings.Contains(reply, "الخروج بالفعل") {
		t.Errorf("repeat check-out reply = %q, want already-checked-out notice", reply)
	}

	if reply := r.Dispatch(ctx, "/in RA-002"); reply != notRegisteredText {
		t.Errorf("unknown user reply = %q", reply)
	}

	if assist.calls != 0 {
		t.Errorf("assistant called %d times for structured commands", assist.calls)
	}
}

func TestDispatchMalformed(t *testing.T) {
	r := newRouter(&fakeAssistant{})
	ctx := context.Background()

	if got := r.Dispatch(ctx, "/in"); got != malformedInText {
		t.Errorf("bare /in reply = %q", got)
	}
	if got := r.Dispatch(ctx, "/out"); got != malformedOutText {
		t.Errorf("bare /out reply = %q", got)
	}
	if got := r.Dispatch(ctx, "/in RA-001 extra"); got != malformedInText {
		t.Errorf("three-token /in reply = %q", got)
	}
}

func TestKeywordGuardBlocksFallback(t *testing.T) {
	assist := &fakeAssistant{reply: "should not appear"}
	r := newRouter(assist)
	ctx := context.Background()

	for _, line := range []string{
		"كيف أسجل الحضور؟",
		"how do I check in?",
		"I forgot to checkout yesterday",
		"ما هو أمر تسجيل الدخول",
	} {
		if got := r.Dispatch(ctx, line); got != guardText {
			t.Errorf("Dispatch(%q) = %q, want guard notice", line, got)
		}
	}
	if assist.calls != 0 {
		t.Errorf("assistant called %d times for guarded text", assist.calls)
	}
}

func TestFreeTextGoesToAssistant(t *testing.T) {
	assist := &fakeAssistant{reply: "رِواق يفتح من 9 صباحاً"}
	r := newRouter(assist)

	got := r.Dispatch(context.Background(), "متى تفتحون؟")
	if got != assist.reply {
		t.Errorf("fallback reply = %q, want %q", got, assist.reply)
	}
	if assist.calls != 1 {
		t.Errorf("assistant calls = %d, want 1", assist.calls)
	}
}

func TestAssistantFailureYieldsApology(t *testing.T) {
	assist := &fakeAssistant{err: errors.New("upstream 500")}
	r := newRouter(assist)

	got := r.Dispatch(context.Background(), "متى تفتحون؟")
	if got != assistantDownText {
		t.Errorf("reply on assistant failure = %q, want fixed apology", got)
	}
}
