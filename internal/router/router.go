package router

import (
	"context"
	"log"
	"strings"

	"rewaq/internal/engine"
	"rewaq/internal/metrics"
)

// Assistant answers free-text questions. Implemented by assistant.Client.
type Assistant interface {
	Reply(ctx context.Context, userText string) (string, error)
}

// Reply texts. The engine only produces tagged outcomes; all presentation
// lives here, matching the bot's Arabic voice.
const (
	welcomeText = "👋 مرحباً! أنا بوت رِواق، هنا لمساعدتك في تسجيل الحضور. استخدم /help لمعرفة المزيد."
	helpText    = "مرحباً بكِ في دليل بوت رِواق:\n/in <user_id> - تسجيل الدخول.\n/out <user_id> - تسجيل الخروج.\n/help - عرض دليل بوت رِواق."

	malformedInText  = "❌ Please use the format:\n`/in 1234`"
	malformedOutText = "❌ استخدمي الطريقة الصحيحة رجاءً: /out <user_id>"

	notRegisteredText = "❌ هذا المستخدم غير مسجل في رِواق."
	internalErrorText = "⚠️ An error occurred. Please try again later."

	guardText = "⚠️ لتسجيل الحضور استخدمي الأوامر المخصصة:\n/in <user_id> لتسجيل الدخول\n/out <user_id> لتسجيل الخروج"

	assistantDownText = "عذراً، لا أستطيع الرد على استفسارك الآن. حاولي مرة أخرى لاحقاً 💙"
)

// attendanceKeywords must never reach the language model; the model cannot be
// allowed to impersonate attendance actions.
var attendanceKeywords = []string{
	"/in", "/out",
	"check in", "check out", "checkin", "checkout", "attendance",
	"تسجيل الدخول", "تسجيل الخروج", "تسجيل حضور", "حضور", "دخول", "خروج",
}

// Router dispatches an inbound text line to the engine or the assistant and
// renders the result into a reply string. Every input yields a reply; nothing
// propagates an error to the transport.
type Router struct {
	engine    *engine.Engine
	assistant Assistant
	metrics   *metrics.Collector
}

// New wires a router. metrics may be nil.
func New(e *engine.Engine, a Assistant, m *metrics.Collector) *Router {
	return &Router{engine: e, assistant: a, metrics: m}
}

// Dispatch routes one inbound line, in priority order: /start, /help, the
// attendance verbs, the keyword guard, then the assistant fallback.
func (r *Router) Dispatch(ctx context.Context, text string) string {
	line := strings.TrimSpace(text)

	switch firstToken(line) {
	case "/start":
		r.metrics.RecordDispatch("start")
		return welcomeText
	case "/help":
		r.metrics.RecordDispatch("help")
		return helpText
	case engine.VerbCheckIn:
		r.metrics.RecordDispatch("checkin")
		return r.renderCheckIn(r.record(r.engine.CheckIn(ctx, line)))
	case engine.VerbCheckOut:
		r.metrics.RecordDispatch("checkout")
		return r.renderCheckOut(r.record(r.engine.CheckOut(ctx, line)))
	}

	if containsAttendanceKeyword(line) {
		r.metrics.RecordDispatch("guard")
		return guardText
	}

	r.metrics.RecordDispatch("assistant")
	reply, err := r.assistant.Reply(ctx, line)
	if err != nil {
		log.Printf("assistant call failed: %v", err)
		return assistantDownText
	}
	return reply
}

func (r *Router) record(o engine.Outcome) engine.Outcome {
	r.metrics.RecordOutcome(o.Kind.String())
	return o
}

func (r *Router) renderCheckIn(o engine.Outcome) string {
	switch o.Kind {
	case engine.KindCheckedIn:
		return "✅ مرحباً " + o.Name + "، نرجو لكِ يوماً سعيداً ومليئاً بالإنجازات 💙"
	case engine.KindAlreadyCheckedIn:
		return "⚠️ لقد قمتِ بتسجيل الدخول بالفعل اليوم."
	case engine.KindNotRegistered:
		return notRegisteredText
	case engine.KindMalformed:
		return malformedInText
	}
	return internalErrorText
}

func (r *Router) renderCheckOut(o engine.Outcome) string {
	switch o.Kind {
	case engine.KindCheckedOut:
		return "✅ تم تسجيل خروجكِ بنجاح، " + o.Name + ". نأمل أن يكون يومكِ مليئاً بالإنجازات. 💙"
	case engine.KindAlreadyCheckedOut:
		return "⚠️ لقد قمتِ بتسجيل الخروج بالفعل اليوم، " + o.Name + "."
	case engine.KindNotCheckedIn:
		return "⚠️ لم تقومي بتسجيل الدخول اليوم، " + o.Name + ". يرجى تسجيل الدخول أولاً باستخدام /in <user_id>."
	case engine.KindNotRegistered:
		return notRegisteredText
	case engine.KindMalformed:
		return malformedOutText
	}
	return internalErrorText
}

func firstToken(line string) string {
	if i := strings.IndexAny(line, " \t"); i >= 0 {
		return line[:i]
	}
	return line
}

func containsAttendanceKeyword(line string) bool {
	lower := strings.ToLower(line)
	for _, kw := range attendanceKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
