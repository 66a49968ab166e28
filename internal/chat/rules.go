package chat

import (
	"fmt"
	"strings"
	"time"
)

const (
	botName    = "ChatBot"
	systemName = "System"

	greetingDelay = 500 * time.Millisecond
	questionDelay = 800 * time.Millisecond
)

const helpText = `📋 Available Commands:
/help - Show this help message
/users - Show online users count
/time - Show current server time
/clear - Clear your chat (client-side)

Try saying 'hello' to get a bot response!`

// AutoResponse is one rule firing: the text to send, who it appears to come
// from, who should receive it, and an optional simulated-thinking delay. The
// envelope itself is minted at emission time, after the delay, so its
// identifier and timestamp reflect when it actually goes out.
type AutoResponse struct {
	From     string
	Text     string
	Type     MessageType
	Audience Audience
	Delay    time.Duration
}

// RuleEngine evaluates inbound messages against a fixed, ordered rule set.
// Rules are independent triggers, not an if/else chain: one message can fire
// several of them. The engine itself is stateless; the online count for the
// /users command is read through the injected func.
type RuleEngine struct {
	online func() int
}

// NewRuleEngine returns an engine that reads the current online count from
// the given func.
func NewRuleEngine(online func() int) *RuleEngine {
	return &RuleEngine{online: online}
}

// Evaluate inspects a message and returns the auto-responses it triggers, in
// rule priority order. An empty or rule-free message returns nothing.
func (e *RuleEngine) Evaluate(user, message string) []AutoResponse {
	lower := strings.ToLower(message)
	var out []AutoResponse

	if strings.Contains(lower, "hello") || strings.Contains(lower, "hi") {
		out = append(out, AutoResponse{
			From:     botName,
			Text:     fmt.Sprintf("Hello %s! How can I help you today?", user),
			Type:     MessageTypeBot,
			Audience: AudienceAll,
			Delay:    greetingDelay,
		})
	}

	if strings.HasPrefix(lower, "/help") {
		out = append(out, AutoResponse{
			From:     systemName,
			Text:     helpText,
			Type:     MessageTypeSystem,
			Audience: AudienceSenderOnly,
		})
	}

	if strings.HasPrefix(lower, "/users") {
		out = append(out, AutoResponse{
			From:     systemName,
			Text:     fmt.Sprintf("👥 Currently %d user(s) online", e.online()),
			Type:     MessageTypeSystem,
			Audience: AudienceSenderOnly,
		})
	}

	if strings.HasPrefix(lower, "/time") {
		out = append(out, AutoResponse{
			From:     systemName,
			Text:     fmt.Sprintf("🕐 Server time: %s UTC", time.Now().UTC().Format("2006-01-02 15:04:05")),
			Type:     MessageTypeSystem,
			Audience: AudienceSenderOnly,
		})
	}

	if strings.Contains(message, "?") {
		out = append(out, AutoResponse{
			From:     botName,
			Text:     "🤔 That's an interesting question! Our team will get back to you soon.",
			Type:     MessageTypeBot,
			Audience: AudienceAll,
			Delay:    questionDelay,
		})
	}

	return out
}
