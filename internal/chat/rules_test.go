package chat_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantedge/relay/internal/chat"
)

func newEngine(online int) *chat.RuleEngine {
	return chat.NewRuleEngine(func() int { return online })
}

func TestGreetingRule(t *testing.T) {
	engine := newEngine(1)

	for _, message := range []string{"hello", "Hello everyone", "HI", "hi there"} {
		out := engine.Evaluate("alice", message)
		require.Len(t, out, 1, "message %q", message)
		resp := out[0]
		assert.Equal(t, "Hello alice! How can I help you today?", resp.Text)
		assert.Equal(t, chat.MessageTypeBot, resp.Type)
		assert.Equal(t, chat.AudienceAll, resp.Audience)
		assert.Equal(t, 500*time.Millisecond, resp.Delay)
	}
}

func TestHelpCommand(t *testing.T) {
	engine := newEngine(1)

	out := engine.Evaluate("alice", "/help")
	require.Len(t, out, 1)
	resp := out[0]
	assert.Contains(t, resp.Text, "/users")
	assert.Contains(t, resp.Text, "/time")
	assert.Equal(t, chat.MessageTypeSystem, resp.Type)
	assert.Equal(t, chat.AudienceSenderOnly, resp.Audience)
	assert.Zero(t, resp.Delay)

	// Prefix match is case-insensitive and tolerates trailing text.
	assert.Len(t, engine.Evaluate("alice", "/HELP me please"), 1)
	// Only a prefix triggers the command.
	assert.Empty(t, engine.Evaluate("alice", "see /help for details"))
}

func TestUsersCommand(t *testing.T) {
	engine := newEngine(3)

	out := engine.Evaluate("bob", "/users")
	require.Len(t, out, 1)
	assert.Equal(t, "👥 Currently 3 user(s) online", out[0].Text)
	assert.Equal(t, chat.AudienceSenderOnly, out[0].Audience)
}

func TestTimeCommand(t *testing.T) {
	engine := newEngine(1)

	out := engine.Evaluate("bob", "/time")
	require.Len(t, out, 1)
	resp := out[0]
	assert.Equal(t, chat.AudienceSenderOnly, resp.Audience)

	require.True(t, strings.HasSuffix(resp.Text, " UTC"))
	stamp := strings.TrimSuffix(strings.TrimPrefix(resp.Text, "🕐 Server time: "), " UTC")
	parsed, err := time.Parse("2006-01-02 15:04:05", stamp)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().UTC(), parsed, time.Minute)
}

func TestQuestionRule(t *testing.T) {
	engine := newEngine(1)

	out := engine.Evaluate("alice", "what is the meaning of life?")
	require.Len(t, out, 1)
	resp := out[0]
	assert.Equal(t, chat.MessageTypeBot, resp.Type)
	assert.Equal(t, chat.AudienceAll, resp.Audience)
	assert.Equal(t, 800*time.Millisecond, resp.Delay)
}

func TestRulesAreIndependentTriggers(t *testing.T) {
	engine := newEngine(1)

	// Greeting and question both fire; greeting keeps priority order.
	out := engine.Evaluate("alice", "hello?")
	require.Len(t, out, 2)
	assert.Equal(t, chat.MessageTypeBot, out[0].Type)
	assert.Contains(t, out[0].Text, "Hello alice")
	assert.Contains(t, out[1].Text, "interesting question")
}

func TestNoRuleMessages(t *testing.T) {
	engine := newEngine(1)

	assert.Empty(t, engine.Evaluate("alice", ""))
	assert.Empty(t, engine.Evaluate("alice", "good morning all"))
}
