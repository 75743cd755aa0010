package conversation

import (
	"bytes"
	"strings"
	"testing"

	"github.com/academictechnexus/mascot-admin/pkg/sdk"
	"github.com/stretchr/testify/assert"
)

func TestFilterByDomain(t *testing.T) {
	convos := []sdk.Conversation{
		{ID: "1", Domain: "acme.test"},
		{ID: "2", Domain: "demo.test"},
		{ID: "3", Domain: "ACME.test"},
	}

	assert.Len(t, filterByDomain(convos, ""), 3)

	got := filterByDomain(convos, "acme.test")
	assert.Len(t, got, 2)
	assert.Equal(t, sdk.ID("3"), got[1].ID)

	assert.Empty(t, filterByDomain(convos, "other.test"))
}

func TestWriteConversationsAndMessages(t *testing.T) {
	var buf bytes.Buffer
	writeConversations(&buf, []sdk.Conversation{{ID: "42", Domain: "acme.test", SessionID: "s-1"}})
	out := buf.String()
	assert.Contains(t, out, "SESSION")
	assert.Contains(t, out, "s-1")
	assert.Contains(t, out, "-", "missing timestamps render as a dash")

	buf.Reset()
	writeMessages(&buf, []sdk.Message{{Role: "user", Text: "hello"}, {Role: "assistant", Text: "hi!"}})
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, []string{"user: hello", "assistant: hi!"}, lines)
}
