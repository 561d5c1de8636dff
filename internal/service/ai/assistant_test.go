package ai

import (
	"context"
	"strings"
	"testing"

	"go.uber.org/zap"
)

type fakeGenerator struct {
	text   string
	meta   *GenerateMetadata
	err    error
	prompt string
}

func (f *fakeGenerator) GenerateText(_ context.Context, prompt string, _ ModelPreset, _ *GenerateOptions) (string, *GenerateMetadata, error) {
	f.prompt = prompt
	return f.text, f.meta, f.err
}

func TestAssistantChat(t *testing.T) {
	gen := &fakeGenerator{text: "Because you loved Fullmetal Alchemist!"}
	assistant := NewAssistant(gen, zap.NewNop())

	reply := assistant.Chat(context.Background(), "why these?", []string{"Fullmetal Alchemist"}, []string{"Vinland Saga"})

	if reply != gen.text {
		t.Errorf("reply = %q, want generator output", reply)
	}
	for _, fragment := range []string{"why these?", "Fullmetal Alchemist", "Vinland Saga"} {
		if !strings.Contains(gen.prompt, fragment) {
			t.Errorf("prompt missing %q:\n%s", fragment, gen.prompt)
		}
	}
}

func TestAssistantChatNoGenerator(t *testing.T) {
	assistant := NewAssistant(nil, zap.NewNop())

	reply := assistant.Chat(context.Background(), "hello", nil, nil)
	if reply != replyNotConfigured {
		t.Errorf("reply = %q, want the not-configured message", reply)
	}
}

func TestAssistantChatEmptyMessage(t *testing.T) {
	gen := &fakeGenerator{text: "should not be called"}
	assistant := NewAssistant(gen, zap.NewNop())

	reply := assistant.Chat(context.Background(), "", nil, nil)
	if reply != replyEmptyMessage {
		t.Errorf("reply = %q, want the empty-message reply", reply)
	}
	if gen.prompt != "" {
		t.Error("generator must not run for an empty message")
	}
}

func TestAssistantChatFailureReplies(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"rate limited", ErrRateLimited, replyRateLimited},
		{"timed out", ErrTimeout, replyTimeout},
		{"safety blocked", ErrSafetyBlocked, replySafetyBlock},
		{"unavailable", ErrUnavailable, replyUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assistant := NewAssistant(&fakeGenerator{err: tt.err}, zap.NewNop())
			reply := assistant.Chat(context.Background(), "hi", nil, nil)
			if reply != tt.want {
				t.Errorf("reply = %q, want %q", reply, tt.want)
			}
		})
	}
}

func TestAssistantChatTruncatesLongInput(t *testing.T) {
	gen := &fakeGenerator{text: "ok"}
	assistant := NewAssistant(gen, zap.NewNop())

	long := strings.Repeat("a", 2000)
	assistant.Chat(context.Background(), long, nil, nil)

	if strings.Contains(gen.prompt, strings.Repeat("a", 501)) {
		t.Error("message was not truncated to the input limit")
	}
}

func TestAssistantChatCapsContextTitles(t *testing.T) {
	gen := &fakeGenerator{text: "ok"}
	assistant := NewAssistant(gen, zap.NewNop())

	titles := make([]string, 30)
	for i := range titles {
		titles[i] = "Title"
	}
	titles[29] = "Overflow Title"
	assistant.Chat(context.Background(), "hi", titles, nil)

	if strings.Contains(gen.prompt, "Overflow Title") {
		t.Error("context titles beyond the cap should be dropped")
	}
}
