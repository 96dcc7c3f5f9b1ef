package gemini

import (
	"context"
	"strings"
	"testing"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/recruiteros/recruiteros/internal/ai"
)

func TestAssistantReplyBuildsGroundedRequest(t *testing.T) {
	stub := &stubGenerator{response: "Alice has the strongest systems background."}
	assistant := NewAssistant(stub, "gemini-2.5-pro", zap.NewNop(), 0)

	history := []ai.Message{
		{Role: ai.RoleAssistant, Text: "Hi!"},
		{Role: ai.RoleUser, Text: "who applied?"},
	}

	reply, err := assistant.Reply(context.Background(), history, "compare alice and bob", `[{"name":"alice"}]`)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if reply != "Alice has the strongest systems background." {
		t.Fatalf("unexpected reply: %q", reply)
	}

	req := stub.lastRequest
	if req.Model != "gemini-2.5-pro" {
		t.Fatalf("unexpected model override: %q", req.Model)
	}
	if !strings.Contains(req.System, "RecruiterOS") {
		t.Fatal("system instruction missing persona")
	}
	if !strings.Contains(req.System, `[{"name":"alice"}]`) {
		t.Fatal("system instruction missing grounding context")
	}
	if len(req.History) != 2 {
		t.Fatalf("expected 2 history turns, got %d", len(req.History))
	}
	if req.History[0].Role != genai.RoleModel {
		t.Fatalf("assistant turns must map to the model role, got %q", req.History[0].Role)
	}
	if req.History[1].Role != genai.RoleUser {
		t.Fatalf("user turns must keep the user role, got %q", req.History[1].Role)
	}
	if len(req.Parts) != 1 || req.Parts[0].Text != "compare alice and bob" {
		t.Fatalf("unexpected message parts: %+v", req.Parts)
	}
}

func TestAssistantOmitsContextBlockWhenEmpty(t *testing.T) {
	stub := &stubGenerator{response: "ok"}
	assistant := NewAssistant(stub, "", zap.NewNop(), 0)

	if _, err := assistant.Reply(context.Background(), nil, "hello", "  "); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if strings.Contains(stub.lastRequest.System, "CURRENT CANDIDATE DATA") {
		t.Fatal("context block must be omitted without grounding data")
	}
}

func TestAssistantRejectsBlankMessage(t *testing.T) {
	assistant := NewAssistant(&stubGenerator{}, "", zap.NewNop(), 0)

	if _, err := assistant.Reply(context.Background(), nil, "   ", ""); err == nil {
		t.Fatal("expected error for blank message")
	}
}

func TestAssistantPropagatesGeneratorError(t *testing.T) {
	assistant := NewAssistant(&stubGenerator{err: errTest}, "", zap.NewNop(), 0)

	if _, err := assistant.Reply(context.Background(), nil, "hello", ""); err == nil {
		t.Fatal("expected generator error to propagate")
	}
}
