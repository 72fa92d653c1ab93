package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"
)

const (
	testFormalizerPrompt = "formalize"
	testExplainerPrompt  = "explain"
)

// stageLLM scripts one response per system prompt and records every call.
type stageLLM struct {
	responses map[string]string
	failOn    string
	calls     []string
	lastUser  map[string]string
}

func (s *stageLLM) CompleteWith(ctx context.Context, systemPrompt, userMessage string) (string, error) {
	s.calls = append(s.calls, systemPrompt)
	if s.lastUser == nil {
		s.lastUser = make(map[string]string)
	}
	s.lastUser[systemPrompt] = userMessage

	if s.failOn == systemPrompt {
		return "", errors.New("stage down")
	}
	return s.responses[systemPrompt], nil
}

func TestRunExecutesAllStages(t *testing.T) {
	llm := &stageLLM{responses: map[string]string{
		testFormalizerPrompt: "Human(socrates), ¬Human(x) ∨ Mortal(x), ¬Mortal(socrates)",
		testExplainerPrompt:  "Socrates is mortal because all humans are.",
	}}

	var updates []string
	p := New(llm, testFormalizerPrompt, testExplainerPrompt)

	result, err := p.Run(context.Background(), "Is Socrates mortal?", func(text string) {
		updates = append(updates, text)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Clauses) != 3 {
		t.Fatalf("unexpected clauses: %v", result.Clauses)
	}
	if !result.ProofFound {
		t.Fatalf("expected a proof, log:\n%s", strings.Join(result.ProofLog, "\n"))
	}
	if result.Explanation != "Socrates is mortal because all humans are." {
		t.Fatalf("unexpected explanation: %q", result.Explanation)
	}

	if len(llm.calls) != 2 || llm.calls[0] != testFormalizerPrompt || llm.calls[1] != testExplainerPrompt {
		t.Fatalf("unexpected stage order: %v", llm.calls)
	}
	if llm.lastUser[testFormalizerPrompt] != "Is Socrates mortal?" {
		t.Fatalf("formalizer got wrong input: %q", llm.lastUser[testFormalizerPrompt])
	}

	// The explainer works from the proof log, not the raw user text
	if !strings.Contains(llm.lastUser[testExplainerPrompt], "contradiction found!") {
		t.Fatalf("explainer input missing proof log: %q", llm.lastUser[testExplainerPrompt])
	}

	if len(updates) != 3 {
		t.Fatalf("expected 3 progress updates, got %v", updates)
	}
}

func TestRunStopsWhenFormalizerFails(t *testing.T) {
	llm := &stageLLM{failOn: testFormalizerPrompt}
	p := New(llm, testFormalizerPrompt, testExplainerPrompt)

	if _, err := p.Run(context.Background(), "question", nil); err == nil {
		t.Fatalf("expected an error")
	}
	if len(llm.calls) != 1 {
		t.Fatalf("explainer should not run after formalizer failure: %v", llm.calls)
	}
}

func TestRunReportsExplainerFailure(t *testing.T) {
	llm := &stageLLM{
		responses: map[string]string{testFormalizerPrompt: "P(a), ¬P(a)"},
		failOn:    testExplainerPrompt,
	}
	p := New(llm, testFormalizerPrompt, testExplainerPrompt)

	if _, err := p.Run(context.Background(), "question", nil); err == nil {
		t.Fatalf("expected an error")
	}
}

func TestRunWorksWithoutProgressCallback(t *testing.T) {
	llm := &stageLLM{responses: map[string]string{
		testFormalizerPrompt: "P(a)",
		testExplainerPrompt:  "nothing to prove",
	}}
	p := New(llm, testFormalizerPrompt, testExplainerPrompt)

	result, err := p.Run(context.Background(), "question", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ProofFound {
		t.Fatalf("unexpected proof from a single clause")
	}
}

func TestSplitClausesRespectsPredicateArguments(t *testing.T) {
	clauses := splitClauses("Likes(alice, bob), ¬Likes(x, y) ∨ Knows(x, y)")

	if len(clauses) != 2 {
		t.Fatalf("unexpected clauses: %v", clauses)
	}
	if clauses[0] != "Likes(alice, bob)" {
		t.Fatalf("argument comma split a clause: %q", clauses[0])
	}
}

func TestSplitClausesDropsEmptyEntries(t *testing.T) {
	clauses := splitClauses(" P(a), , Q(b), ")

	if len(clauses) != 2 || clauses[0] != "P(a)" || clauses[1] != "Q(b)" {
		t.Fatalf("unexpected clauses: %v", clauses)
	}
}
