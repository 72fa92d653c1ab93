// Package pipeline chains the three stages behind every chat message: an LLM
// formalizes the problem into clauses, the resolution engine searches for a
// proof, and an LLM explains the outcome in plain language.
package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/tahcohcat/tgrelay/internal/logger"
	"github.com/tahcohcat/tgrelay/internal/resolver"
)

// LLM is the slice of the fallback client the pipeline needs. Each stage
// supplies its own system prompt; the roster fallback behaves the same for
// both stages.
type LLM interface {
	CompleteWith(ctx context.Context, systemPrompt, userMessage string) (string, error)
}

// Result is the outcome of one full pipeline run.
type Result struct {
	Clauses     []string
	ProofFound  bool
	ProofLog    []string
	Explanation string
}

type Pipeline struct {
	llm        LLM
	formalizer string
	explainer  string
	logger     *logger.Log
}

func New(llm LLM, formalizerPrompt, explainerPrompt string) *Pipeline {
	return &Pipeline{
		llm:        llm,
		formalizer: formalizerPrompt,
		explainer:  explainerPrompt,
		logger:     logger.New(),
	}
}

// Run executes formalization, proof search and explanation for one user
// message. The optional progress callback receives a short status line before
// each stage so transports can show what is happening. Stage failures abort
// the run; the underlying error (including an exhausted roster) is wrapped,
// never swallowed.
func (p *Pipeline) Run(ctx context.Context, userText string, progress func(string)) (*Result, error) {
	report := func(text string) {
		if progress != nil {
			progress(text)
		}
	}

	report("🔄 Step 1/3: formalizing the problem...")
	formalized, err := p.llm.CompleteWith(ctx, p.formalizer, userText)
	if err != nil {
		return nil, fmt.Errorf("formalizer stage failed: %w", err)
	}

	clauses := splitClauses(formalized)
	p.logger.Info(fmt.Sprintf("formalizer produced %d clauses", len(clauses)))

	report("🔄 Step 2/3: searching for a proof...")
	found, proofLog := resolver.Prove(clauses)
	p.logger.Info(fmt.Sprintf("resolution finished (contradiction: %t)", found))

	report("🔄 Step 3/3: explaining the result...")
	explanation, err := p.llm.CompleteWith(ctx, p.explainer, strings.Join(proofLog, "\n"))
	if err != nil {
		return nil, fmt.Errorf("explainer stage failed: %w", err)
	}

	return &Result{
		Clauses:     clauses,
		ProofFound:  found,
		ProofLog:    proofLog,
		Explanation: explanation,
	}, nil
}

// splitClauses parses the formalizer's comma-separated clause list. Commas
// inside parentheses belong to predicate argument lists, not clause
// boundaries.
func splitClauses(s string) []string {
	var clauses []string
	var current strings.Builder
	depth := 0

	flush := func() {
		if c := strings.TrimSpace(current.String()); c != "" {
			clauses = append(clauses, c)
		}
		current.Reset()
	}

	for _, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				flush()
				continue
			}
		}
		current.WriteRune(r)
	}
	flush()

	return clauses
}
