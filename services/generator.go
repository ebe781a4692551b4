package services

import (
	"context"
	"fmt"

	"car-rag-platform/internal/logger"
)

// TextGenerator is the generation collaborator: given a complete prompt it
// returns generated text or fails (quota, network, safety blocks).
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

const answerPrompt = `You are a knowledgeable automotive expert assistant. You help users find and understand information about used cars based on a database of car listings. You'll be given information about various car listings and a user question.

CONTEXT:
%s

USER QUESTION: %s

Please answer the question briefly based ONLY on the information provided in the CONTEXT within 30-35 words. If the context doesn't contain enough information to fully answer the question, acknowledge this limitation. If the question is about a car not mentioned in the context, state that you don't have information about that specific car.

In your answer:
1. Provide specific details about the cars that match the user's query
2. Compare options if multiple relevant cars are available, and give details about the most relevant one.
3. Highlight important features like car_name, year, city, price, kms driven, and fuel_type.

ANSWER:`

// AnswerGenerator combines the formatted context and the user question into a
// single prompt and invokes the generation collaborator.
type AnswerGenerator struct {
	llm TextGenerator
}

func NewAnswerGenerator(llm TextGenerator) *AnswerGenerator {
	return &AnswerGenerator{llm: llm}
}

// BuildPrompt assembles the generation prompt. The instructions bound the
// answer to the supplied context and an approximate word budget.
func BuildPrompt(query, contextBlock string) string {
	return fmt.Sprintf(answerPrompt, contextBlock, query)
}

// Answer generates the final answer text. A failing collaborator is never
// fatal to the request: the error is converted into a textual explanation
// returned to the caller.
func (g *AnswerGenerator) Answer(ctx context.Context, query, contextBlock string) string {
	text, err := g.llm.Generate(ctx, BuildPrompt(query, contextBlock))
	if err != nil {
		logger.Error("Answer generation failed", "error", err)
		return fmt.Sprintf("Error generating response: %v", err)
	}
	return text
}
