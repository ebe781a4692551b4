package services

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"car-rag-platform/internal/logger"
	"car-rag-platform/models"
)

// NotFoundMessage is returned when retrieval yields no context at all.
const NotFoundMessage = "I couldn't find relevant information about this in my car database. Try a different query or check back later as our database is regularly updated."

// Pipeline is the request/response RAG orchestrator: filter extraction,
// retrieval, formatting and generation chained synchronously. It holds no
// per-request state, so one instance serves concurrent requests.
type Pipeline struct {
	extractor *FilterExtractor
	retriever *ContextRetriever
	generator *AnswerGenerator

	retrievalTimeout  time.Duration
	generationTimeout time.Duration
}

func NewPipeline(extractor *FilterExtractor, retriever *ContextRetriever, generator *AnswerGenerator, retrievalTimeout, generationTimeout time.Duration) *Pipeline {
	return &Pipeline{
		extractor:         extractor,
		retriever:         retriever,
		generator:         generator,
		retrievalTimeout:  retrievalTimeout,
		generationTimeout: generationTimeout,
	}
}

// Answer runs the full pipeline for one query. Explicit filters always take
// precedence over inferred ones and are never merged with them. Zero
// retrieved contexts short-circuit with NotFoundMessage; the generator is not
// invoked in that case. Generation failures come back as answer text, so the
// only error this returns is a retrieval failure.
func (p *Pipeline) Answer(ctx context.Context, query string, explicit models.FilterSet) (string, error) {
	tracer := otel.Tracer("rag-pipeline")
	ctx, span := tracer.Start(ctx, "pipeline.answer")
	defer span.End()

	filters := explicit
	if filters.Empty() {
		filters = p.extractor.Extract(query)
	}
	span.SetAttributes(
		attribute.Int("pipeline.filters", len(filters)),
		attribute.Bool("pipeline.explicit_filters", !explicit.Empty()),
	)
	if !filters.Empty() {
		logger.Debug("Using search filters", "count", len(filters))
	}

	rctx, cancel := p.stageContext(ctx, p.retrievalTimeout)
	contexts, err := p.retriever.Retrieve(rctx, query, filters)
	cancel()
	if err != nil {
		span.RecordError(err)
		return "", err
	}
	span.SetAttributes(attribute.Int("pipeline.contexts", len(contexts)))

	if len(contexts) == 0 {
		return NotFoundMessage, nil
	}

	block := FormatContext(contexts)

	gctx, cancel := p.stageContext(ctx, p.generationTimeout)
	defer cancel()
	return p.generator.Answer(gctx, query, block), nil
}

// stageContext bounds one external call. A zero timeout keeps the caller's
// own deadline.
func (p *Pipeline) stageContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
