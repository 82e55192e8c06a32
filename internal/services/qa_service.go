package services

import (
	"context"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dhanunjayudu/ncdhhs-pdf-qa/internal/core"
	"github.com/dhanunjayudu/ncdhhs-pdf-qa/internal/models"
)

// Latency and cost both grow with the passage count, so clamp hard.
const maxResultsCeiling = 20

// excerptLimit keeps cited source snippets readable in the UI.
const excerptLimit = 200

// RefusalMessage is the fixed text substituted when the content guardrail
// blocks a question or answer.
const RefusalMessage = "I cannot provide information on that topic. Please ask questions related to the published documents and services."

// NoMatchMessage is the answer when the corpus has nothing relevant. This
// is a normal outcome for an empty corpus or an off-topic question.
const NoMatchMessage = "I don't have enough information to answer that question based on the processed documents."

// QAService answers questions against the indexed corpus with source
// attribution. It is stateless per request and safe to call concurrently
// with ingestion.
type QAService struct {
	retriever         core.Retriever
	defaultMaxResults int
	logger            *slog.Logger
}

func NewQAService(retriever core.Retriever, defaultMaxResults int, logger *slog.Logger) *QAService {
	if defaultMaxResults < 1 {
		defaultMaxResults = 5
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &QAService{
		retriever:         retriever,
		defaultMaxResults: defaultMaxResults,
		logger:            logger,
	}
}

// Ask retrieves the top passages for the question, generates a grounded
// answer, and scores confidence from the best passage. No relevant
// documents is a valid answer with empty sources and zero confidence,
// never an error.
func (s *QAService) Ask(ctx context.Context, question string, maxResults int, useGuardrails bool) (*models.Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, &core.ValidationError{Field: "question", Reason: "must not be empty"}
	}

	k := maxResults
	if k < 1 {
		k = s.defaultMaxResults
	}
	if k > maxResultsCeiling {
		k = maxResultsCeiling
	}

	start := time.Now()

	passages, err := s.retriever.RetrievePassages(ctx, question, int32(k))
	if err != nil {
		return nil, err
	}

	if len(passages) == 0 {
		return &models.Answer{
			Text:             NoMatchMessage,
			Sources:          []models.Source{},
			Confidence:       0,
			ProcessingTimeMs: time.Since(start).Milliseconds(),
		}, nil
	}

	gen, err := s.retriever.GenerateAnswer(ctx, question, int32(k), useGuardrails)
	if err != nil {
		return nil, err
	}

	if gen.Blocked {
		s.logger.Info("guardrail blocked question")
		return &models.Answer{
			Text:              RefusalMessage,
			Sources:           []models.Source{},
			Confidence:        0,
			GuardrailsApplied: true,
			ProcessingTimeMs:  time.Since(start).Milliseconds(),
		}, nil
	}

	sources := make([]models.Source, 0, len(passages))
	for _, p := range passages {
		excerpt := p.Excerpt
		if len(excerpt) > excerptLimit {
			// Back up to a rune boundary so the cut never splits a
			// multi-byte character.
			cut := excerptLimit
			for cut > 0 && !utf8.RuneStart(excerpt[cut]) {
				cut--
			}
			excerpt = excerpt[:cut] + "..."
		}
		sources = append(sources, models.Source{
			URI:     p.URI,
			Excerpt: excerpt,
			Score:   p.Score,
		})
	}

	// Confidence is the top passage's similarity, clamped to [0,1].
	confidence := passages[0].Score
	for _, p := range passages[1:] {
		if p.Score > confidence {
			confidence = p.Score
		}
	}
	if confidence < 0 {
		confidence = 0
	} else if confidence > 1 {
		confidence = 1
	}

	return &models.Answer{
		Text:              gen.Text,
		Sources:           sources,
		Confidence:        confidence,
		GuardrailsApplied: gen.GuardrailsApplied,
		ProcessingTimeMs:  time.Since(start).Milliseconds(),
	}, nil
}
