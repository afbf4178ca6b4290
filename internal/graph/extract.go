package graph

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/kaptinlin/jsonrepair"

	"github.com/agenthands/trellis/internal/llm"
)

const extractPrompt = `You are a knowledge graph construction assistant. Extract every meaningful factual triple from the text below.

Requirements:
1. Output format: a JSON array.
2. Each element has: subject, predicate, object, confidence (0-1), span (the original text fragment backing the fact).
3. Return ONLY the raw JSON array, without markdown fences such as ` + "```json ... ```" + `.

Example output:
[
    {
        "subject": "Marie Curie",
        "predicate": "born in",
        "object": "Warsaw",
        "confidence": 1.0,
        "span": "Marie Curie was born in Warsaw"
    }
]

Text to process:
%TEXT%
`

// Extractor turns bounded-length text into candidate triples via one
// completion call. Every failure mode is recovered locally: callers always
// get a (possibly empty) triple list, never an error.
type Extractor struct {
	LLM      llm.LLMClient
	MaxChars int
}

func NewExtractor(client llm.LLMClient, maxChars int) *Extractor {
	if maxChars <= 0 {
		maxChars = 8000
	}
	return &Extractor{
		LLM:      client,
		MaxChars: maxChars,
	}
}

func (e *Extractor) Extract(ctx context.Context, text string, sourceDoc string) []Triple {
	text = e.truncate(text, sourceDoc)

	prompt := strings.Replace(extractPrompt, "%TEXT%", text, 1)

	response, err := e.LLM.Generate(ctx, prompt)
	if err != nil {
		log.Warn("Extraction call failed", "source", sourceDoc, "err", err)
		return nil
	}

	result := parseTriples(response)
	if result.Malformed != "" {
		log.Warn("Extraction output malformed", "source", sourceDoc, "reason", result.Malformed)
		return nil
	}

	triples := result.Triples
	for i := range triples {
		triples[i].SourceDoc = sourceDoc
	}

	log.Info("Extracted triples", "source", sourceDoc, "count", len(triples))
	return triples
}

// Longer documents are truncated, not chunked. Known trade-off: facts beyond
// the bound are lost rather than extracted in parts.
func (e *Extractor) truncate(text string, sourceDoc string) string {
	if len(text) <= e.MaxChars {
		return text
	}
	runes := []rune(text)
	if len(runes) <= e.MaxChars {
		return text
	}
	log.Warn("Text truncated before extraction", "source", sourceDoc, "chars", len(runes), "max", e.MaxChars)
	return string(runes[:e.MaxChars])
}

// extractionResult tags parse output: either a validated triple list or a
// malformed reason. Nothing in between reaches the upsert stage.
type extractionResult struct {
	Triples   []Triple
	Malformed string
}

type rawTriple struct {
	Subject    string   `json:"subject"`
	Predicate  string   `json:"predicate"`
	Object     string   `json:"object"`
	Confidence *float64 `json:"confidence"`
	Span       string   `json:"span"`
}

func parseTriples(response string) extractionResult {
	content := stripFences(response)

	var elements []json.RawMessage
	if err := json.Unmarshal([]byte(content), &elements); err != nil {
		// The model occasionally emits almost-JSON; one repair pass
		// before declaring the output malformed.
		repaired, repErr := jsonrepair.JSONRepair(content)
		if repErr != nil {
			return extractionResult{Malformed: "output is not a JSON array"}
		}
		if err := json.Unmarshal([]byte(repaired), &elements); err != nil {
			return extractionResult{Malformed: "output is not a JSON array"}
		}
	}

	triples := make([]Triple, 0, len(elements))
	for _, element := range elements {
		var raw rawTriple
		if err := json.Unmarshal(element, &raw); err != nil {
			log.Debug("Dropping non-object triple element", "element", string(element))
			continue
		}
		t, ok := validateTriple(raw)
		if !ok {
			log.Debug("Dropping invalid triple element", "element", string(element))
			continue
		}
		triples = append(triples, t)
	}

	return extractionResult{Triples: triples}
}

func validateTriple(raw rawTriple) (Triple, bool) {
	subject := strings.TrimSpace(raw.Subject)
	predicate := strings.TrimSpace(raw.Predicate)
	object := strings.TrimSpace(raw.Object)
	if subject == "" || predicate == "" || object == "" {
		return Triple{}, false
	}
	if raw.Confidence != nil && (*raw.Confidence < 0 || *raw.Confidence > 1) {
		return Triple{}, false
	}

	return Triple{
		Subject:    subject,
		Predicate:  predicate,
		Object:     object,
		Confidence: raw.Confidence,
		Span:       raw.Span,
	}, true
}

// stripFences removes a surrounding markdown code block if the model emitted
// one despite being told not to.
func stripFences(response string) string {
	content := strings.TrimSpace(response)
	if strings.HasPrefix(content, "```json") {
		content = content[7:]
	} else if strings.HasPrefix(content, "```") {
		content = content[3:]
	}
	if strings.HasSuffix(content, "```") {
		content = content[:len(content)-3]
	}
	return strings.TrimSpace(content)
}
