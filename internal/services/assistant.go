package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/passabola/chatbot/internal/dto"
	"github.com/passabola/chatbot/internal/errs"
	"github.com/passabola/chatbot/pkg/logger"
)

const webSearchTool = "web_search"

type vertexClient interface {
	GenerateContent(ctx context.Context, req dto.VertexGenerateRequest) (dto.VertexGenerateResponse, error)
}

type searcher interface {
	Search(ctx context.Context, query string) ([]dto.SearchResult, error)
}

type assistantService struct {
	vertex      vertexClient
	search      searcher
	temperature *float32
	clockNow    func() time.Time
}

func NewAssistantService(vertex vertexClient, search searcher, temperature *float32) *assistantService {
	return &assistantService{
		vertex:      vertex,
		search:      search,
		temperature: temperature,
		clockNow:    time.Now,
	}
}

// Reply answers a single message. The model may request one web search;
// its results are fed back for a second, tool-free generation.
func (s *assistantService) Reply(ctx context.Context, message string) (dto.ChatResponse, error) {
	log := logger.FromContext(ctx)

	system := systemPrompt(s.clockNow())
	contents := []dto.VertexContent{
		{
			Role:  "user",
			Parts: []dto.VertexPart{{Text: &message}},
		},
	}

	resp, err := s.vertex.GenerateContent(ctx, dto.VertexGenerateRequest{
		System:      system,
		Contents:    contents,
		Tools:       toolSchemas(),
		ToolConfig:  &dto.VertexToolConfig{Mode: dto.FunctionCallingModeAuto},
		Temperature: s.temperature,
	})
	if err != nil {
		return dto.ChatResponse{}, err
	}

	if len(resp.ToolCalls) == 0 {
		if strings.TrimSpace(resp.Text) == "" {
			return dto.ChatResponse{}, emptyModelResponse(resp.FinishReason)
		}
		log.Info("assistant reply completed", "tool", "none", "finish_reason", resp.FinishReason)
		return dto.ChatResponse{Response: resp.Text}, nil
	}

	if len(resp.ToolCalls) > 1 {
		log.Warn("received multiple tool calls, only processing the first", "count", len(resp.ToolCalls))
	}

	toolCall := resp.ToolCalls[0]
	if toolCall.Name != webSearchTool {
		return dto.ChatResponse{}, errs.NewUnsupportedToolError(toolCall.Name)
	}

	toolResult, err := s.executeWebSearch(ctx, toolCall)
	if err != nil {
		return dto.ChatResponse{}, fmt.Errorf("failed to execute tool %s: %w", toolCall.Name, err)
	}

	contents = append(contents, dto.VertexContent{
		Role: "model",
		Parts: []dto.VertexPart{
			{FunctionCall: &toolCall},
		},
	}, dto.VertexContent{
		Role: "user",
		Parts: []dto.VertexPart{
			{FunctionResponse: &toolResult},
		},
	})

	finalResp, err := s.vertex.GenerateContent(ctx, dto.VertexGenerateRequest{
		System:      system,
		Contents:    contents,
		Tools:       toolSchemas(),
		ToolConfig:  &dto.VertexToolConfig{Mode: dto.FunctionCallingModeNone},
		Temperature: s.temperature,
	})
	if err != nil {
		return dto.ChatResponse{}, err
	}
	if strings.TrimSpace(finalResp.Text) == "" {
		return dto.ChatResponse{}, emptyModelResponse(finalResp.FinishReason)
	}

	log.Info("assistant reply completed", "tool", toolCall.Name, "finish_reason", finalResp.FinishReason)
	return dto.ChatResponse{Response: finalResp.Text}, nil
}

func (s *assistantService) executeWebSearch(ctx context.Context, call dto.VertexToolCall) (dto.VertexToolResult, error) {
	log, ctx := logger.With(ctx, "tool", call.Name)

	args, err := decodeArgs[dto.WebSearchArgs](call.Args)
	if err != nil {
		return dto.VertexToolResult{}, errs.NewMalformedFunctionCallError(err.Error())
	}
	query := strings.TrimSpace(args.Query)
	if query == "" {
		return dto.VertexToolResult{}, errs.NewMalformedFunctionCallError("web_search requires a non-empty query")
	}

	start := s.clockNow()
	results, err := s.search.Search(ctx, query)
	if err != nil {
		return dto.VertexToolResult{}, err
	}
	log.Info("executed tool",
		"results", len(results),
		"duration", s.clockNow().Sub(start),
	)

	// structpb only accepts []any and map[string]any, not typed slices
	items := make([]any, 0, len(results))
	for _, r := range results {
		items = append(items, map[string]any{
			"title":   r.Title,
			"url":     r.URL,
			"snippet": r.Snippet,
		})
	}

	return dto.VertexToolResult{
		Name: call.Name,
		Response: map[string]any{
			"query":   query,
			"results": items,
		},
	}, nil
}

func toolSchemas() []dto.VertexTool {
	return []dto.VertexTool{
		{
			Name: webSearchTool,
			Description: "Search the web for recent or factual information: match results, fixtures, " +
				"league tables, player news and events outside the model's knowledge.",
			Parameters: &dto.VertexSchema{
				Type: "object",
				Properties: map[string]*dto.VertexSchema{
					"query": {Type: "string", Description: "Search terms, in the language most likely to find good results."},
				},
				Required: []string{"query"},
			},
		},
	}
}

func systemPrompt(now time.Time) string {
	today := now.Format("2006-01-02")
	weekday := now.Weekday().String()
	return "You are the assistant of Passa a Bola, a women's football community app. " +
		"Answer questions about football, matches, teams, players and the community in a friendly, concise tone. " +
		"Reply in the language of the user, usually Brazilian Portuguese. " +
		"Use the web_search tool when the question needs current or factual information you are not sure about; " +
		"make at most one tool call and never invent results, scores or dates. " +
		"Cite the sources you used from the search results. " +
		"Today is " + today + " (" + weekday + ")."
}

func emptyModelResponse(finishReason string) error {
	msg := "model returned an empty response"
	if finishReason != "" {
		msg += " (finish reason " + finishReason + ")"
	}
	return errs.NewExternalServiceError("vertex", msg, false, nil)
}

func decodeArgs[T any](args map[string]any) (T, error) {
	var out T
	if len(args) == 0 {
		return out, nil
	}
	raw, err := json.Marshal(args)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, err
	}
	return out, nil
}
