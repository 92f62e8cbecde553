package vertexclient

import (
	"context"
	"fmt"
	"log/slog"

	"cloud.google.com/go/vertexai/genai"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/passabola/chatbot/internal/dto"
	"github.com/passabola/chatbot/internal/errs"
)

const serviceName = "vertex"

type Adapter struct {
	client *genai.Client
	model  string
	log    *slog.Logger
}

func NewAdapter(ctx context.Context, log *slog.Logger, projectID, region, model string) (*Adapter, error) {
	client, err := genai.NewClient(ctx, projectID, region)
	if err != nil {
		return nil, err
	}

	return &Adapter{
		client: client,
		model:  model,
		log:    log,
	}, nil
}

func (a *Adapter) Close() error {
	err := a.client.Close()
	if err != nil && a.log != nil {
		a.log.Error("vertex adapter close failed", "error", err)
	}
	return err
}

// GenerateContent sends the transcript in req.Contents. All turns but the
// last become chat history; the last turn is the message sent.
func (a *Adapter) GenerateContent(ctx context.Context, req dto.VertexGenerateRequest) (dto.VertexGenerateResponse, error) {
	out := dto.VertexGenerateResponse{}

	modelName := req.Model
	if modelName == "" {
		modelName = a.model
	}
	if modelName == "" {
		return out, fmt.Errorf("vertex model is required")
	}

	history, last, err := toGenaiContents(req.Contents)
	if err != nil {
		return out, err
	}

	model := a.client.GenerativeModel(modelName)
	if req.System != "" {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(req.System)},
		}
	}
	if req.Temperature != nil {
		model.SetTemperature(*req.Temperature)
	}
	if req.MaxOutputTokens != nil {
		model.SetMaxOutputTokens(*req.MaxOutputTokens)
	}
	if len(req.Tools) > 0 {
		model.Tools = toGenaiTools(req.Tools)
	}
	model.ToolConfig = toGenaiToolConfig(req.ToolConfig)

	session := model.StartChat()
	session.History = history

	resp, err := session.SendMessage(ctx, last.Parts...)
	if err != nil {
		return out, errs.NewExternalServiceError(serviceName, "generate content failed", isTransient(err), err)
	}

	out.Raw = resp
	out.Text, out.ToolCalls = parseContentResponse(resp)
	out.FinishReason = finishReason(resp)
	return out, nil
}

func toGenaiContents(contents []dto.VertexContent) ([]*genai.Content, *genai.Content, error) {
	if len(contents) == 0 {
		return nil, nil, fmt.Errorf("vertex generate request has no content")
	}

	converted := make([]*genai.Content, 0, len(contents))
	for i, content := range contents {
		parts := toGenaiParts(content.Parts)
		if len(parts) == 0 {
			return nil, nil, fmt.Errorf("vertex content %d has no parts", i)
		}
		converted = append(converted, &genai.Content{Role: content.Role, Parts: parts})
	}

	last := converted[len(converted)-1]
	if last.Role == "model" {
		return nil, nil, fmt.Errorf("vertex transcript must end with a user turn")
	}
	return converted[:len(converted)-1], last, nil
}

func toGenaiParts(parts []dto.VertexPart) []genai.Part {
	out := make([]genai.Part, 0, len(parts))
	for _, part := range parts {
		switch {
		case part.Text != nil:
			out = append(out, genai.Text(*part.Text))
		case part.FunctionCall != nil:
			out = append(out, genai.FunctionCall{
				Name: part.FunctionCall.Name,
				Args: part.FunctionCall.Args,
			})
		case part.FunctionResponse != nil:
			out = append(out, genai.FunctionResponse{
				Name:     part.FunctionResponse.Name,
				Response: part.FunctionResponse.Response,
			})
		}
	}
	return out
}

func toGenaiToolConfig(cfg *dto.VertexToolConfig) *genai.ToolConfig {
	if cfg == nil {
		return nil
	}

	return &genai.ToolConfig{
		FunctionCallingConfig: &genai.FunctionCallingConfig{
			Mode:                 toGenaiMode(cfg.Mode),
			AllowedFunctionNames: cfg.AllowedFunctionNames,
		},
	}
}

func toGenaiMode(mode dto.FunctionCallingMode) genai.FunctionCallingMode {
	switch mode {
	case dto.FunctionCallingModeAuto:
		return genai.FunctionCallingAuto
	case dto.FunctionCallingModeAny:
		return genai.FunctionCallingAny
	case dto.FunctionCallingModeNone:
		return genai.FunctionCallingNone
	default:
		return genai.FunctionCallingUnspecified
	}
}

func parseContentResponse(resp *genai.GenerateContentResponse) (string, []dto.VertexToolCall) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", nil
	}

	var text string
	var calls []dto.VertexToolCall
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			switch p := part.(type) {
			case genai.Text:
				text += string(p)
			case genai.FunctionCall:
				calls = append(calls, dto.VertexToolCall{Name: p.Name, Args: p.Args})
			case *genai.FunctionCall:
				calls = append(calls, dto.VertexToolCall{Name: p.Name, Args: p.Args})
			}
		}
	}

	return text, calls
}

func finishReason(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return ""
	}
	return resp.Candidates[0].FinishReason.String()
}

func isTransient(err error) bool {
	switch status.Code(err) {
	case codes.Unavailable, codes.DeadlineExceeded, codes.ResourceExhausted, codes.Aborted:
		return true
	default:
		return false
	}
}

func toGenaiTools(tools []dto.VertexTool) []*genai.Tool {
	if len(tools) == 0 {
		return nil
	}

	decls := make([]*genai.FunctionDeclaration, 0, len(tools))
	for _, tool := range tools {
		decls = append(decls, &genai.FunctionDeclaration{
			Name:        tool.Name,
			Description: tool.Description,
			Parameters:  toGenaiSchema(tool.Parameters),
		})
	}

	return []*genai.Tool{
		{FunctionDeclarations: decls},
	}
}

func toGenaiSchema(schema *dto.VertexSchema) *genai.Schema {
	if schema == nil {
		return nil
	}

	out := &genai.Schema{
		Type:        toGenaiType(schema.Type),
		Description: schema.Description,
		Enum:        schema.Enum,
		Required:    schema.Required,
	}

	if schema.Items != nil {
		out.Items = toGenaiSchema(schema.Items)
	}
	if len(schema.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(schema.Properties))
		for key, value := range schema.Properties {
			out.Properties[key] = toGenaiSchema(value)
		}
	}

	return out
}

func toGenaiType(schemaType string) genai.Type {
	switch schemaType {
	case "object":
		return genai.TypeObject
	case "array":
		return genai.TypeArray
	case "string":
		return genai.TypeString
	case "number":
		return genai.TypeNumber
	case "integer":
		return genai.TypeInteger
	case "boolean":
		return genai.TypeBoolean
	default:
		return genai.TypeUnspecified
	}
}
