// Package anthropic wraps the official SDK behind the one surface the cost
// engine needs: schema-constrained structured generation.
package anthropic

import (
	"context"
	"encoding/json"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"
)

// Client defines the Anthropic API operations used by the engine.
type Client interface {
	GenerateStructured(ctx context.Context, req StructuredRequest) (json.RawMessage, error)
}

// StructuredRequest asks the model for output conforming to a JSON schema.
// The schema is presented as a forced tool call, so the response is the
// tool's input payload rather than free text.
type StructuredRequest struct {
	Model           string
	MaxTokens       int64
	System          string
	Prompt          string
	ToolName        string
	ToolDescription string
	Properties      map[string]any
	Required        []string
}

// sdkClient implements Client using the official anthropic-sdk-go.
type sdkClient struct {
	client sdk.Client
}

// NewClient creates a new Anthropic client backed by the SDK.
func NewClient(apiKey string, opts ...option.RequestOption) Client {
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &sdkClient{
		client: sdk.NewClient(opts...),
	}
}

func (c *sdkClient) GenerateStructured(ctx context.Context, req StructuredRequest) (json.RawMessage, error) {
	tool := sdk.ToolParam{
		Name:        req.ToolName,
		Description: sdk.String(req.ToolDescription),
		InputSchema: sdk.ToolInputSchemaParam{
			Properties: req.Properties,
			Required:   req.Required,
		},
	}

	params := sdk.MessageNewParams{
		Model:     sdk.Model(req.Model),
		MaxTokens: req.MaxTokens,
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(req.Prompt)),
		},
		Tools: []sdk.ToolUnionParam{{OfTool: &tool}},
		ToolChoice: sdk.ToolChoiceUnionParam{
			OfTool: &sdk.ToolChoiceToolParam{Name: req.ToolName},
		},
	}
	if req.System != "" {
		params.System = []sdk.TextBlockParam{{Text: req.System}}
	}

	msg, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return nil, eris.Wrap(err, "anthropic: generate structured")
	}

	for _, block := range msg.Content {
		if block.Type == "tool_use" && block.Name == req.ToolName {
			return json.RawMessage(block.Input), nil
		}
	}

	return nil, eris.Errorf("anthropic: response carried no %s tool call", req.ToolName)
}
