// Package copywrite generates outreach copy through an LLM. The model is
// asked for a small JSON object so malformed output is caught by the parser
// instead of leaking into the message the user receives.
package copywrite

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	einoprompt "github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	contractx "github.com/tanpawarit/Shoply-Proactive-Sales-Assist/agent/contract"
	promptx "github.com/tanpawarit/Shoply-Proactive-Sales-Assist/agent/prompt"
)

// copyLLMOutput is the schema the model must respond with.
type copyLLMOutput struct {
	Copy  string `json:"copy"`
	Style string `json:"style"`
}

// Writer implements contract.CopyWriter on top of two compiled prompt
// graphs, one per copy variant.
type Writer struct {
	primaryRunner  compose.Runnable[map[string]any, copyLLMOutput]
	followupRunner compose.Runnable[map[string]any, copyLLMOutput]
}

var _ contractx.CopyWriter = (*Writer)(nil)

// NewWriter compiles both copy graphs against the given chat model.
func NewWriter(ctx context.Context, chatModel einomodel.BaseChatModel) (*Writer, error) {
	prompts := promptx.LoadPromptSet()

	primary, err := compileCopyGraph(ctx, chatModel, prompts.Copy, "copywrite.primary_graph")
	if err != nil {
		return nil, fmt.Errorf("compile primary copy graph: %w", err)
	}
	followup, err := compileCopyGraph(ctx, chatModel, prompts.Followup, "copywrite.followup_graph")
	if err != nil {
		return nil, fmt.Errorf("compile followup copy graph: %w", err)
	}

	return &Writer{primaryRunner: primary, followupRunner: followup}, nil
}

func (w *Writer) Primary(ctx context.Context, req contractx.CopyRequest) (string, error) {
	return w.generate(ctx, w.primaryRunner, req)
}

func (w *Writer) Followup(ctx context.Context, req contractx.CopyRequest) (string, error) {
	return w.generate(ctx, w.followupRunner, req)
}

func (w *Writer) generate(
	ctx context.Context,
	runner compose.Runnable[map[string]any, copyLLMOutput],
	req contractx.CopyRequest,
) (string, error) {
	if req.Product == nil {
		return "", fmt.Errorf("%w: product is required to write copy", contractx.ErrValidation)
	}

	payload := map[string]any{
		"product":       req.Product,
		"intent_level":  req.IntentLevel,
		"intent_reason": req.IntentReason,
		"rag_chunks":    req.RAGChunks,
		"style":         req.Style,
	}
	inputBytes, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("%w: marshal copy payload: %v", contractx.ErrValidation, err)
	}

	out, err := runner.Invoke(ctx, map[string]any{
		"input": string(inputBytes),
	})
	if err != nil {
		return "", fmt.Errorf("%w: copy invoke: %v", contractx.ErrModelInvoke, err)
	}

	copyText := strings.TrimSpace(out.Copy)
	if copyText == "" {
		return "", fmt.Errorf("%w: model returned empty copy", contractx.ErrSchemaViolation)
	}
	return copyText, nil
}

func compileCopyGraph(
	ctx context.Context,
	chatModel einomodel.BaseChatModel,
	systemPrompt string,
	graphName string,
) (compose.Runnable[map[string]any, copyLLMOutput], error) {
	template := einoprompt.FromMessages(
		schema.FString,
		schema.SystemMessage(systemPrompt),
		schema.UserMessage("{input}"),
	)

	parser := schema.NewMessageJSONParser[copyLLMOutput](&schema.MessageJSONParseConfig{
		ParseFrom: schema.MessageParseFromContent,
	})

	graph := compose.NewGraph[map[string]any, copyLLMOutput]()
	if err := graph.AddChatTemplateNode("prompt", template); err != nil {
		return nil, fmt.Errorf("add copy prompt node: %w", err)
	}
	if err := graph.AddChatModelNode("model", chatModel); err != nil {
		return nil, fmt.Errorf("add copy model node: %w", err)
	}
	if err := graph.AddLambdaNode("parse_json", compose.MessageParser(parser)); err != nil {
		return nil, fmt.Errorf("add copy parser node: %w", err)
	}

	if err := graph.AddEdge(compose.START, "prompt"); err != nil {
		return nil, fmt.Errorf("add copy edge start->prompt: %w", err)
	}
	if err := graph.AddEdge("prompt", "model"); err != nil {
		return nil, fmt.Errorf("add copy edge prompt->model: %w", err)
	}
	if err := graph.AddEdge("model", "parse_json"); err != nil {
		return nil, fmt.Errorf("add copy edge model->parse: %w", err)
	}
	if err := graph.AddEdge("parse_json", compose.END); err != nil {
		return nil, fmt.Errorf("add copy edge parse->end: %w", err)
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName(graphName))
	if err != nil {
		return nil, fmt.Errorf("compile copy graph: %w", err)
	}
	return runner, nil
}
