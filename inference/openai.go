package inference

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIBackend runs every model as a chat completion that is forced to
// answer through a single function tool, so replies are always structured.
type OpenAIBackend struct {
	client *openai.Client
	model  string
}

func NewOpenAIBackend(apiKey, baseURL, model string) *OpenAIBackend {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = openai.GPT4o
	}
	return &OpenAIBackend{client: openai.NewClientWithConfig(cfg), model: model}
}

func stringArray(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "array",
		"items":       map[string]interface{}{"type": "string"},
		"description": description,
	}
}

// callTool sends one system/user exchange and decodes the forced tool call
// arguments into out.
func (o *OpenAIBackend) callTool(ctx context.Context, tool openai.FunctionDefinition, system, user string, out interface{}) error {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Tools: []openai.Tool{{Type: openai.ToolTypeFunction, Function: &tool}},
		ToolChoice: openai.ToolChoice{
			Type:     openai.ToolTypeFunction,
			Function: openai.ToolFunction{Name: tool.Name},
		},
	})
	if err != nil {
		return fmt.Errorf("%s: %w", tool.Name, err)
	}
	if len(resp.Choices) == 0 {
		return fmt.Errorf("%s: no response from model", tool.Name)
	}

	msg := resp.Choices[0].Message
	if len(msg.ToolCalls) == 0 {
		return fmt.Errorf("%s: no tool calls in response", tool.Name)
	}
	call := msg.ToolCalls[0]
	if call.Function.Name != tool.Name {
		return fmt.Errorf("unexpected tool call: %s", call.Function.Name)
	}
	if err := json.Unmarshal([]byte(call.Function.Arguments), out); err != nil {
		return fmt.Errorf("%s: failed to parse tool arguments: %w", tool.Name, err)
	}
	return nil
}

func (o *OpenAIBackend) Summarize(ctx context.Context, text string) (Summary, error) {
	tool := openai.FunctionDefinition{
		Name:        "submit_summary",
		Description: "Submit the summary and the sentence split of the text",
		Parameters: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"summary":   map[string]interface{}{"type": "string", "description": "Abstractive summary of the text"},
				"sentences": stringArray("The original text split into sentences, unchanged"),
			},
			"required": []string{"summary", "sentences"},
		},
	}

	var out Summary
	err := o.callTool(ctx, tool,
		"You summarize study material. Keep every fact that could be asked in a quiz.",
		text, &out)
	return out, err
}

func (o *OpenAIBackend) ExtractKeywords(ctx context.Context, sentences []string, summary string) ([]string, error) {
	tool := openai.FunctionDefinition{
		Name:        "submit_keywords",
		Description: "Submit keywords that are good quiz answers",
		Parameters: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"keywords": stringArray("Short keywords or key phrases present in both the summary and the sentences"),
			},
			"required": []string{"keywords"},
		},
	}

	var sb strings.Builder
	sb.WriteString("Summary:\n")
	sb.WriteString(summary)
	sb.WriteString("\n\nSentences:\n")
	for _, s := range sentences {
		sb.WriteString("- ")
		sb.WriteString(s)
		sb.WriteString("\n")
	}

	var out struct {
		Keywords []string `json:"keywords"`
	}
	err := o.callTool(ctx, tool,
		"You extract answer keywords for quiz questions. Only keep keywords the summary still mentions.",
		sb.String(), &out)
	return out.Keywords, err
}

func (o *OpenAIBackend) GenerateAnswers(ctx context.Context, keywords []string) ([]AnswerSet, error) {
	tool := openai.FunctionDefinition{
		Name:        "submit_answers",
		Description: "Submit the answer choices for every keyword",
		Parameters: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"answers": map[string]interface{}{
					"type": "array",
					"items": map[string]interface{}{
						"type": "object",
						"properties": map[string]interface{}{
							"correct": map[string]interface{}{"type": "string", "description": "The keyword itself"},
							"choices": stringArray("Exactly 4 options: the correct answer and 3 plausible false answers, in random order"),
						},
						"required": []string{"correct", "choices"},
					},
				},
			},
			"required": []string{"answers"},
		},
	}

	var out struct {
		Answers []AnswerSet `json:"answers"`
	}
	err := o.callTool(ctx, tool,
		"You write distractors for multiple choice questions. Skip keywords without good distractors.",
		"Keywords:\n- "+strings.Join(keywords, "\n- "), &out)
	return out.Answers, err
}

func (o *OpenAIBackend) GenerateQuestion(ctx context.Context, summary, answer string) (string, error) {
	tool := openai.FunctionDefinition{
		Name:        "submit_question",
		Description: "Submit one question whose answer is the given answer",
		Parameters: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"question": map[string]interface{}{"type": "string", "description": "The question stem"},
			},
			"required": []string{"question"},
		},
	}

	var out struct {
		Question string `json:"question"`
	}
	err := o.callTool(ctx, tool,
		"You write one quiz question from a context. The answer must not appear in the question.",
		fmt.Sprintf("Context:\n%s\n\nAnswer: %s", summary, answer), &out)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(out.Question) == "" {
		return "", fmt.Errorf("submit_question: empty question for answer %q", answer)
	}
	return out.Question, nil
}
