package inference

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newModelServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")

		switch r.URL.Path {
		case "/summarize":
			assert.Equal(t, "The sky is blue", body["context"])
			io.WriteString(w, `{"summary":"sky blue","sentences":["The sky is blue"]}`)
		case "/keywords":
			assert.Equal(t, "sky blue", body["summary"])
			io.WriteString(w, `{"keywords":["blue"]}`)
		case "/answers":
			io.WriteString(w, `{"answers":[{"correct":"blue","choices":["red","blue","green","grey"]}]}`)
		case "/question":
			assert.Equal(t, "blue", body["answer"])
			io.WriteString(w, `{"question":"What color is the sky?"}`)
		default:
			w.WriteHeader(http.StatusUnprocessableEntity)
			io.WriteString(w, `{"detail":"no such model"}`)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPBackendChain(t *testing.T) {
	srv := newModelServer(t)
	b := NewHTTPBackend(srv.URL+"/", 5*time.Second)
	ctx := context.Background()

	summary, err := b.Summarize(ctx, "The sky is blue")
	require.NoError(t, err)
	assert.Equal(t, Summary{Text: "sky blue", Sentences: []string{"The sky is blue"}}, summary)

	keywords, err := b.ExtractKeywords(ctx, summary.Sentences, summary.Text)
	require.NoError(t, err)
	assert.Equal(t, []string{"blue"}, keywords)

	answers, err := b.GenerateAnswers(ctx, keywords)
	require.NoError(t, err)
	require.Len(t, answers, 1)
	assert.Equal(t, "blue", answers[0].Correct)
	assert.Equal(t, []string{"red", "blue", "green", "grey"}, answers[0].Choices)

	question, err := b.GenerateQuestion(ctx, summary.Text, "blue")
	require.NoError(t, err)
	assert.Equal(t, "What color is the sky?", question)
}

func TestHTTPBackendSurfacesServerDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, `{"detail":"CUDA out of memory"}`)
	}))
	defer srv.Close()

	_, err := NewHTTPBackend(srv.URL, time.Second).Summarize(context.Background(), "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CUDA out of memory")
	assert.Contains(t, err.Error(), "500")
}

func chatCompletion(toolName, arguments string) string {
	args, _ := json.Marshal(arguments)
	return `{"id":"chatcmpl-1","object":"chat.completion","created":1,"model":"gpt-4o","choices":[{"index":0,` +
		`"message":{"role":"assistant","content":"","tool_calls":[{"id":"call_1","type":"function",` +
		`"function":{"name":"` + toolName + `","arguments":` + string(args) + `}}]},"finish_reason":"tool_calls"}]}`
}

func TestOpenAIBackendForcedToolCall(t *testing.T) {
	var gotTool string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		var req struct {
			ToolChoice struct {
				Function struct {
					Name string `json:"name"`
				} `json:"function"`
			} `json:"tool_choice"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		gotTool = req.ToolChoice.Function.Name

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, chatCompletion("submit_answers",
			`{"answers":[{"correct":"100 degrees","choices":["50 degrees","100 degrees","0 degrees","212 degrees"]}]}`))
	}))
	defer srv.Close()

	b := NewOpenAIBackend("sk-test", srv.URL+"/v1", "")
	answers, err := b.GenerateAnswers(context.Background(), []string{"100 degrees"})

	require.NoError(t, err)
	assert.Equal(t, "submit_answers", gotTool)
	require.Len(t, answers, 1)
	assert.Equal(t, "100 degrees", answers[0].Correct)
	assert.Len(t, answers[0].Choices, 4)
}

func TestOpenAIBackendRejectsWrongTool(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, chatCompletion("submit_keywords", `{"keywords":["x"]}`))
	}))
	defer srv.Close()

	_, err := NewOpenAIBackend("sk-test", srv.URL+"/v1", "gpt-4o").GenerateQuestion(context.Background(), "ctx", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected tool call")
}

func TestNewBackend(t *testing.T) {
	m, err := New(Options{Backend: "http", BaseURL: "http://localhost:8000"})
	require.NoError(t, err)
	assert.IsType(t, &HTTPBackend{}, m.Summarizer)

	m, err = New(Options{Backend: "OpenAI", APIKey: "sk-test"})
	require.NoError(t, err)
	assert.IsType(t, &OpenAIBackend{}, m.Questions)

	_, err = New(Options{Backend: "onnx"})
	assert.Error(t, err)
}
