package translate

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoogleTranslator(t *testing.T) {
	var gotQuery, gotText string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/translate_a/single", r.URL.Path)
		assert.NoError(t, r.ParseForm())
		gotQuery = r.URL.Query().Get("sl") + ">" + r.URL.Query().Get("tl")
		gotText = r.PostForm.Get("q")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[[["The sky is blue. ","Bầu trời màu xanh. ",null,null,10],["Water boils.","Nước sôi.",null,null,10]],null,"vi"]`))
	}))
	defer srv.Close()

	tr := NewGoogleTranslator(srv.URL)
	out, err := tr.Translate(context.Background(), "Bầu trời màu xanh. Nước sôi.", "vi", "en")

	require.NoError(t, err)
	assert.Equal(t, "The sky is blue. Water boils.", out)
	assert.Equal(t, "vi>en", gotQuery)
	assert.Equal(t, "Bầu trời màu xanh. Nước sôi.", gotText)
}

func TestGoogleTranslatorSkipsSameLanguage(t *testing.T) {
	tr := NewGoogleTranslator("http://127.0.0.1:1")

	out, err := tr.Translate(context.Background(), "unchanged", "en", "en")
	require.NoError(t, err)
	assert.Equal(t, "unchanged", out)
}

func TestGoogleTranslatorErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewGoogleTranslator(srv.URL).Translate(context.Background(), "xin chào", "vi", "en")
	assert.Error(t, err)
}

func TestParseGoogleResponseRejectsGarbage(t *testing.T) {
	_, err := parseGoogleResponse([]byte(`{"error":"nope"}`))
	assert.Error(t, err)

	_, err = parseGoogleResponse([]byte(`["nope"]`))
	assert.Error(t, err)
}

func TestNew(t *testing.T) {
	tr, err := New(Options{Provider: "none"})
	require.NoError(t, err)
	assert.IsType(t, Passthrough{}, tr)

	tr, err = New(Options{Provider: "google", BaseURL: "http://localhost"})
	require.NoError(t, err)
	assert.IsType(t, &GoogleTranslator{}, tr)

	tr, err = New(Options{Provider: "openai", APIKey: "sk-test", Model: "gpt-4o"})
	require.NoError(t, err)
	assert.IsType(t, &LLMTranslator{}, tr)

	_, err = New(Options{Provider: "babelfish"})
	assert.Error(t, err)
}
