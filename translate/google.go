package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// GoogleTranslator calls the public translate_a/single endpoint, the same
// one browser extensions use. No API key is needed.
type GoogleTranslator struct {
	client *resty.Client
}

func NewGoogleTranslator(baseURL string) *GoogleTranslator {
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(30 * time.Second)
	return &GoogleTranslator{client: client}
}

func (g *GoogleTranslator) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	if strings.TrimSpace(text) == "" || sourceLang == targetLang {
		return text, nil
	}

	resp, err := g.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"client": "gtx",
			"sl":     sourceLang,
			"tl":     targetLang,
			"dt":     "t",
		}).
		SetFormData(map[string]string{"q": text}).
		Post("/translate_a/single")
	if err != nil {
		return "", fmt.Errorf("translate request: %w", err)
	}
	if resp.StatusCode() != 200 {
		return "", fmt.Errorf("translate: unexpected status %d: %s", resp.StatusCode(), resp.String())
	}

	return parseGoogleResponse(resp.Body())
}

// parseGoogleResponse joins the translated segments of a response shaped like
// [[["Hello","Xin chào",null,null,10],...],null,"vi",...].
func parseGoogleResponse(body []byte) (string, error) {
	var raw []interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return "", fmt.Errorf("translate: decode response: %w", err)
	}
	if len(raw) == 0 {
		return "", fmt.Errorf("translate: empty response")
	}

	segments, ok := raw[0].([]interface{})
	if !ok {
		return "", fmt.Errorf("translate: unexpected response shape")
	}

	var sb strings.Builder
	for _, seg := range segments {
		parts, ok := seg.([]interface{})
		if !ok || len(parts) == 0 {
			continue
		}
		if s, ok := parts[0].(string); ok {
			sb.WriteString(s)
		}
	}
	return sb.String(), nil
}
