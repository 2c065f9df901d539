package suggestions

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

const defaultTimeout = 15 * time.Second

// GenerativeConfig настраивает вызов внешней text-generation модели
type GenerativeConfig struct {
	APIURL     string
	APIKey     string
	Model      string
	HTTPClient *http.Client

	// Timeout ограничивает один вызов модели, чтобы зависший апстрим
	// не держал фоновую выборку бесконечно
	Timeout time.Duration
}

// Generative строит инструкцию по контексту комнаты и просит модель
// вернуть массив подсказок. Ответ разбирается снисходительно: берется
// первая скобочная подстрока [...] из сырого вывода.
type Generative struct {
	cfg GenerativeConfig
}

func NewGenerative(cfg GenerativeConfig) *Generative {
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}
	if cfg.APIURL == "" {
		cfg.APIURL = "https://api.openai.com/v1/chat/completions"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Generative{cfg: cfg}
}

func (g *Generative) Fetch(ctx context.Context, req Request) []string {
	texts, err := g.generate(ctx, req)
	if err != nil {
		log.Errorf("suggestions: generation failed: %v", err)
		return Fallback(req.Kind)
	}
	return texts
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (g *Generative) generate(ctx context.Context, req Request) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	payload := chatRequest{
		Model: g.cfg.Model,
		Messages: []chatMessage{
			{Role: "user", Content: buildPrompt(req)},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.APIURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if g.cfg.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+g.cfg.APIKey)
	}

	resp, err := g.cfg.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("model endpoint returned %d", resp.StatusCode)
	}

	var decoded chatResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, err
	}
	if len(decoded.Choices) == 0 {
		return nil, errors.New("model response has no choices")
	}

	return parseSuggestions(decoded.Choices[0].Message.Content)
}

func buildPrompt(req Request) string {
	var b strings.Builder

	if req.Kind == KindStarter {
		fmt.Fprintf(&b, "Generate %d interesting and progressive conversation starter questions for the category %q. The questions should help the conversation move forward.\n", K, req.Category)
	} else {
		// История приходит от нового к старому, модели отдаем хронологию
		latest := ""
		if len(req.History) > 0 {
			latest = req.History[0].Text
		}

		fmt.Fprintf(&b, "You are a chat helper. A user has sent a message. Generate %d interesting replies for the OTHER user.\n\n", K)
		b.WriteString("Rules for replies:\n")
		fmt.Fprintf(&b, "1. Base the replies on the latest message and the overall conversation history.\n")
		fmt.Fprintf(&b, "2. Replies must be related to the category %q; if the latest message is off-topic, acknowledge it and gently guide the conversation back.\n", req.Category)
		b.WriteString("3. The replies must not be repetitive and must help the conversation move forward.\n")
		b.WriteString("4. Make the three suggestions different from each other, engaging, and a single sentence each.\n\n")

		fmt.Fprintf(&b, "Conversation category: %q\n", req.Category)
		b.WriteString("Conversation history (oldest to newest):\n")
		if len(req.History) == 0 {
			b.WriteString("(No history yet, start the conversation!)\n")
		} else {
			for i := len(req.History) - 1; i >= 0; i-- {
				fmt.Fprintf(&b, "User: %s\n", req.History[i].Text)
			}
		}
		fmt.Fprintf(&b, "\nLatest message to reply to: %q\n", latest)
	}

	if len(req.Exclude) > 0 {
		b.WriteString("\nDo not repeat any of these previous suggestions:\n")
		for _, text := range req.Exclude {
			fmt.Fprintf(&b, "- %s\n", text)
		}
	}

	fmt.Fprintf(&b, "\nIMPORTANT: Your output MUST be a valid JSON array of %d strings, like this: [\"first\", \"second\", \"third\"]. Do not add any other text, markdown formatting, or explanations.", K)

	return b.String()
}

// parseSuggestions вытаскивает первый [...] из сырого вывода модели
// и декодирует его как массив строк. Меньше K — допустимо.
func parseSuggestions(raw string) ([]string, error) {
	start := strings.Index(raw, "[")
	end := strings.LastIndex(raw, "]")
	if start < 0 || end <= start {
		return nil, errors.New("model output has no bracketed array")
	}

	var texts []string
	if err := json.Unmarshal([]byte(raw[start:end+1]), &texts); err != nil {
		return nil, fmt.Errorf("model output is not a string array: %w", err)
	}

	if len(texts) > K {
		texts = texts[:K]
	}
	return texts, nil
}
