package aisummarizer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const notMentioned = "Not mentioned"

// Client клиент сервиса генерации медицинской сводки
type Client struct {
	url        string
	apiKey     string
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента
// url указывает на метод generateContent конкретной модели
func NewClient(url, apiKey string, timeout time.Duration, log Logger) *Client {
	return &Client{
		url:    url,
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// Analyze отправляет данные пациента модели и возвращает JSON объект из её ответа без изменений
func (c *Client) Analyze(ctx context.Context, in Input) (json.RawMessage, error) {
	prompt, err := buildPrompt(in)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to build prompt: %v", ErrInternal, err)
	}

	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to encode request: %v", ErrInternal, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to execute request: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: unexpected status code %d: %s", ErrUnavailable, resp.StatusCode, string(raw))
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}

	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("%w: empty candidates", ErrInvalidResponse)
	}

	analysis, err := extractObject(out.Candidates[0].Content.Parts[0].Text)
	if err != nil {
		return nil, err
	}

	c.log.Info("AI analysis received: %d bytes", len(analysis))
	return analysis, nil
}

// extractObject вырезает текст от первой '{' до последней '}' и проверяет, что это валидный JSON
// Модель иногда оборачивает ответ в markdown или добавляет пояснения
func extractObject(text string) (json.RawMessage, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return nil, fmt.Errorf("%w: no JSON object in model output", ErrInvalidResponse)
	}

	candidate := []byte(text[start : end+1])
	if !json.Valid(candidate) {
		return nil, fmt.Errorf("%w: malformed JSON object in model output", ErrInvalidResponse)
	}

	return json.RawMessage(candidate), nil
}

func buildPrompt(in Input) (string, error) {
	info := patientInfo{
		Name:            in.Patient.Name,
		Age:             in.Patient.Age,
		Gender:          valueOr(in.Patient.Gender),
		BloodPressure:   flagValue(in.Patient.BloodPressure.Value),
		Diabetic:        flagValue(in.Patient.Diabetic.Value),
		Hyperthyroidism: flagValue(in.Patient.Hyperthyroidism.Value),
	}

	groups := make([]reportGroup, 0, len(in.Reports))
	for _, g := range in.Reports {
		groups = append(groups, reportGroup{GroupName: g.Name, ReportURLs: g.Files})
	}

	infoJSON, err := json.MarshalIndent(info, "  ", "  ")
	if err != nil {
		return "", err
	}
	groupsJSON, err := json.MarshalIndent(groups, "  ", "  ")
	if err != nil {
		return "", err
	}

	issues := strings.TrimSpace(in.HealthIssues)
	if issues == "" {
		issues = notMentioned
	}

	var b strings.Builder
	b.WriteString("You are a senior Interventional Radiology AI assistant.\n\n")
	b.WriteString("You are given a patient's demographic background, their described health issues ")
	b.WriteString("and medical report URLs (images or PDFs) grouped by report name.\n\n")
	b.WriteString("For each report group interpret the typical content with a radiology focus, ")
	b.WriteString("list its URLs under \"reportUrls\" and mark critical findings with \"WARNING\". ")
	b.WriteString("Then give a mandatory overall summary and recommendations for the attending doctor.\n\n")
	b.WriteString("Respond strictly with one JSON object and nothing else, using the keys ")
	b.WriteString("\"patientInfo\", \"reportAnalyses\" (groupName, reportUrls, analysis, warnings), ")
	b.WriteString("\"overallSummary\" and \"doctorRecommendations\".\n\n")
	fmt.Fprintf(&b, "patientInfo:\n  %s\n\n", infoJSON)
	fmt.Fprintf(&b, "healthIssues:\n  %s\n\n", issues)
	fmt.Fprintf(&b, "reportGroups:\n  %s\n", groupsJSON)

	return b.String(), nil
}

func valueOr(s *string) string {
	if s == nil || *s == "" {
		return notMentioned
	}
	return *s
}

func flagValue(v string) string {
	if v == "" {
		return notMentioned
	}
	return v
}
