package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"
)

// DefaultEndpoint is the address of a locally running OCR service
const DefaultEndpoint = "http://localhost:8000/ocr"

// Submitter sends a file to the OCR service
type Submitter interface {
	// Submit performs exactly one request and returns the decoded reply
	Submit(ctx context.Context, file *SelectedFile, params Params) (*Reply, error)
}

// HTTPSubmitter implements Submitter against the multipart HTTP API
type HTTPSubmitter struct {
	endpoint string
	client   *http.Client
}

// NewHTTPSubmitter creates a submitter for the given endpoint.
// A zero timeout leaves requests unbounded.
func NewHTTPSubmitter(endpoint string, timeout time.Duration) *HTTPSubmitter {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &HTTPSubmitter{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

// Endpoint returns the configured service address
func (s *HTTPSubmitter) Endpoint() string {
	return s.endpoint
}

// Submit uploads the file with its parameters and decodes the reply
func (s *HTTPSubmitter) Submit(ctx context.Context, file *SelectedFile, params Params) (*Reply, error) {
	body, contentType, err := encodeForm(file, params)
	if err != nil {
		return nil, fmt.Errorf("encoding form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	slog.Info("Submitting file for OCR",
		"endpoint", s.endpoint,
		"filename", file.Name,
		"size", file.Size,
		"engine", params.Engine,
		"psm", params.PSM.String(),
		"lang", params.Lang,
	)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Err: fmt.Errorf("reading response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb errorBody
		_ = json.Unmarshal(data, &eb)
		return nil, &HTTPError{StatusCode: resp.StatusCode, Detail: eb.Detail}
	}

	reply, err := decodeReply(data)
	if err != nil {
		slog.Warn("Malformed OCR reply, treating as empty text", "error", err)
		return &Reply{}, nil
	}
	return reply, nil
}

// encodeForm builds the multipart body: the file plus engine, psm and lang
func encodeForm(file *SelectedFile, params Params) (io.Reader, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", file.Name)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(file.data); err != nil {
		return nil, "", err
	}

	fields := [][2]string{
		{"engine", string(params.Engine)},
		{"psm", params.PSM.String()},
		{"lang", params.Lang},
	}
	if params.Engine == EngineKraken && params.KrakenModel != "" {
		fields = append(fields, [2]string{"kraken_model", params.KrakenModel})
	}
	for _, f := range fields {
		if err := writer.WriteField(f[0], f[1]); err != nil {
			return nil, "", err
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return &buf, writer.FormDataContentType(), nil
}
