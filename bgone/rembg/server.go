package rembg

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"mime/multipart"

	"github.com/segmentio/ksuid"

	nhttp "github.com/chaos-io/bgone/util/http"
)

const (
	DefaultBaseURL = "http://127.0.0.1:7000"
	DefaultModel   = "u2net"

	// Longest edge sent to the server; larger inputs are downscaled for
	// upload and the resulting alpha is mapped back to full resolution.
	defaultMaxUploadEdge = 2048

	removePath = "/api/remove"
)

// Server removes backgrounds through a running `rembg s` HTTP server.
// The image is uploaded as multipart form data and the response body is
// the cut-out image encoded as PNG.
type Server struct {
	BaseURL string
	Model   string

	// MaxUploadEdge bounds the size of the uploaded image; 0 disables
	// the downscale guard.
	MaxUploadEdge int

	cli nhttp.IClient
}

func NewServer(baseURL, model string) *Server {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}
	return &Server{
		BaseURL:       baseURL,
		Model:         model,
		MaxUploadEdge: defaultMaxUploadEdge,
		cli:           nhttp.NewHTTPClient(),
	}
}

func (s *Server) Remove(ctx context.Context, img image.Image) (image.Image, error) {
	upload := downscaleWithinMax(img, s.MaxUploadEdge)

	body, contentType, err := encodeUpload(upload, s.Model)
	if err != nil {
		return nil, err
	}

	var raw []byte
	reqParam := &nhttp.RequestParam{
		RequestURI: s.BaseURL + removePath,
		Method:     "POST",
		Header:     map[string]string{"Content-Type": contentType},
		Body:       body,
		Response:   &raw,
	}
	if err := s.cli.DoHTTPRequest(ctx, reqParam); err != nil {
		return nil, fmt.Errorf("rembg server: %w", err)
	}

	cut, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode rembg response: %w", err)
	}

	slog.Debug("rembg server responded",
		"model", s.Model,
		"upload_w", upload.Bounds().Dx(), "upload_h", upload.Bounds().Dy(),
		"bytes", len(raw))

	return restoreSize(img, cut), nil
}

// encodeUpload builds the multipart body: the PNG-encoded image under a
// unique filename plus the model form field.
func encodeUpload(img image.Image, model string) (*bytes.Buffer, string, error) {
	var pngBuf bytes.Buffer
	if err := png.Encode(&pngBuf, img); err != nil {
		return nil, "", fmt.Errorf("encode upload: %w", err)
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", ksuid.New().String()+".png")
	if err != nil {
		return nil, "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(pngBuf.Bytes()); err != nil {
		return nil, "", fmt.Errorf("write form file: %w", err)
	}

	_ = writer.WriteField("model", model)
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart writer: %w", err)
	}

	return body, writer.FormDataContentType(), nil
}
