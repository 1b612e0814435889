package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/manavc-13/KIIT-Mailer/batch"
)

var tracer = otel.Tracer("github.com/manavc-13/KIIT-Mailer/relay")

// SendMailPath is the send endpoint relative to the relay base URL.
const SendMailPath = "/api/send-mail"

const rawPreviewLen = 100

var _ batch.Sender = (*Client)(nil)

// Client sends batch rows through a relay over HTTP, one form post per row.
type Client struct {
	url   string
	http  *http.Client
	creds batch.Credentials
}

// NewClient returns a client for the relay at baseURL. A nil httpClient
// means http.DefaultClient, which has no timeout.
func NewClient(baseURL string, creds batch.Credentials, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		url:   strings.TrimRight(baseURL, "/") + SendMailPath,
		http:  httpClient,
		creds: creds,
	}
}

// ClientFactory builds clients for a session.
func ClientFactory(baseURL string, httpClient *http.Client) batch.SenderFactory {
	return func(c batch.Credentials) batch.Sender {
		return NewClient(baseURL, c, httpClient)
	}
}

func (c *Client) SendOne(ctx context.Context, msg batch.Message) (string, error) {
	ctx, span := tracer.Start(ctx, "Relay.SendOne", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(attribute.String("relay.url", c.url), attribute.Int("relay.attachments", len(msg.Attachments)))

	id, err := c.send(ctx, msg)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	span.SetStatus(codes.Ok, "")
	return id, nil
}

func (c *Client) send(ctx context.Context, msg batch.Message) (string, error) {
	body, contentType, err := c.encode(msg)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, body)
	if err != nil {
		return "", errors.Wrap(err, "failed to build relay request")
	}
	req.Header.Set("Content-Type", contentType)
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.http.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "relay request failed")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrap(err, "failed to read relay response")
	}
	return parseSendResponse(resp.StatusCode, raw)
}

// parseSendResponse reads the body as text first so non-JSON error pages
// still produce a readable failure.
func parseSendResponse(status int, raw []byte) (string, error) {
	var data sendResponse
	if err := json.Unmarshal(raw, &data); err != nil {
		return "", errors.Errorf("Server Error (Raw): %s...", truncate(string(raw), rawPreviewLen))
	}

	if status >= 200 && status < 300 && data.Success {
		return data.MessageID, nil
	}

	switch {
	case data.Error != "":
		return "", errors.New(data.Error)
	case data.Message != "":
		return "", errors.New(data.Message)
	default:
		return "", errors.New("Unknown Server Error")
	}
}

func (c *Client) encode(msg batch.Message) (io.Reader, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	fields := [][2]string{
		{FieldTo, msg.To},
		{FieldSubject, msg.Subject},
		{FieldHTML, msg.HTML},
		{FieldSMTPUser, c.creds.Email},
		{FieldSMTPPass, c.creds.Password},
	}
	if c.creds.DisplayName != "" {
		fields = append(fields, [2]string{FieldDisplayName, c.creds.DisplayName})
	}
	if c.creds.ReplyTo != "" {
		fields = append(fields, [2]string{FieldReplyTo, c.creds.ReplyTo})
	}
	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, "", errors.Wrapf(err, "failed to write field %s", f[0])
		}
	}

	for _, a := range msg.Attachments {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, FieldFile, a.Filename))
		h.Set("Content-Type", a.ContentType)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", errors.Wrapf(err, "failed to add attachment %s", a.Filename)
		}
		if _, err := part.Write(a.Content); err != nil {
			return nil, "", errors.Wrapf(err, "failed to add attachment %s", a.Filename)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", errors.Wrap(err, "failed to finish form")
	}
	return buf, w.FormDataContentType(), nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
