package smtp

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	netmail "net/mail"
	"net/textproto"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/manavc-13/KIIT-Mailer/mail"
)

const base64LineLen = 76

// newMessageID builds an RFC 5322 Message-ID in the sender's domain.
func newMessageID(from string) string {
	domain := "localhost"
	if _, d, ok := strings.Cut(from, "@"); ok && d != "" {
		domain = d
	}
	return fmt.Sprintf("<%s@%s>", uuid.NewString(), domain)
}

// buildMessage renders the raw message. Without attachments the content is
// a single part or multipart/alternative; with attachments it is wrapped in
// multipart/mixed.
func buildMessage(email mail.Email, messageID string, now time.Time) ([]byte, error) {
	var buf bytes.Buffer

	writeHeader(&buf, "From", formatAddress(email.From))
	if len(email.To) > 0 {
		writeHeader(&buf, "To", formatAddressList(email.To))
	}
	if len(email.Cc) > 0 {
		writeHeader(&buf, "Cc", formatAddressList(email.Cc))
	}
	if len(email.ReplyTo) > 0 {
		writeHeader(&buf, "Reply-To", formatAddressList(email.ReplyTo))
	}
	writeHeader(&buf, "Subject", mime.QEncoding.Encode("UTF-8", email.Subject))
	writeHeader(&buf, "Date", now.Format(time.RFC1123Z))
	writeHeader(&buf, "Message-ID", messageID)
	writeHeader(&buf, "MIME-Version", "1.0")

	keys := make([]string, 0, len(email.Headers))
	for k := range email.Headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		writeHeader(&buf, k, email.Headers[k])
	}

	header, body, err := contentPart(email)
	if err != nil {
		return nil, err
	}

	if len(email.Attachments) == 0 {
		writeMIMEHeader(&buf, header)
		buf.WriteString("\r\n")
		buf.Write(body)
		return buf.Bytes(), nil
	}

	var mixed bytes.Buffer
	mw := multipart.NewWriter(&mixed)
	pw, err := mw.CreatePart(header)
	if err != nil {
		return nil, err
	}
	if _, err := pw.Write(body); err != nil {
		return nil, err
	}
	for _, a := range email.Attachments {
		if err := writeAttachment(mw, a); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	writeHeader(&buf, "Content-Type", "multipart/mixed; boundary="+mw.Boundary())
	buf.WriteString("\r\n")
	buf.Write(mixed.Bytes())
	return buf.Bytes(), nil
}

func contentPart(email mail.Email) (textproto.MIMEHeader, []byte, error) {
	switch {
	case email.HTML != "" && email.Body != "":
		var alt bytes.Buffer
		aw := multipart.NewWriter(&alt)
		for _, p := range []struct{ ct, body string }{
			{"text/plain; charset=UTF-8", email.Body},
			{"text/html; charset=UTF-8", email.HTML},
		} {
			w, err := aw.CreatePart(textHeader(p.ct))
			if err != nil {
				return nil, nil, err
			}
			if err := writeQuotedPrintable(w, p.body); err != nil {
				return nil, nil, err
			}
		}
		if err := aw.Close(); err != nil {
			return nil, nil, err
		}
		h := textproto.MIMEHeader{}
		h.Set("Content-Type", "multipart/alternative; boundary="+aw.Boundary())
		return h, alt.Bytes(), nil
	case email.HTML != "":
		return qpPart("text/html; charset=UTF-8", email.HTML)
	default:
		return qpPart("text/plain; charset=UTF-8", email.Body)
	}
}

func qpPart(contentType, body string) (textproto.MIMEHeader, []byte, error) {
	var b bytes.Buffer
	if err := writeQuotedPrintable(&b, body); err != nil {
		return nil, nil, err
	}
	return textHeader(contentType), b.Bytes(), nil
}

func textHeader(contentType string) textproto.MIMEHeader {
	h := textproto.MIMEHeader{}
	h.Set("Content-Type", contentType)
	h.Set("Content-Transfer-Encoding", "quoted-printable")
	return h
}

func writeQuotedPrintable(w io.Writer, s string) error {
	qw := quotedprintable.NewWriter(w)
	if _, err := qw.Write([]byte(s)); err != nil {
		return err
	}
	return qw.Close()
}

func writeAttachment(mw *multipart.Writer, a mail.Attachment) error {
	ct := a.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	contentType := mime.FormatMediaType(ct, map[string]string{"name": a.Filename})
	if contentType == "" {
		contentType = mime.FormatMediaType("application/octet-stream", map[string]string{"name": a.Filename})
	}

	h := textproto.MIMEHeader{}
	h.Set("Content-Type", contentType)
	h.Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": a.Filename}))
	h.Set("Content-Transfer-Encoding", "base64")

	w, err := mw.CreatePart(h)
	if err != nil {
		return err
	}

	enc := base64.StdEncoding.EncodeToString(a.Content)
	for len(enc) > base64LineLen {
		if _, err := fmt.Fprintf(w, "%s\r\n", enc[:base64LineLen]); err != nil {
			return err
		}
		enc = enc[base64LineLen:]
	}
	_, err = fmt.Fprintf(w, "%s\r\n", enc)
	return err
}

func writeHeader(buf *bytes.Buffer, key, value string) {
	// header injection guard
	value = strings.NewReplacer("\r", " ", "\n", " ").Replace(value)
	fmt.Fprintf(buf, "%s: %s\r\n", key, value)
}

func writeMIMEHeader(buf *bytes.Buffer, h textproto.MIMEHeader) {
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		for _, v := range h[k] {
			writeHeader(buf, k, v)
		}
	}
}

// formatAddress formats a single address, quoting or encoding the display name.
func formatAddress(addr mail.Address) string {
	if addr.Name == "" {
		return addr.Address
	}
	return (&netmail.Address{Name: addr.Name, Address: addr.Address}).String()
}

// formatAddressList formats a list of addresses.
func formatAddressList(addrs []mail.Address) string {
	formatted := make([]string, len(addrs))
	for i, addr := range addrs {
		formatted[i] = formatAddress(addr)
	}
	return strings.Join(formatted, ", ")
}
