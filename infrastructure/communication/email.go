package communication

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"mime/multipart"
	"mime/quotedprintable"
	"net/textproto"
	"strings"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// Email delivers administrator reports over SES, including the daily stats
// workbook as an attachment.
type Email struct {
	From string
	To   []string
}

func NewEmail(from string, to []string) *Email {
	return &Email{From: from, To: to}
}

// SendReport emails a report with an optional attachment.
func (e *Email) SendReport(ctx context.Context, subject, text, filename string, attachment []byte) error {
	raw, err := buildEmailBuffer(e.From, e.To, subject, text, filename, attachment)
	if err != nil {
		return err
	}

	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return fmt.Errorf("load aws config: %w", err)
	}
	client := ses.NewFromConfig(cfg)

	_, err = client.SendRawEmail(ctx, &ses.SendRawEmailInput{
		RawMessage: &types.RawMessage{Data: raw.Bytes()},
	})
	if err != nil {
		return fmt.Errorf("send raw email: %w", err)
	}
	return nil
}

func buildEmailBuffer(from string, to []string, subject, text, filename string, attachment []byte) (*bytes.Buffer, error) {
	var raw bytes.Buffer
	writer := multipart.NewWriter(&raw)
	boundary := writer.Boundary()

	headers := fmt.Sprintf("From: %s\r\n", from)
	headers += fmt.Sprintf("To: %s\r\n", strings.Join(to, ", "))
	headers += fmt.Sprintf("Subject: %s\r\n", subject)
	headers += "MIME-Version: 1.0\r\n"
	headers += fmt.Sprintf("Content-Type: multipart/mixed; boundary=\"%s\"\r\n", boundary)
	headers += "\r\n"
	raw.WriteString(headers)

	if text != "" {
		part, err := writer.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {"text/plain; charset=UTF-8"},
			"Content-Transfer-Encoding": {"quoted-printable"},
		})
		if err != nil {
			return nil, err
		}
		qp := quotedprintable.NewWriter(part)
		qp.Write([]byte(text))
		qp.Close()
	}

	if len(attachment) > 0 {
		h := textproto.MIMEHeader{}
		h.Set("Content-Type", fmt.Sprintf("application/vnd.openxmlformats-officedocument.spreadsheetml.sheet; name=\"%s\"", filename))
		h.Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
		h.Set("Content-Transfer-Encoding", "base64")

		part, err := writer.CreatePart(h)
		if err != nil {
			return nil, err
		}
		b := make([]byte, base64.StdEncoding.EncodedLen(len(attachment)))
		base64.StdEncoding.Encode(b, attachment)

		// wrap lines at 76 chars
		for i := 0; i < len(b); i += 76 {
			end := i + 76
			if end > len(b) {
				end = len(b)
			}
			part.Write(b[i:end])
			part.Write([]byte("\r\n"))
		}
	}

	writer.Close()
	return &raw, nil
}
