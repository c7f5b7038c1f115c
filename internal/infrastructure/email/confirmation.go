package email

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
)

// mdRenderer escapes raw HTML in its input.
var mdRenderer = goldmark.New(goldmark.WithRendererOptions(goldmarkHTML.WithHardWraps()))

const confirmationSubject = "Confirme seu e-mail • Salto Tennis Club"

const confirmationMarkdown = `# Bem-vindo ao Salto Tennis Club

Olá, **%s**!
Para ativar sua conta, confirme seu e-mail:

[Ativar minha conta](%s)

Se você não criou uma conta, ignore esta mensagem.
`

// ConfirmationRequest builds the activation message for a new member.
func ConfirmationRequest(to, displayName, link string) (SendRequest, error) {
	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(fmt.Sprintf(confirmationMarkdown, displayName, link)), &buf); err != nil {
		return SendRequest{}, fmt.Errorf("render confirmation: %w", err)
	}
	return SendRequest{To: []string{to}, Subject: confirmationSubject, HTML: buf.String()}, nil
}
