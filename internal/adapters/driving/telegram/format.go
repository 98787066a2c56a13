package telegram

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/lexsearch/internal/core/domain"
)

// markdownV2Escapes lists every character MarkdownV2 treats as syntax.
const markdownV2Escapes = "\\_*[]()~`>#+-=|{}.!"

// noAnswerMarker is the model's refusal phrase; when present the sources
// block is omitted because nothing was actually grounded on them.
const noAnswerMarker = "no puedo responder a esa pregunta"

// EscapeMarkdownV2 escapes text for Telegram's MarkdownV2 parse mode.
func EscapeMarkdownV2(text string) string {
	var sb strings.Builder
	sb.Grow(len(text))
	for _, r := range text {
		if strings.ContainsRune(markdownV2Escapes, r) {
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// FormatAnswer renders a generated answer with its deduplicated source
// list as a MarkdownV2 message.
func FormatAnswer(answer domain.Answer) string {
	safe := EscapeMarkdownV2(answer.Text)
	if len(answer.Sources) == 0 || strings.Contains(safe, noAnswerMarker) {
		return safe
	}

	var lines []string
	seen := map[string]bool{}
	for _, src := range answer.Sources {
		line := fmt.Sprintf(
			"\\- *%s %s*, Art\\. %s",
			EscapeMarkdownV2(src.TipoDocumento),
			EscapeMarkdownV2(src.NumeroDocumento),
			EscapeMarkdownV2(src.Articulo),
		)
		if !seen[line] {
			seen[line] = true
			lines = append(lines, line)
		}
	}

	return safe + "\n\n*Fuentes consultadas:*\n" + strings.Join(lines, "\n")
}
