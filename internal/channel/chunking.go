package channel

import (
	"strings"
	"unicode/utf8"

	"github.com/flemzord/relaybot/pkg/message"
)

// SplitMessage splits an outbound message into messages whose text is at
// most maxLen bytes. Only the first chunk keeps ReplyToID. A message that
// already fits is returned as a single-element slice.
func SplitMessage(msg message.OutboundMessage, maxLen int) []message.OutboundMessage {
	if maxLen <= 0 || len(msg.Text) <= maxLen {
		return []message.OutboundMessage{msg}
	}

	chunks := SplitText(msg.Text, maxLen)
	result := make([]message.OutboundMessage, 0, len(chunks))
	for i, chunk := range chunks {
		out := message.OutboundMessage{Chat: msg.Chat, Text: chunk}
		if i == 0 {
			out.ReplyToID = msg.ReplyToID
		}
		result = append(result, out)
	}
	return result
}

// SplitText breaks text into chunks of at most maxLen bytes, preferring
// line boundaries. Lines longer than maxLen are split on rune boundaries.
func SplitText(text string, maxLen int) []string {
	if maxLen <= 0 || len(text) <= maxLen {
		return []string{text}
	}

	var chunks []string
	var current strings.Builder

	for _, line := range strings.Split(text, "\n") {
		lineWithNewline := line + "\n"

		if current.Len()+len(lineWithNewline) > maxLen {
			if current.Len() > 0 {
				chunks = append(chunks, strings.TrimRight(current.String(), "\n"))
				current.Reset()
			}
			if len(lineWithNewline) > maxLen {
				chunks = append(chunks, forceSplit(line, maxLen)...)
				continue
			}
		}

		current.WriteString(lineWithNewline)
	}

	if current.Len() > 0 {
		chunks = append(chunks, strings.TrimRight(current.String(), "\n"))
	}

	return chunks
}

// forceSplit breaks a single long line into chunks of at most maxLen bytes
// without cutting a UTF-8 sequence.
func forceSplit(line string, maxLen int) []string {
	var parts []string
	for len(line) > maxLen {
		cut := maxLen
		for cut > 0 && !utf8.RuneStart(line[cut]) {
			cut--
		}
		if cut == 0 {
			_, size := utf8.DecodeRuneInString(line)
			cut = size
		}
		parts = append(parts, line[:cut])
		line = line[cut:]
	}
	if len(line) > 0 {
		parts = append(parts, line)
	}
	return parts
}
