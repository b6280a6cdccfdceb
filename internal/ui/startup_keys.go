package ui

import (
	"strings"

	tea "charm.land/bubbletea/v2"
)

// ApplyStartupKeys feeds simulated keypresses to the model, as if typed
// after the table appeared. Tokens are Vim-like keys ("<C-f>", "<CR>") mixed
// with literal text ("/london<CR>"); a leading backslash forces the whole
// token literal. Commands returned by the model are discarded.
func ApplyStartupKeys(m *Model, keys []string) {
	if len(keys) == 0 || m == nil {
		return
	}
	for _, raw := range keys {
		token := strings.TrimSpace(raw)
		if token == "" {
			continue
		}
		if strings.HasPrefix(token, `\`) {
			typeText(m, strings.TrimPrefix(token, `\`))
			continue
		}
		for _, segment := range parseTokenSegments(token) {
			if !segment.isVimKey {
				typeText(m, segment.text)
				continue
			}
			msgs, ok := keyMsgsFromToken(segment.text)
			if !ok {
				typeText(m, segment.text)
				continue
			}
			for _, msg := range msgs {
				m.Update(msg)
			}
		}
	}
}

func typeText(m *Model, text string) {
	for _, r := range text {
		if r == ' ' {
			m.Update(tea.KeyPressMsg{Code: tea.KeySpace, Text: " "})
			continue
		}
		m.Update(tea.KeyPressMsg{Code: r, Text: string(r)})
	}
}

// tokenSegment is a piece of a token: a <...> key or literal text.
type tokenSegment struct {
	text     string
	isVimKey bool
}

// parseTokenSegments splits a token into <...> keys and literal text.
// "<C-f>/x<CR>" becomes "<C-f>", "/x", "<CR>".
func parseTokenSegments(token string) []tokenSegment {
	var segments []tokenSegment
	remaining := token

	for len(remaining) > 0 {
		startIdx := strings.Index(remaining, "<")
		if startIdx == -1 {
			segments = append(segments, tokenSegment{text: remaining})
			break
		}
		if startIdx > 0 {
			segments = append(segments, tokenSegment{text: remaining[:startIdx]})
		}
		endIdx := strings.Index(remaining[startIdx:], ">")
		if endIdx == -1 {
			segments = append(segments, tokenSegment{text: remaining[startIdx:]})
			break
		}
		segments = append(segments, tokenSegment{text: remaining[startIdx : startIdx+endIdx+1], isVimKey: true})
		remaining = remaining[startIdx+endIdx+1:]
	}

	return segments
}

var namedKeys = map[string]tea.KeyPressMsg{
	"esc":       {Code: tea.KeyEscape},
	"escape":    {Code: tea.KeyEscape},
	"c-[":       {Code: tea.KeyEscape},
	"cr":        {Code: tea.KeyEnter},
	"enter":     {Code: tea.KeyEnter},
	"return":    {Code: tea.KeyEnter},
	"tab":       {Code: tea.KeyTab},
	"space":     {Code: tea.KeySpace, Text: " "},
	"bs":        {Code: tea.KeyBackspace},
	"backspace": {Code: tea.KeyBackspace},
	"left":      {Code: tea.KeyLeft},
	"right":     {Code: tea.KeyRight},
	"up":        {Code: tea.KeyUp},
	"down":      {Code: tea.KeyDown},
	"home":      {Code: tea.KeyHome},
	"end":       {Code: tea.KeyEnd},
	"pageup":    {Code: tea.KeyPgUp},
	"pgup":      {Code: tea.KeyPgUp},
	"pagedown":  {Code: tea.KeyPgDown},
	"pgdn":      {Code: tea.KeyPgDown},
	"pgdown":    {Code: tea.KeyPgDown},
	"c-home":    {Code: tea.KeyHome, Mod: tea.ModCtrl},
	"c-end":     {Code: tea.KeyEnd, Mod: tea.ModCtrl},
}

// keyMsgsFromToken parses a <...> token into key messages: named keys
// ("<Esc>", "<PageDown>", "<C-Home>"), control letters ("<C-f>") and
// function keys ("<F1>").
func keyMsgsFromToken(token string) ([]tea.KeyPressMsg, bool) {
	if !strings.HasPrefix(token, "<") || !strings.HasSuffix(token, ">") || len(token) < 3 {
		return nil, false
	}
	lower := strings.ToLower(token[1 : len(token)-1])
	if msg, ok := namedKeys[lower]; ok {
		return []tea.KeyPressMsg{msg}, true
	}
	if rest, ok := strings.CutPrefix(lower, "c-"); ok && len(rest) == 1 && rest[0] >= 'a' && rest[0] <= 'z' {
		return []tea.KeyPressMsg{{Code: rune(rest[0]), Mod: tea.ModCtrl}}, true
	}
	if num, ok := strings.CutPrefix(lower, "f"); ok {
		if fk, ok := functionKeys[num]; ok {
			return []tea.KeyPressMsg{{Code: fk}}, true
		}
	}
	return nil, false
}

var functionKeys = map[string]rune{
	"1": tea.KeyF1, "2": tea.KeyF2, "3": tea.KeyF3, "4": tea.KeyF4,
	"5": tea.KeyF5, "6": tea.KeyF6, "7": tea.KeyF7, "8": tea.KeyF8,
	"9": tea.KeyF9, "10": tea.KeyF10, "11": tea.KeyF11, "12": tea.KeyF12,
}
