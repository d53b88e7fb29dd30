package tui

import (
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"firstdraft-cli/internal/app"
)

// parseAttachArgs turns the argument of an /attach command into staged
// attachments. Tokens follow shell-like quoting because terminal drag+drop
// pastes quoted paths. A token that is not an existing image file is
// reported back as a warning rather than silently dropped.
func parseAttachArgs(args string) (atts []app.Attachment, bad []string) {
	for _, tok := range splitShellLikeFields(args) {
		path := expandHome(filepath.Clean(tok))
		if !isImageFile(path) {
			bad = append(bad, tok)
			continue
		}
		atts = append(atts, app.Attachment{Name: filepath.Base(path), Path: path})
	}
	return atts, bad
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil && home != "" {
			if path == "~" {
				return home
			}
			return filepath.Join(home, path[2:])
		}
	}
	return path
}

func isImageFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".jpg", ".jpeg", ".gif", ".webp", ".bmp":
	default:
		return false
	}
	st, err := os.Stat(path)
	if err != nil {
		return false
	}
	return st.Mode().IsRegular()
}

func splitShellLikeFields(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	var out []string
	var b strings.Builder

	inSingle := false
	inDouble := false
	escaped := false

	flush := func() {
		if b.Len() == 0 {
			return
		}
		out = append(out, b.String())
		b.Reset()
	}

	for _, r := range s {
		if escaped {
			b.WriteRune(r)
			escaped = false
			continue
		}
		if r == '\\' && !inSingle {
			escaped = true
			continue
		}
		if r == '\'' && !inDouble {
			inSingle = !inSingle
			continue
		}
		if r == '"' && !inSingle {
			inDouble = !inDouble
			continue
		}
		if unicode.IsSpace(r) && !inSingle && !inDouble {
			flush()
			continue
		}
		b.WriteRune(r)
	}
	if escaped {
		b.WriteRune('\\')
	}
	flush()

	return out
}
