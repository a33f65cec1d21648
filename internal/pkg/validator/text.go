package validator

import (
	"errors"
	"html"
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/unicode/norm"
)

// MaxTextRunes 单个文本参数允许的最大长度
const MaxTextRunes = 200

// ErrEmptyText 清洗后为空
var ErrEmptyText = errors.New("text is empty")

// strictPolicy strips every tag and keeps only text content.
var strictPolicy = bluemonday.StrictPolicy()

// Text 经过边界清洗的用户输入：无标签、无控制字符、NFC 规范化、已去除首尾空白
type Text string

// String returns the sanitised value
func (t Text) String() string {
	return string(t)
}

// Empty reports whether nothing survived sanitising
func (t Text) Empty() bool {
	return t == ""
}

// SanitizeText 清洗任意用户输入为 Text
func SanitizeText(raw string) Text {
	if raw == "" {
		return ""
	}

	// bluemonday escapes the surviving text; turn entities back into
	// characters so "Tom &amp; Jerry" matches the stored "Tom & Jerry".
	s := html.UnescapeString(strictPolicy.Sanitize(raw))

	s = strings.Map(func(r rune) rune {
		switch {
		case r == '\t' || r == '\n' || r == '\r':
			return ' '
		case unicode.IsControl(r), r == unicode.ReplacementChar:
			return -1
		case unicode.Is(unicode.Cf, r):
			// zero width and bidi formatting characters
			return -1
		}
		return r
	}, s)

	s = norm.NFC.String(s)
	s = strings.Join(strings.Fields(s), " ")

	if runes := []rune(s); len(runes) > MaxTextRunes {
		s = strings.TrimSpace(string(runes[:MaxTextRunes]))
	}
	return Text(s)
}

// RequireText 清洗并拒绝缺失或清洗后为空的输入
func RequireText(raw *string) (Text, error) {
	if raw == nil {
		return "", ErrEmptyText
	}
	t := SanitizeText(*raw)
	if t.Empty() {
		return "", ErrEmptyText
	}
	return t, nil
}
