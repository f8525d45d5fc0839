package util

import "strings"

const (
	KakaoSeeMorePadding = 500
	KakaoZeroWidthSpace = "\u200b"
)

// 카카오톡 '전체보기' 버튼이 뜨도록 지침 뒤에 제로폭 문자를 채운다.
// 지침 한 줄만 미리보기에 남고 본문은 접힌다.
func SeeMore(body, instruction string) string {
	if strings.TrimSpace(body) == "" {
		return body
	}
	instruction = strings.TrimSpace(instruction)
	body = StripLeadingHeader(body, instruction)

	var b strings.Builder
	b.Grow(len(instruction) + len(KakaoZeroWidthSpace)*KakaoSeeMorePadding + len(body) + 1)
	b.WriteString(instruction)
	b.WriteString(strings.Repeat(KakaoZeroWidthSpace, KakaoSeeMorePadding))
	if !strings.HasPrefix(body, "\n") {
		b.WriteByte('\n')
	}
	b.WriteString(body)
	return b.String()
}

// 첫 줄에 지침과 같은 헤더가 있으면 제거한다.
func StripLeadingHeader(text, header string) string {
	if strings.TrimSpace(text) == "" || strings.TrimSpace(header) == "" {
		return text
	}
	for _, sep := range []string{"\r\n\r\n", "\n\n", "\r\n", "\n", ""} {
		if strings.HasPrefix(text, header+sep) {
			return strings.TrimPrefix(text, header+sep)
		}
	}
	return text
}
