package summarizer

const (
	// LanguageKorean and LanguageEnglish are the supported summary
	// languages. Anything else falls back to Korean.
	LanguageKorean  = "ko"
	LanguageEnglish = "en"

	koreanPrompt = "당신은 뉴스 기사를 요약하는 도우미입니다. " +
		"주어진 기사 본문을 한국어 3~4문장으로 요약하세요. " +
		"핵심 사실과 수치를 유지하고, 본문에 없는 내용이나 의견은 추가하지 마세요. " +
		"요약문만 출력하고 머리말이나 따옴표는 붙이지 마세요."

	englishPrompt = "You are a news summarization assistant. " +
		"Summarize the given article body in 3 to 4 English sentences. " +
		"Keep the key facts and figures, and add nothing that is not in the text. " +
		"Output only the summary, with no preamble and no surrounding quotes."
)

// normalizeLanguage maps arbitrary input to a supported language code.
func normalizeLanguage(language string) string {
	if language == LanguageEnglish {
		return LanguageEnglish
	}
	return LanguageKorean
}

// promptFor returns the system instruction for the given language.
func promptFor(language string) string {
	if normalizeLanguage(language) == LanguageEnglish {
		return englishPrompt
	}
	return koreanPrompt
}
