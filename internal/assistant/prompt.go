package assistant

import "strings"

const promptHeader = "استخدم هذه الكلمات العربية لمساعدة شخص مبتدئ في كتابة مقال أدبي باللغة العربية الفصحى واستخدام الجماليات والصور التشبيهية: "

const promptBody = `

أعطني 3 عناوين مقترحة على أن تكون عنواين ابداعية في سياق الأدب العربي، كل عنوان مع 5 نقاط رئيسية في 5 كلمات أو أقل، فقط كبداية للمستخدمين لبدء الكتابة ويجب أن يراعى ترتيب النقاط لتكون هناك بداية ووسط ونهاية للموضوع. وكل شيء باللغة العربية.

تنسيق الإجابة:
العنوان الأول: [العنوان]
- النقطة الأولى
- النقطة الثانية
- النقطة الثالثة
- النقطة الرابعة
- النقطة الخامسة

العنوان الثاني: [العنوان]
- النقطة الأولى
- النقطة الثانية
- النقطة الثالثة
- النقطة الرابعة
- النقطة الخامسة

العنوان الثالث: [العنوان]
- النقطة الأولى
- النقطة الثانية
- النقطة الثالثة
- النقطة الرابعة
- النقطة الخامسة`

// FilterWords trims words and drops the blank ones
func FilterWords(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		if w = strings.TrimSpace(w); w != "" {
			out = append(out, w)
		}
	}
	return out
}

// BuildPrompt renders the request for three titles of five points each
func BuildPrompt(words []string) string {
	return promptHeader + strings.Join(words, ", ") + promptBody
}
