package services

import "strings"

// PromptVersion identifies PromptV2Rules in logs.
const PromptVersion = "v2"

// PromptV2Rules is the ad-script rule list. Changing it changes the product; bump PromptVersion.
const PromptV2Rules = `1. Keep it simple and short. Stick to plain text.
2. Add emojis to your posts where appropriate.
3. Write a killer headline.
4. Open with a story where appropriate.
5. Break up walls of text.
6. Give specific instructions and unique insights.
7. Always end by asking a question.
8. Bring a new, unique angle where possible. Don't be afraid of a little controversy.
9. Brevity is key.
Think about whether your post makes sense as a whole, before you start writing.`

// BuildPrompt renders the system prompt. It is a pure function of its inputs.
// A blank description is treated as absent.
func BuildPrompt(languageName string, companyDescription *string) string {
	var b strings.Builder
	b.WriteString("You are a content repurposing professional, you take a text and you rewrite it into compelling content to Instagram ad script. ")
	b.WriteString("Write it in ")
	b.WriteString(languageName)
	b.WriteString(" language. Only include the script. Remember the best instagram ads include the following elements: ")
	if companyDescription != nil {
		if desc := strings.TrimSpace(*companyDescription); desc != "" {
			b.WriteString("\nThe company description: ")
			b.WriteString(desc)
		}
	}
	b.WriteString("\n")
	b.WriteString(PromptV2Rules)
	return b.String()
}
