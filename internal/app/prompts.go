package app

import (
	"fmt"
	"strings"

	"studyguide/pkg/domain"
)

// Per-call-site truncation budgets, in runes. Each bounds prompt size against
// the model's context window and cost; the study-guide path gets the largest
// budget since it is the primary output.
const (
	studyGuideTextLimit = 250000
	chatTextLimit       = 100000
	quizTextLimit       = 10000
)

const studyGuideSystemPrompt = "You are an expert academic tutor. Create a comprehensive, high-quality study guide for the provided text."

func studyGuideUserPrompt(text string) string {
	return fmt.Sprintf(`**CRITICAL INSTRUCTIONS**:
1. **FULL COVERAGE**: You must analyze the **ENTIRE** provided text.
2. **STRICT FORMATTING**:
   - **DO NOT indent headings**.
   - Do not use code blocks for normal text.

The study guide MUST include:
1. **Executive Summary**: Comprehensive overview.
2. **Key Concepts**: Structured list with definitions.
3. **Study Notes**: Detailed explanations.
4. **Practice Questions**: 10 distinct multiple-choice questions.

Format the output in clean, professional Markdown.

Text to process:
%s`, truncateRunes(text, studyGuideTextLimit))
}

func translationUserPrompt(text, targetLanguage string) string {
	return fmt.Sprintf(`Translate the following academic study guide into %s.

Maintain the original Markdown formatting.
Do not translate Mermaid.js code blocks.

Text to translate:
%s`, targetLanguage, text)
}

const chatSystemPrompt = "You are a helpful AI tutor assistant."

func chatUserPrompt(docText string, messages []domain.ChatMessage, question string) string {
	return fmt.Sprintf(`Document Content (Truncated):
%s

Chat History:
%s

User Question: %s

Answer concise and helpful:`, truncateRunes(docText, chatTextLimit), formatChatHistory(messages), question)
}

func quizUserPrompt(text string) string {
	return fmt.Sprintf(`Based on the following text, generate a quiz with 10 multiple-choice questions.
Return a JSON array of objects, where each object has:
- "question": The question string
- "options": A list of 4 answer options (strings)
- "correct_answer": The index of the correct answer (0-3)

Text (Truncated):
%s`, truncateRunes(text, quizTextLimit))
}

func formatChatHistory(messages []domain.ChatMessage) string {
	if len(messages) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, msg := range messages {
		role := strings.TrimSpace(msg.Role)
		if role == "" {
			role = "message"
		}
		sb.WriteString(role)
		sb.WriteString(": ")
		sb.WriteString(msg.Content)
		sb.WriteString("\n")
	}
	return strings.TrimSpace(sb.String())
}

func truncateRunes(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
