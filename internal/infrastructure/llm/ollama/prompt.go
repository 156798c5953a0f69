package ollama

import "fmt"

// The context-only instruction is the behavioral contract: the model must
// ground its answer in retrieved chunks and say so when it cannot.
func buildAnswerPrompt(question, contextText string) string {
	if contextText == "" {
		contextText = "(no documents matched the question)"
	}
	return fmt.Sprintf(`You are a document analysis assistant.
Answer the question using ONLY the context below.
If the context does not contain the needed information, reply exactly:
"I cannot answer this from the available documents."

Context:
%s

Question:
%s
`, contextText, question)
}
