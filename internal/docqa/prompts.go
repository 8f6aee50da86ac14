package docqa

import (
	"fmt"
	"strings"
)

// noRelevantDocuments is the fixed answer when retrieval surfaces
// nothing above the similarity floor.
const noRelevantDocuments = "No relevant documents found to answer your question."

// systemPrompts tailor the answering style to the question type.
var systemPrompts = map[QuestionType]string{
	QuestionFactual: `You are a precise question answering assistant. Answer using only the
provided document context. State facts directly and cite the document
number they come from, e.g. [Document 2]. If the context does not
contain the answer, say so plainly.`,

	QuestionAnalytical: `You are an analytical assistant. Use only the provided document
context to explain causes, mechanisms and reasoning. Structure the
answer logically and cite document numbers for each claim, e.g.
[Document 1]. If the context is insufficient, say so plainly.`,

	QuestionComparative: `You are a comparison assistant. Using only the provided document
context, compare the subjects the user asks about: cover similarities
and differences and cite document numbers for each point, e.g.
[Document 3]. If the context does not cover one side, say so plainly.`,

	QuestionSummary: `You are a summarization assistant. Produce a concise summary of the
provided document context that addresses the user's request. Cite the
document numbers the summary draws on, e.g. [Document 1]. Do not add
information that is not in the context.`,

	QuestionGeneral: `You are a helpful document assistant. Answer the question using only
the provided document context and cite document numbers for your
statements, e.g. [Document 1]. If the context does not contain the
answer, say so plainly.`,
}

// contextBlock renders one retrieved chunk the way the model sees it.
func contextBlock(ordinal int, name string, similarity float64, content string) string {
	return fmt.Sprintf("Document %d: %s\nSimilarity: %.2f\nContent: %s", ordinal, name, similarity, content)
}

// buildPrompt assembles the user prompt from the context blocks and
// the question.
func buildPrompt(blocks []string, question string) string {
	var b strings.Builder
	b.WriteString("Context from the user's documents:\n\n")
	b.WriteString(strings.Join(blocks, "\n\n"))
	b.WriteString("\n\nQuestion: ")
	b.WriteString(question)
	b.WriteString("\n\nAnswer:")
	return b.String()
}
