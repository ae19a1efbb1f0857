// Package assistant answers general medication questions through the Gemini
// API. It is stateless: the caller supplies the conversation log each turn.
package assistant

import (
	"context"
	"fmt"

	"medsync/internal/gemini"
	"medsync/internal/meds"
)

const systemInstruction = "You are MedSync AI, a helpful medical medication assistant. " +
	"Answer questions about medications, interactions, and general health. " +
	"Keep answers concise and helpful. Disclaimer: You are an AI, not a doctor. " +
	"Always advise consulting a professional for serious issues."

type Assistant struct {
	Client *gemini.Client
}

// Ask sends the conversation history plus the new message and returns the
// model's reply text.
func (a *Assistant) Ask(ctx context.Context, history []meds.Message, message string) (string, error) {
	contents := make([]gemini.Content, 0, len(history)+1)
	for _, m := range history {
		contents = append(contents, gemini.Content{
			Role:  string(m.Role),
			Parts: []gemini.Part{gemini.TextPart(m.Text)},
		})
	}
	contents = append(contents, gemini.Content{
		Role:  string(meds.RoleUser),
		Parts: []gemini.Part{gemini.TextPart(message)},
	})

	reply, err := a.Client.Generate(ctx, gemini.Request{
		Contents:          contents,
		SystemInstruction: systemInstruction,
	})
	if err != nil {
		return "", fmt.Errorf("assistant call: %w", err)
	}
	return reply, nil
}
