// Package extract converts prescription images and free-text descriptions
// into candidate medication records through the Gemini API. Medical shorthand
// is normalized to plain English here, not in the core.
package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"medsync/internal/gemini"
	"medsync/internal/meds"
)

// ErrUnparsable means the model response could not be turned into structured
// data. Callers surface it as a retryable failure; no partial data leaks out.
var ErrUnparsable = errors.New("unparsable extraction response")

// Candidate carries the extracted medication fields plus a 0-100 confidence
// score. It deliberately has no id, current quantity, or active flag; those
// are assigned when the user confirms the candidate.
type Candidate struct {
	Name          string            `json:"name"`
	GenericName   string            `json:"genericName,omitempty"`
	Dosage        string            `json:"dosage,omitempty"`
	FormType      meds.FormType     `json:"formType"`
	Frequency     string            `json:"frequency,omitempty"`
	MealRelation  meds.MealRelation `json:"mealRelation,omitempty"`
	TotalQuantity int               `json:"totalQuantity,omitempty"`
	Instructions  string            `json:"instructions,omitempty"`
	Confidence    int               `json:"confidence"`
}

// Adapter is the extraction boundary consumed by the HTTP surface.
type Adapter struct {
	Client *gemini.Client
}

const imagePrompt = `Analyze this image of a prescription, medication bottle, or list.

Tasks:
1. Identify ALL medications present in the image.
2. For each medication, extract the name, dosage, and form.
3. CRITICAL: TRANSLATE all medical Latin/abbreviations into plain, easy-to-understand English.
   - "BID" -> "Twice a day"
   - "TID" -> "Three times a day"
   - "QD" -> "Once daily"
   - "PO" -> "By mouth"
   - "PRN" -> "As needed"
   - "HS" -> "At bedtime"
4. Assign a confidence score (0-100) for each extracted item based on legibility.

Return a JSON Array of objects with fields: name, genericName, dosage,
formType (one of: pill, tablet, capsule, syrup, inhaler, injection, cream, drops, other),
frequency, mealRelation (one of: Before Meal, After Meal, With Meal, Anytime, Empty Stomach),
totalQuantity (0 if not explicitly clear), instructions, confidence.`

const textPromptFmt = `Extract medication details from the following user description into a JSON object.

User Description: %q

Fields required:
- name (string)
- genericName (string, optional)
- dosage (string, e.g., "500mg")
- formType (one of: pill, tablet, capsule, syrup, inhaler, injection, cream, drops, other)
- frequency (string, in plain English, e.g., "Daily")
- mealRelation (one of: Before Meal, After Meal, With Meal, Anytime, Empty Stomach)
- totalQuantity (number, estimate if mentioned, otherwise default to 30)
- instructions (string, clean up the user's input into formal medical instructions. Convert abbreviations to plain English.)
- confidence (number between 0 and 100)`

// ExtractFromImage reads every medication visible in the image.
func (a *Adapter) ExtractFromImage(ctx context.Context, image []byte, mimeType string) ([]Candidate, error) {
	text, err := a.Client.Generate(ctx, gemini.Request{
		Contents: []gemini.Content{{
			Role:  "user",
			Parts: []gemini.Part{gemini.ImagePart(image, mimeType), gemini.TextPart(imagePrompt)},
		}},
		JSONResponse: true,
	})
	if err != nil {
		return nil, err
	}

	var out []Candidate
	if err := json.Unmarshal([]byte(StripFences(text)), &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnparsable, err)
	}
	for i := range out {
		normalize(&out[i])
	}
	return out, nil
}

// ExtractFromText reads a single medication from a free-text description.
func (a *Adapter) ExtractFromText(ctx context.Context, description string) (Candidate, error) {
	text, err := a.Client.Generate(ctx, gemini.Request{
		Contents: []gemini.Content{{
			Role:  "user",
			Parts: []gemini.Part{gemini.TextPart(fmt.Sprintf(textPromptFmt, description))},
		}},
		JSONResponse: true,
	})
	if err != nil {
		return Candidate{}, err
	}

	var out Candidate
	if err := json.Unmarshal([]byte(StripFences(text)), &out); err != nil {
		return Candidate{}, fmt.Errorf("%w: %v", ErrUnparsable, err)
	}
	normalize(&out)
	return out, nil
}

// StripFences removes markdown code fences the model sometimes wraps JSON in.
func StripFences(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

// normalize coerces off-enum values so candidates always land inside the
// closed domain sets.
func normalize(c *Candidate) {
	c.FormType = meds.FormType(strings.ToLower(strings.TrimSpace(string(c.FormType))))
	if !c.FormType.Valid() {
		c.FormType = meds.FormOther
	}
	if !c.MealRelation.Valid() {
		c.MealRelation = ""
	}
	if c.Confidence < 0 {
		c.Confidence = 0
	}
	if c.Confidence > 100 {
		c.Confidence = 100
	}
}
