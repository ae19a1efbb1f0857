package extract

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medsync/internal/gemini"
	"medsync/internal/meds"
)

// fakeModel serves a canned generateContent response.
func fakeModel(t *testing.T, text string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		resp := map[string]any{
			"candidates": []any{
				map[string]any{
					"content": map[string]any{
						"parts": []any{map[string]any{"text": text}},
					},
				},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func newAdapter(srv *httptest.Server) *Adapter {
	c := gemini.NewClient("test-key", "test-model")
	c.BaseURL = srv.URL
	c.HTTP = srv.Client()
	return &Adapter{Client: c}
}

func TestStripFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: `[{"name":"x"}]`, want: `[{"name":"x"}]`},
		{name: "json fence", in: "```json\n[{\"name\":\"x\"}]\n```", want: `[{"name":"x"}]`},
		{name: "bare fence", in: "```\n{}\n```", want: `{}`},
		{name: "whitespace", in: "  {} \n", want: `{}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripFences(tt.in))
		})
	}
}

func TestExtractFromImage(t *testing.T) {
	srv := fakeModel(t, "```json\n[{\"name\":\"Amoxicillin\",\"dosage\":\"250mg\",\"formType\":\"capsule\",\"frequency\":\"Three times a day\",\"confidence\":92}]\n```")
	defer srv.Close()

	got, err := newAdapter(srv).ExtractFromImage(context.Background(), []byte{0xFF, 0xD8}, "image/jpeg")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Amoxicillin", got[0].Name)
	assert.Equal(t, meds.FormCapsule, got[0].FormType)
	assert.Equal(t, 92, got[0].Confidence)
}

func TestExtractFromImageUnparsable(t *testing.T) {
	srv := fakeModel(t, "sorry, I could not read that label")
	defer srv.Close()

	_, err := newAdapter(srv).ExtractFromImage(context.Background(), []byte{1}, "image/png")
	assert.ErrorIs(t, err, ErrUnparsable)
}

func TestExtractFromText(t *testing.T) {
	srv := fakeModel(t, `{"name":"Ibuprofen","dosage":"200mg","formType":"gelcap","mealRelation":"whenever","totalQuantity":24,"confidence":120}`)
	defer srv.Close()

	got, err := newAdapter(srv).ExtractFromText(context.Background(), "ibuprofen 200 mg gelcaps, 24 pack")
	require.NoError(t, err)
	assert.Equal(t, "Ibuprofen", got.Name)

	// Off-enum values are coerced into the closed sets, scores clamped.
	assert.Equal(t, meds.FormOther, got.FormType)
	assert.Equal(t, meds.MealRelation(""), got.MealRelation)
	assert.Equal(t, 100, got.Confidence)
}

func TestExtractServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := newAdapter(srv).ExtractFromText(context.Background(), "aspirin")
	assert.Error(t, err)
}
