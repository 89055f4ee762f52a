// Package gateway provides access to the remote session gateway.
package gateway

import (
	"encoding/json"
	"time"

	"github.com/jperezcano/sessiondx-go/internal/core/domain"
)

// The gateway has shipped two response dialects: newer builds wrap records
// (`session`, `invocationStep`) and list under `invocationSummaries` /
// `invocationStepSummaries`; older builds return bare records and list under
// `invocations` / `invocationSteps`. Neither is authoritative, so decoding
// accepts both and produces one canonical shape.
//
// @design DS-0202

// wireSession is the raw session record on the wire.
type wireSession struct {
	SessionID        string            `json:"sessionId"`
	SessionARN       string            `json:"sessionArn,omitempty"`
	CreationDateTime string            `json:"creationDateTime,omitempty"`
	EndDateTime      string            `json:"endDateTime,omitempty"`
	SessionMetadata  map[string]string `json:"sessionMetadata,omitempty"`
	Metadata         map[string]string `json:"metadata,omitempty"`
	Tags             map[string]string `json:"tags,omitempty"`
}

// wireInvocation is one list-invocations entry on the wire.
type wireInvocation struct {
	InvocationID string `json:"invocationId"`
	Description  string `json:"description,omitempty"`
	CreatedAt    string `json:"createdAt,omitempty"`
}

// wireStepSummary is one list-invocation-steps entry on the wire.
type wireStepSummary struct {
	InvocationStepID   string `json:"invocationStepId"`
	InvocationStepTime string `json:"invocationStepTime,omitempty"`
}

// wireStep is the full step record on the wire.
type wireStep struct {
	InvocationStepID   string       `json:"invocationStepId"`
	InvocationID       string       `json:"invocationId,omitempty"`
	InvocationStepTime string       `json:"invocationStepTime,omitempty"`
	Payload            *wirePayload `json:"payload,omitempty"`
}

// wirePayload is the step payload on the wire.
type wirePayload struct {
	ContentBlocks []wireContentBlock `json:"contentBlocks"`
}

// wireContentBlock is one payload item on the wire. Exactly one field set.
type wireContentBlock struct {
	Text  *string    `json:"text,omitempty"`
	Image *wireImage `json:"image,omitempty"`
}

// wireImage carries image format and base64-encoded bytes.
type wireImage struct {
	Format string          `json:"format"`
	Source wireImageSource `json:"source"`
}

type wireImageSource struct {
	Bytes []byte `json:"bytes"`
}

// parseWireTime parses a wire timestamp, tolerating the empty string and
// both RFC3339 precisions. Unparseable values degrade to the zero time;
// reconstruction sorts those first rather than failing.
func parseWireTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	return time.Time{}
}

// formatWireTime renders a timestamp for the wire.
func formatWireTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// unwrap returns the raw body of an optionally wrapped response: if the
// document has a non-null field named key, that field is the record.
func unwrap(data []byte, key string) []byte {
	var env map[string]json.RawMessage
	if err := json.Unmarshal(data, &env); err != nil {
		return data
	}
	if inner, ok := env[key]; ok && len(inner) > 0 && string(inner) != "null" {
		return inner
	}
	return data
}

// decodeSession normalizes a get-session response into a domain.Session.
func decodeSession(data []byte) (*domain.Session, error) {
	var ws wireSession
	if err := json.Unmarshal(unwrap(data, "session"), &ws); err != nil {
		return nil, domain.ErrMalformedResponse.WithCause(err)
	}

	id := ws.SessionID
	if id == "" {
		id = ws.SessionARN
	}
	if id == "" {
		return nil, domain.ErrMalformedResponse.WithDetails("session record has no sessionId")
	}

	// Tolerant metadata lookup: sessionMetadata, then metadata, then empty.
	metadata := ws.SessionMetadata
	if metadata == nil {
		metadata = ws.Metadata
	}
	if metadata == nil {
		metadata = map[string]string{}
	}

	return &domain.Session{
		ID:        id,
		CreatedAt: parseWireTime(ws.CreationDateTime),
		EndedAt:   parseWireTime(ws.EndDateTime),
		Metadata:  metadata,
		Tags:      ws.Tags,
	}, nil
}

// decodeInvocationList normalizes a list-invocations response, accepting
// both `invocationSummaries` and `invocations` and preferring the former.
func decodeInvocationList(data []byte) ([]domain.InvocationSummary, error) {
	var wl struct {
		InvocationSummaries []wireInvocation `json:"invocationSummaries"`
		Invocations         []wireInvocation `json:"invocations"`
	}
	if err := json.Unmarshal(data, &wl); err != nil {
		return nil, domain.ErrMalformedResponse.WithCause(err)
	}

	entries := wl.InvocationSummaries
	if entries == nil {
		entries = wl.Invocations
	}

	out := make([]domain.InvocationSummary, 0, len(entries))
	for _, wi := range entries {
		out = append(out, domain.InvocationSummary{
			ID:          wi.InvocationID,
			Description: wi.Description,
			CreatedAt:   parseWireTime(wi.CreatedAt),
		})
	}
	return out, nil
}

// decodeStepList normalizes a list-invocation-steps response, accepting both
// `invocationStepSummaries` and `invocationSteps`.
func decodeStepList(data []byte) ([]domain.StepSummary, error) {
	var wl struct {
		InvocationStepSummaries []wireStepSummary `json:"invocationStepSummaries"`
		InvocationSteps         []wireStepSummary `json:"invocationSteps"`
	}
	if err := json.Unmarshal(data, &wl); err != nil {
		return nil, domain.ErrMalformedResponse.WithCause(err)
	}

	entries := wl.InvocationStepSummaries
	if entries == nil {
		entries = wl.InvocationSteps
	}

	out := make([]domain.StepSummary, 0, len(entries))
	for _, ws := range entries {
		out = append(out, domain.StepSummary{
			ID:       ws.InvocationStepID,
			StepTime: parseWireTime(ws.InvocationStepTime),
		})
	}
	return out, nil
}

// decodeStep normalizes a get-invocation-step response into a full step.
// A step without the expected payload/contentBlocks shape is malformed;
// the reconstructor skips such steps with a warning.
func decodeStep(data []byte) (*domain.InvocationStep, error) {
	var ws wireStep
	if err := json.Unmarshal(unwrap(data, "invocationStep"), &ws); err != nil {
		return nil, domain.ErrMalformedResponse.WithCause(err)
	}

	if ws.Payload == nil || ws.Payload.ContentBlocks == nil {
		return nil, domain.ErrMalformedResponse.WithDetails("step payload has no contentBlocks")
	}

	blocks := make([]domain.ContentBlock, 0, len(ws.Payload.ContentBlocks))
	for _, wb := range ws.Payload.ContentBlocks {
		switch {
		case wb.Image != nil:
			blocks = append(blocks, domain.NewImageBlock(wb.Image.Format, wb.Image.Source.Bytes))
		case wb.Text != nil:
			blocks = append(blocks, domain.NewTextBlock(*wb.Text))
		}
	}

	return &domain.InvocationStep{
		ID:           ws.InvocationStepID,
		InvocationID: ws.InvocationID,
		StepTime:     parseWireTime(ws.InvocationStepTime),
		Payload:      domain.StepPayload{ContentBlocks: blocks},
	}, nil
}

// encodeStepPayload renders a step payload for the wire.
func encodeStepPayload(payload domain.StepPayload) wirePayload {
	blocks := make([]wireContentBlock, 0, len(payload.ContentBlocks))
	for _, b := range payload.ContentBlocks {
		if b.IsImage() {
			blocks = append(blocks, wireContentBlock{
				Image: &wireImage{
					Format: b.Image.Format,
					Source: wireImageSource{Bytes: b.Image.Bytes},
				},
			})
			continue
		}
		text := b.Text
		blocks = append(blocks, wireContentBlock{Text: &text})
	}
	return wirePayload{ContentBlocks: blocks}
}
