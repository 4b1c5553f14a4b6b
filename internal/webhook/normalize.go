package webhook

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/url"
	"strings"

	"github.com/RaikyD/wc-tracking-service/internal/domain"
	"github.com/RaikyD/wc-tracking-service/internal/logger"
)

// errTryNext makes the chain fall through to the next strategy.
var errTryNext = errors.New("try next strategy")

const maxMultipartMemory = 1 << 20

// request is what the normalizer needs from an inbound delivery.
type request struct {
	ContentType string
	Body        []byte
	// Form is filled by Normalize for form content types.
	Form map[string]string
}

type strategy func(*request) (any, error)

var chain = []strategy{
	pingStrategy,
	jsonBodyStrategy,
	formStrategy,
	rawJSONStrategy,
}

// Normalize resolves a delivery body of uncertain shape into a payload.
// domain.ErrPing means the delivery is a connectivity test.
func Normalize(contentType string, body []byte) (domain.Payload, error) {
	req := &request{ContentType: contentType, Body: body}
	req.Form = parseForm(contentType, body)

	if len(bytes.TrimSpace(body)) == 0 && len(req.Form) == 0 {
		return nil, domain.ErrEmptyOrUnparseable
	}

	for _, s := range chain {
		v, err := s(req)
		if errors.Is(err, errTryNext) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return asPayload(v)
	}
	return nil, domain.ErrEmptyOrUnparseable
}

func mediaType(contentType string) string {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	}
	return mt
}

func isForm(contentType string) bool {
	switch mediaType(contentType) {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		return true
	}
	return false
}

func isJSON(contentType string) bool {
	mt := mediaType(contentType)
	return mt == "application/json" || strings.HasSuffix(mt, "+json")
}

func pingStrategy(r *request) (any, error) {
	if !isForm(r.ContentType) {
		return nil, errTryNext
	}
	if _, ok := r.Form["webhook_id"]; ok {
		return nil, domain.ErrPing
	}
	if _, ok := r.Form["webhook"]; ok {
		return nil, domain.ErrPing
	}
	return nil, errTryNext
}

func jsonBodyStrategy(r *request) (any, error) {
	if !isJSON(r.ContentType) {
		return nil, errTryNext
	}
	v, err := decode(r.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrEmptyOrUnparseable, err)
	}
	return v, nil
}

// formStrategy handles senders that post JSON with a form content type,
// either as the whole body or embedded in a single form field. Scalars such
// as "id=123" stay form values.
func formStrategy(r *request) (any, error) {
	if len(r.Form) == 0 {
		return nil, errTryNext
	}
	// Form decoding turns '+' into spaces, so a JSON body is read raw.
	if parsed, ok := decodeDocument(string(r.Body)); ok {
		return parsed, nil
	}
	if len(r.Form) == 1 {
		for k, v := range r.Form {
			if parsed, ok := decodeDocument(v); ok {
				return parsed, nil
			}
			if v == "" {
				if parsed, ok := decodeDocument(k); ok {
					return parsed, nil
				}
			}
		}
	}
	m := make(map[string]any, len(r.Form))
	for k, v := range r.Form {
		m[k] = v
	}
	return m, nil
}

func rawJSONStrategy(r *request) (any, error) {
	v, err := decode(r.Body)
	if err != nil {
		return nil, errTryNext
	}
	return v, nil
}

func decode(b []byte) (any, error) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return nil, io.ErrUnexpectedEOF
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

func decodeDocument(s string) (any, bool) {
	v, err := decode([]byte(s))
	if err != nil {
		return nil, false
	}
	switch v.(type) {
	case map[string]any, []any:
		return v, true
	}
	return nil, false
}

func asPayload(v any) (domain.Payload, error) {
	switch t := v.(type) {
	case map[string]any:
		return domain.Payload(t), nil
	case []any:
		if len(t) > 0 {
			if m, ok := t[0].(map[string]any); ok {
				return domain.Payload(m), nil
			}
		}
	}
	return nil, fmt.Errorf("%w: %T", domain.ErrUnexpectedPayloadType, v)
}

// parseForm returns the first value of each form field, or nil when the
// body is not a form.
func parseForm(contentType string, body []byte) map[string]string {
	mt, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return nil
	}
	switch mt {
	case "application/x-www-form-urlencoded":
		// ParseQuery keeps every well-formed pair alongside the first error.
		values, err := url.ParseQuery(string(body))
		if err != nil {
			logger.Warn("form body has malformed pairs", "err", err, "kept", len(values))
		}
		return firstValues(values)
	case "multipart/form-data":
		mr := multipart.NewReader(bytes.NewReader(body), params["boundary"])
		form, err := mr.ReadForm(maxMultipartMemory)
		if err != nil {
			return nil
		}
		defer form.RemoveAll()
		return firstValues(form.Value)
	}
	return nil
}

func firstValues(values map[string][]string) map[string]string {
	if len(values) == 0 {
		return nil
	}
	out := make(map[string]string, len(values))
	for k, vs := range values {
		if len(vs) > 0 {
			out[k] = vs[0]
		} else {
			out[k] = ""
		}
	}
	return out
}
