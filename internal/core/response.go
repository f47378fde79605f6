package core

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ResponseRecord is the normalized result of one dispatch: the uniform shape
// the UI renders, copies, and summarizes into history.
type ResponseRecord struct {
	Status     int               `json:"status"`
	StatusText string            `json:"status_text"`
	Headers    map[string]string `json:"headers"`
	Data       any               `json:"data"`
	Time       int64             `json:"time"` // milliseconds
	Size       int64             `json:"size"` // bytes, see SizeOf
	RawBody    []byte            `json:"-"`
}

// IsJSON reports whether the body was decoded as JSON.
func (r *ResponseRecord) IsJSON() bool {
	_, isString := r.Data.(string)
	return !isString
}

// DecodeError reports a response that declared application/json but whose
// body failed to parse. The raw body is preserved for inspection so the
// failure is distinguishable from a transport error.
type DecodeError struct {
	Err     error
	RawBody []byte
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("response declared application/json but body is not valid JSON: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Normalize packages a raw dispatch result into a ResponseRecord. The body
// is decoded as JSON iff the Content-Type header contains "application/json";
// otherwise it is kept as plain text. A declared-JSON body that fails to
// parse returns a *DecodeError.
func Normalize(status int, statusText string, headers map[string]string, body []byte, elapsed time.Duration) (*ResponseRecord, error) {
	record := &ResponseRecord{
		Status:     status,
		StatusText: statusText,
		Headers:    headers,
		Time:       elapsed.Milliseconds(),
		RawBody:    body,
	}
	if record.Time < 0 {
		record.Time = 0
	}

	if isJSONContentType(headerValue(headers, "Content-Type")) && len(body) > 0 {
		var data any
		if err := json.Unmarshal(body, &data); err != nil {
			return nil, &DecodeError{Err: err, RawBody: body}
		}
		record.Data = data
	} else {
		record.Data = string(body)
	}

	record.Size = SizeOf(record.Data)
	return record, nil
}

// SizeOf computes the byte length of the JSON re-serialization of the
// decoded data. This approximates wire size rather than reproducing
// Content-Length: a plain-text body is measured as a JSON-quoted string,
// and non-ASCII bytes may diverge from the received byte count.
func SizeOf(data any) int64 {
	encoded, err := json.Marshal(data)
	if err != nil {
		return 0
	}
	return int64(len(encoded))
}

// PrettyJSON renders data with two-space indentation.
func PrettyJSON(data any) string {
	encoded, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return ""
	}
	return string(encoded)
}

// StatusTextOf extracts the reason phrase from a Go status line such as
// "200 OK".
func StatusTextOf(statusLine string, code int) string {
	text := strings.TrimSpace(strings.TrimPrefix(statusLine, fmt.Sprintf("%d", code)))
	return text
}

func isJSONContentType(ct string) bool {
	return strings.Contains(ct, "application/json")
}

// headerValue performs a case-insensitive header lookup on the flattened
// response header map.
func headerValue(headers map[string]string, key string) string {
	for k, v := range headers {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return ""
}
