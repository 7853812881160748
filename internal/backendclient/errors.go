package backendclient

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrUnavailable — backend недоступен (сеть, таймаут, токен).
var ErrUnavailable = errors.New("backend API недоступен")

// APIError — ответ backend со статусом не-2xx.
// Params — ошибки по полям (поле → сообщения), nil если backend их не вернул.
type APIError struct {
	StatusCode int
	Message    string
	Params     map[string][]string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend вернул статус %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("backend вернул статус %d", e.StatusCode)
}

// HasParams — backend вернул ошибки по полям.
func (e *APIError) HasParams() bool {
	return len(e.Params) > 0
}

// errorBody — тело ошибки backend: {"message": "...", "params": {...}}.
// Значение поля в params — список сообщений или одна строка.
type errorBody struct {
	Message    string                     `json:"message"`
	StatusCode string                     `json:"statusCode,omitempty"`
	Params     map[string]json.RawMessage `json:"params"`
}

// parseAPIError разбирает тело ошибки. Не-JSON тело уходит в Message.
func parseAPIError(status int, raw []byte) *APIError {
	apiErr := &APIError{StatusCode: status}

	var body errorBody
	if err := json.Unmarshal(raw, &body); err != nil {
		apiErr.Message = strings.TrimSpace(string(raw))
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(status)
		}
		return apiErr
	}

	apiErr.Message = body.Message
	if len(body.Params) == 0 {
		return apiErr
	}

	apiErr.Params = make(map[string][]string, len(body.Params))
	for field, rawMsgs := range body.Params {
		if msgs := decodeMessages(rawMsgs); len(msgs) > 0 {
			apiErr.Params[field] = msgs
		}
	}
	if len(apiErr.Params) == 0 {
		apiErr.Params = nil
	}
	return apiErr
}

// decodeMessages принимает ["a","b"] или "a".
func decodeMessages(raw json.RawMessage) []string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil
	}

	var list []string
	if raw[0] == '[' {
		if err := json.Unmarshal(raw, &list); err == nil {
			return list
		}
		return nil
	}

	var single string
	if err := json.Unmarshal(raw, &single); err == nil && single != "" {
		return []string{single}
	}
	return nil
}
