// Package codec provides encoding and decoding of request and response bodies.
package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// ErrEmptyBody is returned by Decode when the request carries no body.
var ErrEmptyBody = errors.New("empty request body")

// JSONCodec decodes requests into T and encodes responses from U as JSON.
type JSONCodec[T any, U any] struct {
	// AllowUnknownFields accepts request objects with fields T does not declare.
	AllowUnknownFields bool
}

// NewJSONCodec creates a new JSONCodec instance for the specified types.
// T represents the request type and U represents the response type.
// Unknown request fields are rejected.
func NewJSONCodec[T any, U any]() *JSONCodec[T, U] {
	return &JSONCodec[T, U]{}
}

// Decode reads the request body and unmarshals it into a T.
func (c *JSONCodec[T, U]) Decode(r *http.Request) (T, error) {
	var data T

	if r.Body == nil {
		return data, ErrEmptyBody
	}
	defer r.Body.Close()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return data, err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return data, ErrEmptyBody
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	if !c.AllowUnknownFields {
		dec.DisallowUnknownFields()
	}
	if err := dec.Decode(&data); err != nil {
		return data, fmt.Errorf("decode json: %w", err)
	}
	if dec.More() {
		return data, errors.New("decode json: trailing data after object")
	}
	return data, nil
}

// Encode marshals resp and writes it with an application/json content type.
func (c *JSONCodec[T, U]) Encode(w http.ResponseWriter, resp U) error {
	return WriteJSON(w, http.StatusOK, resp)
}

// WriteJSON writes v as the JSON body of a response with the given status code.
// Nothing is written if v cannot be marshaled.
func WriteJSON(w http.ResponseWriter, status int, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(body)
	return err
}
