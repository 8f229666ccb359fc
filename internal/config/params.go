package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Harshitk-cp/echosim/internal/domain"
	"gopkg.in/yaml.v3"
)

// LoadParamsFile reads simulation params from a YAML (or JSON) file. Keys
// that are absent keep their default values. The result is not validated.
func LoadParamsFile(path string) (domain.Params, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Params{}, fmt.Errorf("read params file: %w", err)
	}
	return DecodeParams(data)
}

// DecodeParams overlays YAML onto DefaultParams. Unknown keys are rejected.
func DecodeParams(data []byte) (domain.Params, error) {
	p := domain.DefaultParams()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil && !errors.Is(err, io.EOF) {
		return domain.Params{}, fmt.Errorf("decode params: %w", err)
	}
	return p, nil
}

// EncodeParams renders params as YAML.
func EncodeParams(p domain.Params) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(p); err != nil {
		return nil, fmt.Errorf("encode params: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
