package config

import (
	"bytes"
	"encoding/json"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/yosuke-furukawa/json5/encoding/json5"
	goutils "go.viam.com/utils"

	"go.viam.com/depthtruth/utils"
)

// Read reads a config from the given file.
func Read(filePath string) (*Config, error) {
	//nolint:gosec
	f, err := os.Open(filePath)
	if err != nil {
		return nil, utils.NewIOError("open", filePath, err)
	}
	defer goutils.UncheckedErrorFunc(f.Close)

	return FromReader(filePath, f)
}

// FromReader reads a config from the given reader and specifies
// where, if applicable, the file the reader originated from. The config is JSON5, so comments
// and trailing commas are allowed; unknown fields are not.
func FromReader(originalPath string, r io.Reader) (*Config, error) {
	cfg := Config{
		ConfigFilePath: originalPath,
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, utils.NewIOError("read", originalPath, err)
	}
	normalized, err := normalizeJSON5(data)
	if err != nil {
		return nil, utils.NewDecodeError("failed to decode config from json5: %v", err)
	}
	decoder := json.NewDecoder(bytes.NewReader(normalized))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&cfg); err != nil {
		return nil, utils.NewDecodeError("failed to decode config from json: %v", err)
	}
	if err := cfg.Ensure(); err != nil {
		return nil, errors.Wrapf(err, "failed to process config %q", originalPath)
	}
	return &cfg, nil
}

// normalizeJSON5 rewrites a JSON5 document as plain JSON.
func normalizeJSON5(data []byte) ([]byte, error) {
	var raw interface{}
	if err := json5.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return json.Marshal(raw)
}
