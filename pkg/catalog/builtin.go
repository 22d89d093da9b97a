package catalog

import (
	"bytes"
	_ "embed"
	"fmt"
)

//go:embed seed.yaml
var seed []byte

// Builtin returns the catalog of mock tools shipped with the binary.
func Builtin() *Memory {
	m, err := decode(bytes.NewReader(seed), FormatYAML)
	if err != nil {
		panic(fmt.Sprintf("catalog: embedded seed is invalid: %v", err))
	}
	return m
}
