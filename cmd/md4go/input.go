package main

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const stdinName = "-"

// readInput reads the named file, or r when name is "-".
func readInput(name string, r io.Reader) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if name == stdinName {
		data, err = io.ReadAll(r)
	} else {
		data, err = os.ReadFile(name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", displayName(name), err)
	}
	return decodeInput(data)
}

// decodeInput converts UTF-16 input with a byte order mark to UTF-8.
// Everything else, including a UTF-8 BOM and invalid UTF-8, is passed
// through unchanged so the renderer sees the original bytes.
func decodeInput(data []byte) ([]byte, error) {
	if !bytes.HasPrefix(data, []byte{0xFF, 0xFE}) && !bytes.HasPrefix(data, []byte{0xFE, 0xFF}) {
		return data, nil
	}
	out, _, err := transform.Bytes(unicode.BOMOverride(transform.Nop), data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode UTF-16 input: %w", err)
	}
	return out, nil
}

// inputNames returns files, or stdin when there are none.
func inputNames(files []string) []string {
	if len(files) == 0 {
		return []string{stdinName}
	}
	return files
}

func displayName(name string) string {
	if name == stdinName {
		return "stdin"
	}
	return name
}
