package main

import (
	"encoding/json"
	"os"

	"github.com/dostiep/360i/define"
)

// readTemplate loads a generated define template from disk.
func readTemplate(path string) (*define.Template, error) {
	f, err := os.Open(path)

	if err != nil {
		return nil, err
	}

	defer f.Close()

	var t define.Template

	if err = json.NewDecoder(f).Decode(&t); err != nil {
		return nil, err
	}

	return &t, nil
}
