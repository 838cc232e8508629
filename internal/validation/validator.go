// Package validation checks helper command files before they are installed
// into a Kirby project.
package validation

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"strings"

	"kirbymcp/internal/kirby"
)

// ValidateHelperTemplate checks that data looks like a Kirby CLI command
// file. Returns nil if valid, or an error describing the problem.
func ValidateHelperTemplate(data []byte) error {
	scanner := bufio.NewScanner(bytes.NewReader(data))

	first := ""
	for scanner.Scan() {
		if first = strings.TrimSpace(scanner.Text()); first != "" {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("cannot read template: %w", err)
	}
	if first == "" {
		return errors.New("template is empty")
	}
	if !strings.HasPrefix(first, "<?php") {
		return errors.New("template must start with <?php")
	}

	// A helper that prints a payload must close it, or the bridge reports
	// no payload at all.
	hasStart := bytes.Contains(data, []byte(kirby.MarkerStart))
	hasEnd := bytes.Contains(data, []byte(kirby.MarkerEnd))
	if hasStart != hasEnd {
		return errors.New("template prints only one of the JSON output markers")
	}
	return nil
}
