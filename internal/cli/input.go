// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/jeranaias/zen-tui/internal/model"
)

// maxInputBytes caps text read from stdin.
const maxInputBytes = 8 << 20

// readInput returns the joined args, or stdin when there are none. With
// contentJSON the input is a message content value (a string or a part list)
// and its text is extracted.
func readInput(cmd *cobra.Command, args []string, contentJSON bool) (string, error) {
	var text string
	if len(args) > 0 {
		text = strings.Join(args, " ")
	} else {
		data, err := io.ReadAll(io.LimitReader(cmd.InOrStdin(), maxInputBytes))
		if err != nil {
			return "", errors.Wrap(err, "read stdin")
		}
		text = string(data)
	}
	if !contentJSON {
		return text, nil
	}
	raw := json.RawMessage(strings.TrimSpace(text))
	if !json.Valid(raw) {
		return "", errors.New("input is not valid JSON")
	}
	return model.ExtractTextJSON(raw), nil
}
