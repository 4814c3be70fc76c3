// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package host

import (
	"os/exec"
	"runtime"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// ArenaURL is the model comparison page offered by the command palette.
const ArenaURL = "https://us.zenai.world"

// OpenCommand returns the command that opens target with the platform's
// default handler.
func OpenCommand(goos, target string) (string, []string, error) {
	switch goos {
	case "windows":
		// Empty quoted title so a quoted target is not taken as the title.
		return "cmd", []string{"/c", "start", `""`, target}, nil
	case "darwin":
		return "open", []string{target}, nil
	case "linux", "freebsd", "openbsd", "netbsd":
		return "xdg-open", []string{target}, nil
	default:
		return "", nil, errors.Errorf("unsupported platform: %s", goos)
	}
}

// Open opens a URL or file in the default application without waiting for
// it to exit.
func Open(target string) error {
	name, args, err := OpenCommand(runtime.GOOS, target)
	if err != nil {
		return err
	}
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return errors.Wrapf(err, "open %s", target)
	}
	go func() {
		if err := cmd.Wait(); err != nil {
			log.Debug().Err(err).Str("target", target).Msg("opener exited with error")
		}
	}()
	return nil
}
