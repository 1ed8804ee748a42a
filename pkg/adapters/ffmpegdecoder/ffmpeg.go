package ffmpegdecoder

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
)

// findBinary searches for an ffmpeg tool (ffmpeg, ffprobe) in the custom
// path, PATH, and common install locations, in that order.
func findBinary(name, custom string) (string, error) {
	if custom != "" {
		if _, err := os.Stat(custom); err == nil {
			return custom, nil
		}
		return "", fmt.Errorf("%w: custom path %s not found", ErrFFmpegNotFound, custom)
	}

	execName := name
	if runtime.GOOS == "windows" {
		execName = name + ".exe"
	}

	if path, err := exec.LookPath(execName); err == nil {
		return path, nil
	}

	var dirs []string
	if runtime.GOOS == "windows" {
		dirs = []string{
			`C:\ffmpeg\bin\`,
			`C:\Program Files\ffmpeg\bin\`,
			`C:\Program Files (x86)\ffmpeg\bin\`,
		}
	} else {
		dirs = []string{
			"/usr/bin/",
			"/usr/local/bin/",
			"/opt/homebrew/bin/",
			"/snap/bin/",
		}
	}

	for _, dir := range dirs {
		p := dir + execName
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	return "", fmt.Errorf("%w: %s", ErrFFmpegNotFound, name)
}

// Available reports whether both ffmpeg and ffprobe can be located.
func Available() bool {
	if _, err := findBinary("ffmpeg", ""); err != nil {
		return false
	}
	_, err := findBinary("ffprobe", "")
	return err == nil
}
