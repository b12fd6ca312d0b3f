// Package audio plays alert sound cues through an external player
// command. Playback is fully asynchronous: a broken or missing audio
// stack degrades to log warnings, never to scheduler errors.
package audio

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sync"

	"openchime/internal/domain/entity"
)

// defaultVolume matches the fresh-install settings value.
const defaultVolume = 0.7

// SoundFiles maps each alert cue to its sound file path.
type SoundFiles struct {
	Meeting      string
	VideoMeeting string
	Test         string
	Warning30m   string
	Warning10m   string
	Warning5m    string
	Warning1m    string
}

// DefaultSoundFiles resolves the stock cue files under dir.
func DefaultSoundFiles(dir string) SoundFiles {
	return SoundFiles{
		Meeting:      filepath.Join(dir, "meeting_alert.wav"),
		VideoMeeting: filepath.Join(dir, "video_meeting_alert.wav"),
		Test:         filepath.Join(dir, "test_sound.wav"),
		Warning30m:   filepath.Join(dir, "30_minutes.mp3"),
		Warning10m:   filepath.Join(dir, "10_minutes.mp3"),
		Warning5m:    filepath.Join(dir, "5_minutes.mp3"),
		Warning1m:    filepath.Join(dir, "1_minutes.mp3"),
	}
}

// forAlert selects the file for an alert type. The snooze reminder
// reuses the meeting cue.
func (f SoundFiles) forAlert(alertType entity.AlertType) string {
	switch alertType {
	case entity.AlertWarning30m:
		return f.Warning30m
	case entity.AlertWarning10m:
		return f.Warning10m
	case entity.AlertWarning5m:
		return f.Warning5m
	case entity.AlertWarning1m:
		return f.Warning1m
	case entity.AlertVideoMeeting:
		return f.VideoMeeting
	case entity.AlertTest:
		return f.Test
	default:
		return f.Meeting
	}
}

// CommandPlayer shells out to a system audio player per cue. The player
// binary is chosen per platform unless overridden.
type CommandPlayer struct {
	mu      sync.Mutex
	volume  float64
	files   SoundFiles
	command string
}

// NewCommandPlayer creates a player over the given sound files. command
// may be empty to use the platform default (afplay on macOS, paplay on
// Linux).
func NewCommandPlayer(files SoundFiles, command string) *CommandPlayer {
	if command == "" {
		command = defaultPlayerCommand()
	}
	return &CommandPlayer{
		volume:  defaultVolume,
		files:   files,
		command: command,
	}
}

func defaultPlayerCommand() string {
	switch runtime.GOOS {
	case "darwin":
		return "afplay"
	case "windows":
		return "powershell"
	default:
		return "paplay"
	}
}

// SetVolume updates playback volume, clamped to [0, 1].
func (p *CommandPlayer) SetVolume(volume float64) {
	if volume < 0 {
		volume = 0
	}
	if volume > 1 {
		volume = 1
	}
	p.mu.Lock()
	p.volume = volume
	p.mu.Unlock()
	slog.Info("audio volume updated", slog.Float64("volume", volume))
}

// Volume returns the current playback volume.
func (p *CommandPlayer) Volume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

// PlayAlert plays the cue for the alert type in the background. A
// missing file or failed player run is logged, never returned, so the
// caller's bookkeeping proceeds regardless.
func (p *CommandPlayer) PlayAlert(alertType entity.AlertType) error {
	p.mu.Lock()
	path := p.files.forAlert(alertType)
	volume := p.volume
	command := p.command
	p.mu.Unlock()

	if _, err := os.Stat(path); err != nil {
		slog.Warn("sound file missing, skipping playback",
			slog.String("alert_type", alertType.String()),
			slog.String("path", path))
		return nil
	}

	go func() {
		cmd := exec.Command(command, playerArgs(command, path, volume)...)
		if out, err := cmd.CombinedOutput(); err != nil {
			slog.Error("audio playback failed",
				slog.String("alert_type", alertType.String()),
				slog.String("path", path),
				slog.String("output", string(out)),
				slog.Any("error", err))
		}
	}()
	return nil
}

// playerArgs builds the argument list, applying volume where the player
// supports it.
func playerArgs(command, path string, volume float64) []string {
	switch filepath.Base(command) {
	case "paplay":
		// paplay volume is linear 0..65536.
		return []string{fmt.Sprintf("--volume=%d", int(volume*65536)), path}
	case "afplay":
		return []string{"-v", fmt.Sprintf("%.2f", volume), path}
	case "powershell":
		return []string{"-c", fmt.Sprintf("(New-Object Media.SoundPlayer %q).PlaySync()", path)}
	default:
		return []string{path}
	}
}

// NoopPlayer discards every cue. Used when audio is disabled or the
// platform has no player available.
type NoopPlayer struct{}

func (NoopPlayer) PlayAlert(alertType entity.AlertType) error {
	slog.Debug("audio disabled, skipping alert sound",
		slog.String("alert_type", alertType.String()))
	return nil
}
