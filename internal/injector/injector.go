// Package injector types translated text into whatever application currently
// holds keyboard focus. It shells out to the platform's keystroke tool and
// falls back to the clipboard when simulated typing is unavailable, so the
// dictated text is never lost.
package injector

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/thalesmourabh/voxcode/internal/conf"
	"github.com/thalesmourabh/voxcode/internal/errors"
	"github.com/thalesmourabh/voxcode/internal/logging"
)

// focusDelay gives the user's window manager time to settle focus before the
// first keystroke lands.
const focusDelay = 300 * time.Millisecond

// commandRunner executes an external command, feeding stdin to it when
// non-empty. Tests replace it to observe invocations.
type commandRunner func(ctx context.Context, stdin, name string, args ...string) error

func runCommand(ctx context.Context, stdin, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(out)))
	}
	return nil
}

// Injector simulates typing through an external keystroke tool.
type Injector struct {
	tool      string
	chunkSize int
	interval  time.Duration
	logger    *slog.Logger

	run      commandRunner
	lookPath func(string) (string, error)
	sleep    func(time.Duration)
}

// New builds an injector from settings. When no tool is configured one is
// picked for the current platform.
func New(settings *conf.InjectionSettings) *Injector {
	inj := &Injector{
		tool:      settings.Tool,
		chunkSize: settings.ChunkSize,
		interval:  settings.Interval,
		logger:    logging.ForService("injector"),
		run:       runCommand,
		lookPath:  exec.LookPath,
		sleep:     time.Sleep,
	}
	if inj.chunkSize <= 0 {
		inj.chunkSize = 25
	}
	if inj.interval <= 0 {
		inj.interval = 5 * time.Millisecond
	}
	return inj
}

// selectTool resolves the keystroke tool to use. Wayland sessions prefer
// wtype since xdotool cannot reach native Wayland windows.
func (inj *Injector) selectTool() (string, error) {
	if inj.tool != "" {
		return inj.tool, nil
	}

	switch runtime.GOOS {
	case "darwin":
		return "osascript", nil
	case "linux":
		if os.Getenv("WAYLAND_DISPLAY") != "" {
			if _, err := inj.lookPath("wtype"); err == nil {
				return "wtype", nil
			}
		}
		if _, err := inj.lookPath("xdotool"); err == nil {
			return "xdotool", nil
		}
		return "", errors.Newf("no keystroke tool found, install xdotool or wtype").
			Component("injector").
			Category(errors.CategoryInjection).
			Build()
	default:
		return "", errors.Newf("text injection is not supported on %s", runtime.GOOS).
			Component("injector").
			Category(errors.CategoryInjection).
			Context("os", runtime.GOOS).
			Build()
	}
}

// Inject types text into the focused application without submitting it; the
// user presses Enter themselves. On typing failure the text is copied to the
// clipboard and an error is still returned so the caller can tell the user
// to paste manually.
func (inj *Injector) Inject(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return errors.Newf("nothing to inject, text is empty").
			Component("injector").
			Category(errors.CategoryValidation).
			Build()
	}

	tool, err := inj.selectTool()
	if err != nil {
		return inj.fallbackToClipboard(ctx, text, err)
	}

	inj.sleep(focusDelay)
	inj.logger.Info("injecting text", "tool", tool, "chars", len([]rune(text)))

	for i, chunk := range splitChunks(text, inj.chunkSize) {
		if i > 0 {
			inj.sleep(inj.interval)
		}
		if err := inj.typeChunk(ctx, tool, chunk); err != nil {
			return inj.fallbackToClipboard(ctx, text, err)
		}
	}
	return nil
}

func (inj *Injector) typeChunk(ctx context.Context, tool, chunk string) error {
	switch tool {
	case "xdotool":
		return inj.run(ctx, "", "xdotool", "type", "--delay", "5", "--clearmodifiers", "--", chunk)
	case "wtype":
		return inj.run(ctx, "", "wtype", chunk)
	case "osascript":
		script := fmt.Sprintf(`tell application "System Events" to keystroke %q`, chunk)
		return inj.run(ctx, "", "osascript", "-e", script)
	default:
		return fmt.Errorf("unknown keystroke tool %q", tool)
	}
}

// fallbackToClipboard salvages the text when typing is impossible. The
// returned error always reports the original failure; whether the clipboard
// copy worked only changes the guidance attached to it.
func (inj *Injector) fallbackToClipboard(ctx context.Context, text string, cause error) error {
	inj.logger.Warn("typing failed, copying to clipboard", "error", cause)

	if err := inj.copyToClipboard(ctx, text); err != nil {
		inj.logger.Error("clipboard fallback failed", "error", err)
		return errors.New(fmt.Errorf("text injection failed: %w", cause)).
			Component("injector").
			Category(errors.CategoryInjection).
			Build()
	}

	return errors.New(fmt.Errorf("text injection failed, text copied to clipboard instead: %w", cause)).
		Component("injector").
		Category(errors.CategoryInjection).
		Context("fallback", "clipboard").
		Build()
}

func (inj *Injector) copyToClipboard(ctx context.Context, text string) error {
	type clipboardTool struct {
		name string
		args []string
	}

	var candidates []clipboardTool
	switch runtime.GOOS {
	case "darwin":
		candidates = []clipboardTool{{name: "pbcopy"}}
	default:
		candidates = []clipboardTool{
			{name: "wl-copy"},
			{name: "xclip", args: []string{"-selection", "clipboard"}},
			{name: "xsel", args: []string{"--clipboard", "--input"}},
		}
	}

	var lastErr error
	for _, c := range candidates {
		if _, err := inj.lookPath(c.name); err != nil {
			lastErr = err
			continue
		}
		if err := inj.run(ctx, text, c.name, c.args...); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no clipboard tool available")
	}
	return lastErr
}

// splitChunks breaks text into rune-safe pieces of at most size runes.
func splitChunks(text string, size int) []string {
	runes := []rune(text)
	chunks := make([]string, 0, (len(runes)+size-1)/size)
	for start := 0; start < len(runes); start += size {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}
