package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/shlex"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/rexwzh/termcap/internal/activitylog"
	"github.com/rexwzh/termcap/internal/cast"
	"github.com/rexwzh/termcap/internal/config"
	"github.com/rexwzh/termcap/internal/recorder"
	"github.com/rexwzh/termcap/internal/termstate"
)

func newRecordCmd(mgr *config.Manager) *cobra.Command {
	var command string
	var geometry string
	var activityLogPath string

	cmd := &cobra.Command{
		Use:   "record [output_path]",
		Short: "Record a terminal session to an asciicast v2 cast file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := mgr.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			if command == "" {
				command = os.Getenv("SHELL")
				if command == "" {
					command = "/bin/bash"
				}
			}
			if geometry == "" {
				geometry = cfg.General.DefaultGeometry
			}
			cols, rows, err := parseGeometry(geometry)
			if err != nil {
				return err
			}

			outputPath := ""
			if len(args) > 0 {
				outputPath = args[0]
			} else {
				outputPath, err = defaultRecordingPath(cfg)
				if err != nil {
					return err
				}
			}

			argv, err := shlex.Split(command)
			if err != nil || len(argv) == 0 {
				return fmt.Errorf("invalid command %q", command)
			}

			return runRecord(argv, cols, rows, outputPath, activityLogPath)
		},
	}

	cmd.Flags().StringVarP(&command, "command", "c", "", "Program to record (default: $SHELL)")
	cmd.Flags().StringVarP(&geometry, "geometry", "g", "", "Terminal geometry COLSxROWS (default from config)")
	cmd.Flags().StringVar(&activityLogPath, "activity-log", "", "Append lifecycle events as JSON lines to this file")

	return cmd
}

func defaultRecordingPath(cfg *config.Config) (string, error) {
	dir := cfg.Output.DefaultOutputDir
	if len(dir) > 0 && dir[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(home, dir[1:])
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	name := uuid.NewString()
	if cfg.Output.AutoTimestamp {
		name = time.Now().Format("20060102-150405") + "-" + name
	}
	return filepath.Join(dir, name+".cast"), nil
}

func runRecord(argv []string, cols, rows int, outputPath, activityLogPath string) error {
	log := activitylog.Nop()
	if activityLogPath != "" {
		log = activitylog.New(true, activityLogPath, "record", uuid.NewString())
	}
	defer log.Close()

	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create cast file: %w", err)
	}
	defer out.Close()

	stdinFd := int(os.Stdin.Fd())
	state, err := termstate.Capture(stdinFd)
	if err != nil {
		return fmt.Errorf("capture terminal state: %w", err)
	}
	if err := state.MakeRaw(); err != nil {
		return fmt.Errorf("set raw mode: %w", err)
	}
	defer state.Restore()

	header, session, err := recorder.Start(argv, cols, rows, os.Stdin, os.Stdout)
	if err != nil {
		state.Restore()
		return fmt.Errorf("start recording: %w", err)
	}

	header.Theme = detectTheme()

	writer := cast.NewWriter(out)
	if err := writer.WriteHeader(header); err != nil {
		return fmt.Errorf("write cast header: %w", err)
	}

	log.RecordStart(header.Command, cols, rows)

	events := 0
	reason := "eof"
	for {
		ev, ok, nerr := session.Next()
		if nerr != nil {
			reason = nerr.Error()
			break
		}
		if !ok {
			break
		}
		if err := writer.WriteEvent(ev); err != nil {
			_ = session.Close()
			return fmt.Errorf("write cast event: %w", err)
		}
		events++
	}
	_ = session.Close()

	if err := state.Restore(); err != nil {
		return fmt.Errorf("restore terminal state: %w", err)
	}

	log.RecordEnd(events, reason)
	fmt.Fprintf(os.Stderr, "Recorded %d events to %s\n", events, outputPath)
	return nil
}
