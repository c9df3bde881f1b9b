package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rexwzh/termcap/internal/activitylog"
	"github.com/rexwzh/termcap/internal/cast"
	"github.com/rexwzh/termcap/internal/config"
	"github.com/rexwzh/termcap/internal/frame"
	"github.com/rexwzh/termcap/internal/svganimator"
	"github.com/rexwzh/termcap/internal/svgtemplate"
)

func newRenderCmd(mgr *config.Manager) *cobra.Command {
	var template string
	var minDuration int
	var maxDuration int
	var loopDelay int
	var stillFrames bool
	var activityLogPath string

	cmd := &cobra.Command{
		Use:   "render <input_file> [output_path]",
		Short: "Render an asciicast v2 cast file to an SVG animation",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := mgr.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			if template == "" {
				template = cfg.General.DefaultTemplate
			}
			if minDuration == 0 {
				minDuration = cfg.General.DefaultMinDuration
			}
			if maxDuration == 0 {
				maxDuration = cfg.General.DefaultMaxDuration
			}
			if loopDelay == 0 {
				loopDelay = cfg.General.DefaultLoopDelay
			}

			inputPath := args[0]
			outputPath := ""
			if len(args) > 1 {
				outputPath = args[1]
			} else if stillFrames {
				outputPath = strings.TrimSuffix(inputPath, ".cast") + "_frames"
			} else {
				outputPath = strings.TrimSuffix(inputPath, ".cast") + ".svg"
			}

			return runRender(mgr, inputPath, outputPath, template, minDuration, maxDuration, loopDelay, stillFrames, activityLogPath)
		},
	}

	cmd.Flags().StringVarP(&template, "template", "t", "", "SVG template to render through (default from config)")
	cmd.Flags().IntVarP(&minDuration, "min-duration", "m", 0, "Minimum frame duration in ms (default from config)")
	cmd.Flags().IntVarP(&maxDuration, "max-duration", "M", 0, "Maximum frame duration in ms; 0 takes the config value (default from config)")
	cmd.Flags().IntVarP(&loopDelay, "loop-delay", "D", 0, "Pause before the animation loops, in ms (default from config)")
	cmd.Flags().BoolVarP(&stillFrames, "still-frames", "s", false, "Write one SVG per frame instead of a single animation")
	cmd.Flags().StringVar(&activityLogPath, "activity-log", "", "Append lifecycle events as JSON lines to this file")

	return cmd
}

func runRender(mgr *config.Manager, inputPath, outputPath, templateName string, minDuration, maxDuration, loopDelay int, stillFrames bool, activityLogPath string) error {
	log := activitylog.Nop()
	if activityLogPath != "" {
		log = activitylog.New(true, activityLogPath, "render", outputPath)
	}
	defer log.Close()

	in, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("open cast file: %w", err)
	}
	defer in.Close()

	reader, err := cast.NewReader(in)
	if err != nil {
		return fmt.Errorf("read cast header: %w", err)
	}

	maxDur := maxDuration
	if maxDur == 0 && reader.Header.IdleTimeLimit > 0 {
		maxDur = int(reader.Header.IdleTimeLimit * 1000)
	}

	sampler := frame.NewSampler(reader.Header.Width, reader.Header.Height, minDuration, maxDur, loopDelay)
	sampler.OnClamp = log.FrameClamped
	frames, err := sampler.Sample(reader)
	if err != nil {
		return fmt.Errorf("sample frames: %w", err)
	}
	cols, rows := sampler.Geometry()

	templateBytes, err := mgr.TemplateContent(templateName)
	if err != nil {
		if isTemplateNotFound(err) {
			return templateNotFoundError(mgr, templateName, err)
		}
		return fmt.Errorf("resolve template %q: %w", templateName, err)
	}
	tpl, err := svgtemplate.Parse(strings.NewReader(string(templateBytes)))
	if err != nil {
		return fmt.Errorf("parse template: %w", err)
	}
	tpl.Resize(cols, rows)

	if stillFrames {
		if err := svganimator.RenderStillFrames(tpl, frames, outputPath); err != nil {
			return fmt.Errorf("render still frames: %w", err)
		}
		log.RenderComplete(len(frames), outputPath, 0)
		fmt.Fprintf(os.Stderr, "Rendered %d still frames to %s\n", len(frames), outputPath)
		return nil
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer out.Close()

	if err := svganimator.RenderAnimation(tpl, frames, rows, out); err != nil {
		return fmt.Errorf("render animation: %w", err)
	}

	last := frames[len(frames)-1]
	duration := last.StartMs + last.DurationMs
	log.RenderComplete(len(frames), outputPath, duration)
	fmt.Fprintf(os.Stderr, "Rendered %d frames (%dms) to %s\n", len(frames), duration, outputPath)
	return nil
}
