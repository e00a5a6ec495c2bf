package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/MarkCruse/k3y-open-sessions/internal/models"
	"github.com/MarkCruse/k3y-open-sessions/internal/service"
)

const noSlotsMessage = "No open slots found for the specified time range."

type queryOptions struct {
	timeZone string
	area     string
	start    string
	end      string
	exports  []string
	save     bool
}

func newRootCmd() *cobra.Command {
	var (
		opts   queryOptions
		source string
	)

	cmd := &cobra.Command{
		Use:          "k3y-slots",
		Short:        "List open K3Y operating slots for an area",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logr, err := bootstrap(source)
			if err != nil {
				return err
			}
			a, err := newApp(cfg, logr)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := runQuery(cmd.Context(), a, opts, cmd.OutOrStdout()); err != nil {
				logr.Error("open slot lookup failed", zap.Error(err))
				fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&source, "source", "", "schedule source: json or html (default from SCHEDULE_SOURCE)")
	cmd.Flags().StringVar(&opts.timeZone, "time-zone", "", "time zone abbreviation, e.g. EST")
	cmd.Flags().StringVar(&opts.area, "area", "", "K3Y area, e.g. K3Y/0")
	cmd.Flags().StringVar(&opts.start, "start", "", "local day start, e.g. 08:00 or 07:00 AM")
	cmd.Flags().StringVar(&opts.end, "end", "", "local day end, e.g. 22:00 or 10:00 PM")
	cmd.Flags().StringSliceVar(&opts.exports, "export", nil, "also save the result as csv and/or pdf under EXPORTS_DIR")
	cmd.Flags().BoolVar(&opts.save, "save", false, "persist the effective settings as the new defaults")

	cmd.AddCommand(newServeCmd(&source))
	return cmd
}

func runQuery(ctx context.Context, a *app, opts queryOptions, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	settings, err := a.settings.Resolve(ctx, models.Settings{
		TimeZone:      opts.timeZone,
		Area:          opts.area,
		LocalDayStart: opts.start,
		LocalDayEnd:   opts.end,
	})
	if err != nil {
		return err
	}

	formats := make([]service.ExportFormat, 0, len(opts.exports))
	for _, raw := range opts.exports {
		format, err := service.ParseExportFormat(raw)
		if err != nil {
			return err
		}
		formats = append(formats, format)
	}

	if opts.save {
		if _, err := a.settings.Update(ctx, settings); err != nil {
			return err
		}
	}

	result, err := a.slots.GetOpenSlots(ctx, service.OpenSlotQuery{
		Area:       settings.Area,
		TimeZone:   settings.TimeZone,
		LocalStart: settings.LocalDayStart,
		LocalEnd:   settings.LocalDayEnd,
	})
	if err != nil {
		return err
	}

	if err := printResult(out, a.exports, result); err != nil {
		return err
	}

	for _, format := range formats {
		path, err := a.exports.Save(result, format)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Saved %s\n", path)
	}
	if len(formats) > 0 {
		if _, err := a.exports.Prune(); err != nil {
			a.logger.Warn("export pruning failed", zap.Error(err))
		}
	}

	a.logger.Info("completed processing", zap.String("area", result.Area), zap.Int("slots", len(result.Slots)))
	return nil
}

func printResult(out io.Writer, exports *service.ExportService, result *service.OpenSlotResult) error {
	if result.Message != "" {
		fmt.Fprintf(out, "\n%s\n", result.Message)
	}
	if result.UpdatedAt != nil {
		fmt.Fprintf(out, "\nSKCC OP Schedule last update: %s \n\nOpen Slots for area %s\n", *result.UpdatedAt, result.Area)
	}
	if len(result.Slots) == 0 {
		_, err := fmt.Fprintf(out, "\n%s\n\n", noSlotsMessage)
		return err
	}
	fmt.Fprintln(out)
	if err := exports.WriteTable(out, result); err != nil {
		return err
	}
	_, err := fmt.Fprintln(out)
	return err
}
