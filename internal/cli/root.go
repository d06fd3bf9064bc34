// Package cli is the command line host of the inspector.
package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/SteelMorgan/log4j-inspector/internal/config"
	"github.com/SteelMorgan/log4j-inspector/internal/filter"
	"github.com/SteelMorgan/log4j-inspector/internal/logreader"
	"github.com/SteelMorgan/log4j-inspector/internal/observability"
	"github.com/SteelMorgan/log4j-inspector/internal/service"
	"github.com/SteelMorgan/log4j-inspector/internal/sysdetails"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// Version is set at build time
var Version = "0.1.0"

type app struct {
	cfg      *config.Config
	shutdown func(context.Context) error
}

// NewRootCmd creates the inspector command tree
func NewRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:           "inspector",
		Short:         "Inspect log4j XML logs and support exports",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd.Context())
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.shutdown == nil {
				return nil
			}
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return a.shutdown(ctx)
		},
	}

	cmd.AddCommand(
		newViewCmd(a),
		newDetailsCmd(a),
		newArchivesCmd(a),
		newExportCmd(a),
		newSummaryCmd(a),
	)
	return cmd
}

func (a *app) init(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	a.cfg = cfg

	observability.InitLogger(cfg.LogLevel, cfg.LogFile)

	shutdown, err := observability.InitTracer(ctx, observability.TracerConfig{
		ServiceName:    "log4j-inspector",
		ServiceVersion: Version,
		Endpoint:       cfg.TracingEndpoint,
		Protocol:       cfg.TracingProtocol,
		Enabled:        cfg.TracingEnabled,
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to initialize tracer")
	} else {
		a.shutdown = shutdown
	}
	return nil
}

// inspectorOptions maps the process configuration onto a session
func (a *app) inspectorOptions() (service.Options, error) {
	loc, err := a.cfg.Location()
	if err != nil {
		return service.Options{}, err
	}

	opts := service.DefaultOptions()
	opts.Parser = logreader.Options{
		ChunkSize:          a.cfg.ChunkSize,
		SenderTimestampKey: a.cfg.SenderTimestampKey,
		Location:           loc,
	}
	opts.ArchivedChunkSize = a.cfg.ArchivedChunkSize
	opts.Layout = a.cfg.ContainerLayout()
	opts.Engine = filter.Config{
		PageSize:        a.cfg.PageSize,
		SearchDebounce:  a.cfg.SearchDebounce,
		ScrollThreshold: a.cfg.ScrollThreshold,
	}

	if a.cfg.SysDetailsRulesPath != "" {
		rules, err := sysdetails.LoadRules(a.cfg.SysDetailsRulesPath)
		if err != nil {
			return service.Options{}, err
		}
		ex, err := sysdetails.NewExtractor(rules)
		if err != nil {
			return service.Options{}, err
		}
		opts.Extractor = ex
	}
	return opts, nil
}

// open loads path, and the named archived log when archive is set
func (a *app) open(ctx context.Context, path, archive string) (*service.Inspector, error) {
	opts, err := a.inspectorOptions()
	if err != nil {
		return nil, err
	}
	s := service.NewInspector(opts)

	results, err := s.LoadFile(ctx, path, nil)
	if err != nil {
		s.Close()
		return nil, err
	}
	if _, err := service.Wait(ctx, results); err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}

	if archive == "" {
		return s, nil
	}
	for _, ref := range s.ArchivedLogs() {
		if ref.DisplayName == archive || ref.Path == archive {
			if _, err := service.Wait(ctx, s.LoadArchived(ctx, ref, nil)); err != nil {
				s.Close()
				return nil, fmt.Errorf("failed to load archived log %s: %w", archive, err)
			}
			return s, nil
		}
	}
	s.Close()
	return nil, fmt.Errorf("archived log %q not found in %s", archive, path)
}
