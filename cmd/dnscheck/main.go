// Copyright (c) 2026 KyleSpence All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Command dnscheck queries DoH providers for a domain's DNS records and
// reports configuration problems.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/KyleSpence/dnscheck/src/dnscheck"
)

// signalContext returns a context cancelled on SIGINT/SIGTERM so an
// interrupted query tears down in-flight HTTP requests.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dnscheck",
		Short: "DNS configuration checker",
		Long:  "Query DNS-over-HTTPS providers for a domain's records and analyze the configuration for problems.",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Show help by default when no subcommand is provided.
			return cmd.Help()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().String("config", "", "Path to a YAML config file")
	cmd.PersistentFlags().String("provider", "", "Preferred DoH provider (cloudflare|google|quad9)")
	cmd.PersistentFlags().Duration("timeout", 0, "Per-query timeout (e.g. 5s)")
	cmd.PersistentFlags().String("log-level", "warn", "Log level (debug|info|warn|error)")
	cmd.PersistentFlags().String("log-format", "text", "Log format (text|json)")

	cmd.PersistentPreRunE = func(c *cobra.Command, _ []string) error {
		level, _ := c.Flags().GetString("log-level")
		format, _ := c.Flags().GetString("log-format")
		slog.SetDefault(newLogger(level, format))
		return nil
	}

	cmd.AddCommand(newCmdRecords())
	cmd.AddCommand(newCmdAnalyze())
	cmd.AddCommand(newCmdProviders())
	return cmd
}

func newLogger(level, format string) *slog.Logger {
	var l slog.Level
	switch strings.ToLower(level) {
	case "debug":
		l = slog.LevelDebug
	case "info":
		l = slog.LevelInfo
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelWarn
	}

	opts := &slog.HandlerOptions{Level: l}
	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}

// newChecker builds a checker from the config file (if given) and flags.
// Flags win over the file.
func newChecker(cmd *cobra.Command) (*dnscheck.Checker, error) {
	var opts []dnscheck.Option

	if path, _ := cmd.Flags().GetString("config"); path != "" {
		cfg, err := dnscheck.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		opts = append(opts, cfg.Options()...)
	}
	if timeout, _ := cmd.Flags().GetDuration("timeout"); timeout > 0 {
		opts = append(opts, dnscheck.WithTimeout(timeout))
	}
	opts = append(opts, dnscheck.WithLogger(slog.Default()))

	return dnscheck.New(opts...), nil
}

// preferredProviders parses the --provider flag into an optional
// preferred provider argument.
func preferredProviders(cmd *cobra.Command) ([]dnscheck.Provider, error) {
	name, _ := cmd.Flags().GetString("provider")
	if name == "" {
		return nil, nil
	}
	p := dnscheck.Provider(strings.ToLower(name))
	if !p.Known() {
		return nil, fmt.Errorf("unknown provider %q", name)
	}
	return []dnscheck.Provider{p}, nil
}

func newCmdRecords() *cobra.Command {
	return &cobra.Command{
		Use:   "records <domain>",
		Short: "Query all record types for a domain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newChecker(cmd)
			if err != nil {
				return err
			}
			preferred, err := preferredProviders(cmd)
			if err != nil {
				return err
			}

			rs, err := c.QueryAll(cmd.Context(), args[0], preferred...)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TYPE\tNAME\tTTL\tDATA\tSOURCE")
			for _, rt := range dnscheck.SupportedRecordTypes() {
				res, ok := rs.Results[rt]
				if !ok {
					continue
				}
				if res.Err != nil {
					fmt.Fprintf(w, "%s\t%s\t\t(%s)\t%s\n", rt, rs.Domain, res.Err.Category(), res.Source())
					continue
				}
				if len(res.Records) == 0 {
					fmt.Fprintf(w, "%s\t%s\t\t(no records)\t%s\n", rt, rs.Domain, res.Source())
					continue
				}
				for _, rec := range res.Records {
					fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", rec.Type, rec.Name, rec.TTL, rec.Data, res.Source())
				}
			}
			return w.Flush()
		},
	}
}

func newCmdAnalyze() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze <domain>",
		Short: "Query a domain and analyze its DNS configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newChecker(cmd)
			if err != nil {
				return err
			}
			preferred, err := preferredProviders(cmd)
			if err != nil {
				return err
			}

			rs, err := c.QueryAll(cmd.Context(), args[0], preferred...)
			if err != nil {
				return err
			}

			report := dnscheck.AnalyzeConfiguration(rs)

			fmt.Printf("Analysis for %s: %d critical, %d warnings, %d notes\n\n",
				report.Domain, report.Summary.Critical, report.Summary.Warnings, report.Summary.Info)
			printIssues("CRITICAL", report.Errors)
			printIssues("WARNING", report.Warnings)
			printIssues("INFO", report.Info)

			security := dnscheck.AnalyzeSecurityConfiguration(rs)
			fmt.Printf("Email security score: %d/100 (SPF %v, DMARC %v, DKIM %v)\n",
				security.Score, security.SPF.Configured, security.DMARC.Configured, security.DKIM.Configured)

			if out, _ := cmd.Flags().GetString("xlsx"); out != "" {
				if err := dnscheck.WriteReportXLSX(out, report, rs); err != nil {
					return err
				}
				fmt.Printf("\nReport written to %s\n", out)
			}
			return nil
		},
	}
	cmd.Flags().String("xlsx", "", "Write the report to an Excel workbook at this path")
	return cmd
}

func printIssues(label string, issues []dnscheck.Issue) {
	for _, issue := range issues {
		fmt.Printf("[%s] %s\n", label, issue.Message)
		if issue.RecordName != "" {
			fmt.Printf("    record: %s", issue.RecordName)
			if issue.CurrentValue != "" {
				fmt.Printf(" (%s)", issue.CurrentValue)
			}
			fmt.Println()
		}
		fmt.Printf("    %s\n", issue.Description)
		fmt.Printf("    fix: %s\n\n", issue.Recommendation)
	}
}

func newCmdProviders() *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "Probe the configured DoH providers and report latency",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newChecker(cmd)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "PROVIDER\tSTATUS\tLATENCY")
			for _, status := range c.TestProviders(cmd.Context()) {
				if status.Online {
					fmt.Fprintf(w, "%s\tonline\t%dms\n", status.Provider, status.LatencyMs)
				} else {
					fmt.Fprintf(w, "%s\toffline\t(%v)\n", status.Provider, status.Err)
				}
			}
			if err := w.Flush(); err != nil {
				return err
			}

			if fastest, err := c.FastestProvider(cmd.Context()); err == nil {
				fmt.Printf("\nFastest provider: %s\n", fastest)
			}
			return nil
		},
	}
}

func main() {
	root := newRootCmd()

	ctx, cancel := signalContext()
	defer cancel()
	root.SetContext(ctx)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "dnscheck: %v\n", err)
		os.Exit(1)
	}
}
