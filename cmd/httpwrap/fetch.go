package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"httpwrap/application/http"
	"httpwrap/application/http/handle"
	"httpwrap/storage"
	"httpwrap/transport"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

type fetchFlags struct {
	method       string
	headers      []string
	data         string
	follow       bool
	maxRedirects int
	timeout      time.Duration
	include      bool
	statusPart   string
	archive      bool
}

func newFetchCommand(a *app) *cobra.Command {
	var f fetchFlags

	cmd := &cobra.Command{
		Use:   "fetch URL",
		Short: "Fetch URL and print the response",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.fetch(cmd, args[0], f)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&f.method, "request", "X", "GET", "request method")
	flags.StringArrayVarP(&f.headers, "header", "H", nil, `extra header "Name: value", repeatable`)
	flags.StringVarP(&f.data, "data", "d", "", "request body")
	flags.BoolVarP(&f.follow, "location", "L", false, "follow redirects")
	flags.IntVar(&f.maxRedirects, "max-redirects", 0, "redirect limit, defaults to the configured one")
	flags.DurationVar(&f.timeout, "timeout", 0, "transfer timeout, defaults to the configured one")
	flags.BoolVarP(&f.include, "include", "i", false, "print status line and headers before the body")
	flags.StringVar(&f.statusPart, "status", "", "print only a status line part (raw, version, code, status)")
	flags.BoolVar(&f.archive, "archive", false, "record the exchange in the archive")

	return cmd
}

func (a *app) fetch(cmd *cobra.Command, uri string, f fetchFlags) error {
	ctx := cmd.Context()

	headers, err := parseHeaderFlags(f.headers)
	if err != nil {
		return err
	}

	settings := map[transport.Setting]any{
		transport.SettingMethod:         strings.ToUpper(f.method),
		transport.SettingFollowLocation: f.follow,
		transport.SettingRequestID:      uuid.NewString(),
	}
	if cmd.Flags().Changed("data") {
		settings[transport.SettingBody] = f.data
		if !cmd.Flags().Changed("request") {
			settings[transport.SettingMethod] = "POST"
		}
	}
	if f.maxRedirects > 0 {
		settings[transport.SettingMaxRedirects] = f.maxRedirects
	}
	if f.timeout > 0 {
		settings[transport.SettingTimeout] = f.timeout
	}

	h := handle.New(a.newOpener(a.cfg, a.logger), handle.WithURI(uri)).
		SetOutgoingHeaders(headers)
	defer h.Close()

	if err := h.SetOptions(settings); err != nil {
		return err
	}

	started := time.Now()
	if _, err := h.Execute(ctx); err != nil {
		return err
	}
	elapsed := time.Since(started)

	res, err := h.Response()
	if err != nil {
		return err
	}
	a.logger.InfoContext(ctx, "fetched",
		slog.String("uri", uri),
		slog.String("status", res.Status().Raw),
		slog.Duration("elapsed", elapsed),
	)

	if f.archive {
		if err := a.record(cmd, h, res, settings, elapsed); err != nil {
			return err
		}
	}

	return writeResponse(cmd.OutOrStdout(), res, f)
}

func writeResponse(w io.Writer, res *http.Response, f fetchFlags) error {
	if f.statusPart != "" {
		part, err := res.Status().Part(http.StatusPart(f.statusPart))
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, part)
		return err
	}

	if f.include {
		if _, err := io.WriteString(w, res.Head()); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, res.Body())
	return err
}

func (a *app) record(cmd *cobra.Command, h *handle.Handle, res *http.Response, settings map[transport.Setting]any, elapsed time.Duration) error {
	archive, err := a.openArchive(cmd.Context(), a.cfg.Archive.Path)
	if err != nil {
		return errors.Wrap(err, "opening archive")
	}
	defer archive.Close()

	headers, err := h.ResponseHeaders()
	if err != nil {
		return err
	}

	return archive.Record(cmd.Context(), &storage.Exchange{
		ID:         settings[transport.SettingRequestID].(string),
		Method:     settings[transport.SettingMethod].(string),
		URI:        h.URI(),
		StatusLine: res.Status().Raw,
		StatusCode: res.Status().Code,
		Headers:    headers.Clone(),
		Body:       res.Body(),
		Duration:   elapsed,
	})
}

// parseHeaderFlags groups "Name: value" flags by name, keeping value order.
func parseHeaderFlags(flags []string) (map[string][]string, error) {
	headers := make(map[string][]string)
	for _, raw := range flags {
		name, value, ok := strings.Cut(raw, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, errors.Errorf("malformed header %q", raw)
		}
		headers[name] = append(headers[name], strings.TrimSpace(value))
	}
	return headers, nil
}
