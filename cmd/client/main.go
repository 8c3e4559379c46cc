// Command client runs the portal flows from a terminal against the remote
// APIs, for operators checking a customer's situation.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	"freightportal/internal/auth"
	"freightportal/internal/backend"
	"freightportal/internal/carrier"
	"freightportal/internal/config"
	"freightportal/internal/models"
	"freightportal/internal/taxid"
	"freightportal/internal/utils"
)

type options struct {
	configPath string
	taxID      string
	password   string
	timeout    time.Duration
	verbose    bool
}

func main() {
	os.Exit(run(os.Stdout, os.Stderr, os.Args[1:]))
}

func run(out, errOut io.Writer, args []string) int {
	fs := flag.NewFlagSet("client", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var opts options
	fs.StringVarP(&opts.configPath, "config", "c", "portal.yaml", "config file path")
	fs.StringVarP(&opts.taxID, "cpf-cnpj", "t", "", "customer CPF/CNPJ")
	fs.StringVarP(&opts.password, "password", "p", "", "customer password (signin only)")
	fs.DurationVar(&opts.timeout, "timeout", 30*time.Second, "overall deadline")
	fs.BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")
	fs.Usage = func() {
		fmt.Fprintln(errOut, "usage: client [flags] signin|pending|carriers")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return 1
	}
	level := "warn"
	if opts.verbose {
		level = "debug"
	}
	logger, err := utils.NewLogger(level, "")
	if err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return 1
	}
	defer logger.Sync() //nolint:errcheck

	timeout, err := cfg.BackendTimeout()
	if err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return 1
	}
	client := backend.New(cfg.Backend.APIURL, cfg.Backend.ERPURL, timeout, logger)
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), opts.timeout)
	defer cancel()

	if err := taxid.Validate(opts.taxID); err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return 2
	}
	digits := taxid.Normalize(opts.taxID)

	switch cmd := fs.Arg(0); cmd {
	case "signin":
		err = signIn(ctx, out, client, logger, opts)
	case "pending", "carriers":
		err = showDetail(ctx, out, client, logger, digits, cmd == "carriers")
	default:
		fmt.Fprintf(errOut, "unknown command %q\n", cmd)
		return 2
	}
	if err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return 1
	}
	return 0
}

func signIn(ctx context.Context, out io.Writer, client *backend.Client, logger *zap.Logger, opts options) error {
	a := auth.NewAuthenticator(client, nil, logger, auth.WithTransitionHook(func(_ string, s auth.State) {
		fmt.Fprintln(out, "->", s)
	}))
	sess := &auth.Session{ID: "cli"}
	st, err := a.SignIn(ctx, sess, opts.taxID, opts.password)
	if err != nil {
		return err
	}
	switch st {
	case auth.StateRequiringReset:
		fmt.Fprintf(out, "%s: first access, password must be redefined\n", taxid.Mask(sess.TaxID))
	default:
		fmt.Fprintf(out, "%s: signed in\n", taxid.Mask(sess.TaxID))
	}
	return nil
}

func showDetail(ctx context.Context, out io.Writer, client *backend.Client, logger *zap.Logger, digits string, withCarriers bool) error {
	d, err := carrier.NewFlow(client, nil, logger).Load(ctx, digits)
	if err != nil {
		return err
	}
	if d.Order == nil {
		fmt.Fprintln(out, "no order waiting for freight approval")
		return nil
	}
	fmt.Fprintf(out, "order %s  value %s  mode %s\n", d.OrderNumber(), d.Order.InvoiceValue.Trim(), d.Mode)
	fmt.Fprintf(out, "weight %s  volume %s  current carrier %d  freight R$ %s\n",
		d.Totals.GrossWeight, d.Totals.Volume, d.Totals.CarrierCode, models.FormatBRL(d.Totals.FreightValue))
	if !withCarriers {
		return nil
	}
	for _, c := range d.Candidates {
		line := fmt.Sprintf("  [%d] %-30s R$ %10s  %s dias", c.PartnerCode, c.Name, models.FormatBRL(c.FreightValue), c.LeadTime)
		if d.Quotation() {
			line += "  " + strings.Join([]string{c.Note, c.Redispatch, c.DestinationCity}, " | ")
		}
		fmt.Fprintln(out, line)
	}
	return nil
}
