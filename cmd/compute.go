package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/okian/storefront/internal/adapters/catalog"
	"github.com/okian/storefront/internal/adapters/mq/dispatcher"
	"github.com/okian/storefront/internal/adapters/mq/engine"
	"github.com/okian/storefront/internal/adapters/mq/message"
	"github.com/okian/storefront/internal/domain/product"
	"github.com/okian/storefront/pkg/logger"
	"github.com/spf13/cobra"
)

// Compute operations accepted by --op.
const (
	opFilter     = "filter"
	opSort       = "sort"
	opStatistics = "statistics"
)

var (
	errNoCatalog  = errors.New("one of --catalog or --generate is required")
	errUnknownOp  = errors.New("unknown operation")
	errNoResponse = errors.New("no response from engine")
)

type computeOptions struct {
	catalogPath string
	generate    int
	op          string
	sortKey     string
	where       []string
	timeout     time.Duration
}

func newComputeCmd() *cobra.Command {
	var opts computeOptions
	cmd := &cobra.Command{
		Use:   "compute",
		Short: "Run one catalog operation through a compute engine",
		Long: `Loads a catalog snapshot (or generates one), sends a single FILTER, SORT or
STATISTICS request to a freshly mounted engine and prints the response
envelope as JSON.`,
		Example: `  storefront compute --catalog products.json --op filter --where category=home --where inStock=true
  storefront compute --generate 500 --op sort --sort-key name
  storefront compute --catalog products.lz4 --op statistics`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCompute(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}
	cmd.Flags().StringVar(&opts.catalogPath, "catalog", "", "catalog snapshot (.json, .msgpack, .lz4)")
	cmd.Flags().IntVar(&opts.generate, "generate", 0, "generate this many random products instead of loading a catalog")
	cmd.Flags().StringVar(&opts.op, "op", opStatistics, "operation: filter, sort or statistics")
	cmd.Flags().StringVar(&opts.sortKey, "sort-key", string(product.SortByPrice), "sort key for --op sort: price or name")
	cmd.Flags().StringArrayVar(&opts.where, "where", nil, "filter criterion field=value (repeatable)")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "wait window for the response (defaults to config)")
	return cmd
}

func runCompute(ctx context.Context, out io.Writer, opts computeOptions) error {
	cfg, locale, err := setup(ctx)
	if err != nil {
		return err
	}

	products, err := computeInput(opts)
	if err != nil {
		return err
	}
	req, err := buildRequest(opts, products)
	if err != nil {
		return err
	}

	timeout := cfg.ResponseTimeout()
	if opts.timeout > 0 {
		timeout = opts.timeout
	}
	registry := engine.NewDefaultRegistry(locale,
		engine.WithQueueCapacity(cfg.EngineQueueSize),
		engine.WithLogger(logger.Get()),
	)

	return dispatcher.Mount(ctx, registry, cfg.EnginePath, func(d *dispatcher.Dispatcher) error {
		got := make(chan message.Response, 1)
		d.Subscribe(func(resp message.Response) {
			select {
			case got <- resp:
			default:
			}
		})
		if err := d.Send(ctx, req); err != nil {
			return err
		}

		timer := time.NewTimer(timeout)
		defer timer.Stop()
		select {
		case resp := <-got:
			return printResponse(out, resp)
		case <-timer.C:
			return fmt.Errorf("%w: %s after %s", errNoResponse, req.Type(), timeout)
		case <-ctx.Done():
			return ctx.Err()
		}
	},
		dispatcher.WithStrictSend(true),
		dispatcher.WithLogger(logger.Get()),
	)
}

func computeInput(opts computeOptions) ([]product.Product, error) {
	switch {
	case opts.catalogPath != "":
		return catalog.Load(opts.catalogPath)
	case opts.generate > 0:
		return catalog.Generate(opts.generate)
	default:
		return nil, errNoCatalog
	}
}

func buildRequest(opts computeOptions, products []product.Product) (message.Request, error) {
	switch strings.ToLower(strings.TrimSpace(opts.op)) {
	case opFilter:
		criteria := make(product.Criteria, len(opts.where))
		for _, pair := range opts.where {
			field, value, err := product.ParseCriterion(pair)
			if err != nil {
				return nil, err
			}
			criteria[field] = value
		}
		return message.FilterRequest{Products: products, Criteria: criteria}, nil
	case opSort:
		return message.SortRequest{Products: products, SortKey: product.SortKey(opts.sortKey)}, nil
	case opStatistics, "stats":
		return message.StatisticsRequest{Products: products}, nil
	default:
		return nil, fmt.Errorf("%w: %q", errUnknownOp, opts.op)
	}
}

func printResponse(out io.Writer, resp message.Response) error {
	env, err := message.EncodeResponse(resp)
	if err != nil {
		return err
	}
	b, err := message.ToJSON(env)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(b))
	return err
}
