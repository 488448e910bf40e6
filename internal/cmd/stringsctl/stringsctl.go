// Package stringsctl implements the strings command-line client.
package stringsctl

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/alecthomas/kong"
	entrypoint "github.com/saulotoledo/strings-database/internal/platform/cmd"
	platformgrpc "github.com/saulotoledo/strings-database/internal/platform/grpc"
	"github.com/saulotoledo/strings-database/internal/platform/timeouts"
	"github.com/saulotoledo/strings-database/internal/services/strings/client"
	"github.com/saulotoledo/strings-database/internal/services/strings/query"
)

// CLI is the stringsctl command tree.
type CLI struct {
	Addr    string        `help:"Base URL of the strings API." default:"http://localhost:8080" env:"STRINGSCTL_ADDR"`
	Lang    string        `help:"Preferred language for error messages." env:"STRINGSCTL_LANG"`
	Timeout time.Duration `help:"Timeout for each API request." default:"${client_timeout}"`

	Save   SaveCmd   `cmd:"" help:"Store a new string."`
	Get    GetCmd    `cmd:"" help:"Show one stored string."`
	List   ListCmd   `cmd:"" help:"List stored strings."`
	Health HealthCmd `cmd:"" help:"Check the server's gRPC health endpoint."`
}

// SaveCmd stores a value.
type SaveCmd struct {
	Value string `arg:"" help:"Text to store."`
}

// Run executes the save command.
func (c *SaveCmd) Run(ctx context.Context, api *client.Client, out io.Writer) error {
	created, err := api.Save(ctx, c.Value)
	if err != nil {
		return err
	}
	return writeProjections(out, created)
}

// GetCmd fetches one value by id.
type GetCmd struct {
	ID int64 `arg:"" help:"Identifier of the string."`
}

// Run executes the get command.
func (c *GetCmd) Run(ctx context.Context, api *client.Client, out io.Writer) error {
	found, err := api.Get(ctx, c.ID)
	if err != nil {
		return err
	}
	return writeProjections(out, found)
}

// ListCmd lists one page of values.
type ListCmd struct {
	Filter  *string  `help:"Only strings containing this text (case-sensitive)."`
	Page    int      `help:"Zero-based page index." default:"0"`
	Size    int      `help:"Page size; the server default when zero."`
	Sort    []string `help:"Sort key as field[,asc|desc]; repeatable." sep:"none"`
	OrderBy string   `help:"AIP-132 order_by expression, e.g. \"value desc, id\"." name:"order-by"`
}

// Run executes the list command.
func (c *ListCmd) Run(ctx context.Context, api *client.Client, out io.Writer) error {
	page, err := api.List(ctx, client.ListOptions{
		Filter:  c.Filter,
		Page:    c.Page,
		Size:    c.Size,
		Sort:    c.Sort,
		OrderBy: c.OrderBy,
	})
	if err != nil {
		return err
	}
	if err := writeProjections(out, page.Content...); err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "page %d of %d, %d total\n", page.Number+1, max(page.TotalPages, 1), page.TotalElements)
	return err
}

// HealthCmd probes the gRPC health endpoint.
type HealthCmd struct {
	HealthAddr string `help:"gRPC health address." default:"localhost:8081" env:"STRINGSCTL_HEALTH_ADDR" name:"health-addr"`
	Service    string `help:"Service name to check; empty checks the whole server." default:"stringsdb.v1.Strings"`
	Wait       bool   `help:"Retry until SERVING or the wait deadline passes."`
}

// Run executes the health command.
func (c *HealthCmd) Run(ctx context.Context, out io.Writer) error {
	logf := func(format string, args ...any) {
		fmt.Fprintf(out, format+"\n", args...)
	}
	if c.Wait {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeouts.HealthWait)
		defer cancel()
	}
	if err := platformgrpc.Probe(ctx, c.HealthAddr, c.Service, c.Wait, logf); err != nil {
		return err
	}
	_, err := fmt.Fprintf(out, "%s SERVING\n", c.HealthAddr)
	return err
}

func writeProjections(out io.Writer, items ...query.Projection) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tVALUE")
	for _, item := range items {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", item.ID, item.CreatedAt.Format(time.RFC3339), strconv.Quote(item.Value))
	}
	return tw.Flush()
}

// Run parses args and executes the selected command, writing results to
// out. Extra kong options are applied after the defaults.
func Run(ctx context.Context, args []string, out io.Writer, options ...kong.Option) error {
	var cli CLI
	options = append([]kong.Option{
		kong.Name(entrypoint.ServiceStringsCtl),
		kong.Description("Save, fetch and list strings stored by stringsdb."),
		kong.UsageOnError(),
		kong.Vars{"client_timeout": timeouts.ClientRequest.String()},
	}, options...)
	parser, err := kong.New(&cli, options...)
	if err != nil {
		return err
	}
	kctx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	api, err := client.New(cli.Addr, client.WithLanguage(cli.Lang), client.WithTimeout(cli.Timeout))
	if err != nil {
		return err
	}
	kctx.BindTo(ctx, (*context.Context)(nil))
	kctx.BindTo(out, (*io.Writer)(nil))
	kctx.Bind(api)
	return kctx.Run()
}
