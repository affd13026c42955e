// Command tablestore is a thin CLI over the dataset store, for inspecting
// and managing stored tables.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"

	"github.com/alecthomas/kong"
	"github.com/lmittmann/tint"

	"github.com/workbench/tablestore/pkg/dataset"
	"github.com/workbench/tablestore/pkg/table"
)

type cli struct {
	Ls      lsCmd      `kong:"cmd,help='List stored dataset names.'"`
	Summary summaryCmd `kong:"cmd,help='Show names, sizes, and modification times.'"`
	Get     getCmd     `kong:"cmd,help='Fetch a dataset and print it as JSON.'"`
	Put     putCmd     `kong:"cmd,help='Store a dataset from a JSON file of column arrays.'"`
	Rm      rmCmd      `kong:"cmd,help='Delete a dataset.'"`
	Check   checkCmd   `kong:"cmd,help='Probe connectivity and permissions.'"`

	Endpoint  string `kong:"env='MINIO_ENDPOINT',help='S3-compatible endpoint URL.'"`
	Bucket    string `kong:"env='TABLESTORE_BUCKET',help='Bucket holding the datasets.'"`
	AccessKey string `kong:"env='MINIO_ACCESS_KEY',help='Access key ID.'"`
	SecretKey string `kong:"env='MINIO_SECRET_KEY',help='Secret access key.'"`
	Region    string `kong:"env='MINIO_REGION',help='Optional region.'"`
	Local     string `kong:"help='Run against a local directory instead of a remote endpoint.'"`
	Verbose   bool   `kong:"short='v',help='Enable debug logging.'"`
}

type runCtx struct {
	ctx   context.Context
	store *dataset.Store
	out   *os.File
}

func main() {
	var c cli
	kctx := kong.Parse(&c,
		kong.Name("tablestore"),
		kong.Description("Named tabular datasets stored as Parquet objects."),
		kong.UsageOnError(),
	)

	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: "2006-01-02 15:04:05.000",
	}))

	cfg := dataset.Config{
		EndpointURL:     c.Endpoint,
		Region:          c.Region,
		AccessKeyID:     c.AccessKey,
		SecretAccessKey: c.SecretKey,
		Bucket:          c.Bucket,
		LocalRoot:       c.Local,
	}
	if c.Local != "" {
		cfg.EndpointURL = ""
	}

	store, err := dataset.New(cfg,
		dataset.WithLogger(logger),
		dataset.WithParams(dataset.EnvParams{}),
	)
	if err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}

	err = kctx.Run(&runCtx{ctx: context.Background(), store: store, out: os.Stdout})
	if err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
}

type lsCmd struct{}

func (cmd *lsCmd) Run(rc *runCtx) error {
	names := rc.store.List(rc.ctx)
	sort.Strings(names)
	for _, n := range names {
		fmt.Fprintln(rc.out, n)
	}
	return nil
}

type summaryCmd struct{}

func (cmd *summaryCmd) Run(rc *runCtx) error {
	rows := rc.store.Summary(rc.ctx)
	sort.Slice(rows, func(i, j int) bool { return rows[i].Name < rows[j].Name })
	if out := dataset.FormatSummary(rows); out != "" {
		fmt.Fprintln(rc.out, out)
	}
	return nil
}

type getCmd struct {
	Name string `kong:"arg,help='Dataset name.'"`
}

func (cmd *getCmd) Run(rc *runCtx) error {
	t, err := rc.store.Get(rc.ctx, cmd.Name)
	if err != nil {
		return err
	}
	return t.WriteJSON(rc.out)
}

type putCmd struct {
	Name string `kong:"arg,help='Dataset name.'"`
	File string `kong:"arg,type='existingfile',help='JSON file of column arrays.'"`
}

func (cmd *putCmd) Run(rc *runCtx) error {
	f, err := os.Open(cmd.File)
	if err != nil {
		return err
	}
	defer f.Close()

	t, err := table.FromJSON(f)
	if err != nil {
		return err
	}
	return rc.store.Upsert(rc.ctx, cmd.Name, t)
}

type rmCmd struct {
	Name string `kong:"arg,help='Dataset name.'"`
}

func (cmd *rmCmd) Run(rc *runCtx) error {
	rc.store.Delete(rc.ctx, cmd.Name)
	return nil
}

type checkCmd struct{}

func (cmd *checkCmd) Run(rc *runCtx) error {
	if err := rc.store.Check(rc.ctx); err != nil {
		return err
	}
	fmt.Fprintln(rc.out, "ok")
	return nil
}
