package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/hupe1980/feeddown"
	"github.com/hupe1980/feeddown/codec"
	"github.com/hupe1980/feeddown/group"
	"github.com/hupe1980/feeddown/knob"
	fdprom "github.com/hupe1980/feeddown/metrics/prometheus"
	"github.com/hupe1980/feeddown/storage"
	"github.com/hupe1980/feeddown/storage/minio"
	"github.com/hupe1980/feeddown/storage/s3"
	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/prometheus/client_golang/prometheus"
)

// knobCacheSize bounds the resolved knob values kept across combinations.
const knobCacheSize = 4096

// settings holds the options shared by all subcommands. Every field has a
// FEEDDOWN_* environment variable that provides the flag default.
type settings struct {
	Store       string
	Root        string
	Bucket      string
	Endpoint    string
	AccessKey   string
	SecretKey   string
	Insecure    bool
	Region      string
	Workers     int
	Compression string
	Codec       string
	LogLevel    string
	LogFormat   string
	MergePolicy string
	Threshold   float64
	KnobTable   string
	DynamoTable string
	KnobMaxAge  time.Duration
	QueryRate   float64
	MetricsFile string
}

// loadSettings reads the FEEDDOWN_* environment through getenv.
func loadSettings(getenv func(string) string) settings {
	env := envReader(getenv)
	return settings{
		Store:       env.String("FEEDDOWN_STORE", "local"),
		Root:        env.String("FEEDDOWN_ROOT", "results"),
		Bucket:      env.String("FEEDDOWN_BUCKET", ""),
		Endpoint:    env.String("FEEDDOWN_ENDPOINT", ""),
		AccessKey:   env.String("FEEDDOWN_ACCESS_KEY", ""),
		SecretKey:   env.String("FEEDDOWN_SECRET_KEY", ""),
		Insecure:    env.Bool("FEEDDOWN_INSECURE", false),
		Region:      env.String("FEEDDOWN_REGION", ""),
		Workers:     env.Int("FEEDDOWN_WORKERS", 0),
		Compression: env.String("FEEDDOWN_COMPRESSION", "none"),
		Codec:       env.String("FEEDDOWN_CODEC", codec.Default.Name()),
		LogLevel:    env.String("FEEDDOWN_LOG_LEVEL", "info"),
		LogFormat:   env.String("FEEDDOWN_LOG_FORMAT", "text"),
		MergePolicy: env.String("FEEDDOWN_MERGE_POLICY", "reject"),
		Threshold:   env.Float("FEEDDOWN_OUTLIER_THRESHOLD", 3),
		KnobTable:   env.String("FEEDDOWN_KNOB_TABLE", ""),
		DynamoTable: env.String("FEEDDOWN_KNOB_DYNAMO_TABLE", ""),
		KnobMaxAge:  env.Duration("FEEDDOWN_KNOB_MAX_AGE", 0),
		QueryRate:   env.Float("FEEDDOWN_KNOB_QUERY_RATE", 20),
		MetricsFile: env.String("FEEDDOWN_METRICS_FILE", ""),
	}
}

func (s *settings) register(fs *flag.FlagSet) {
	fs.StringVar(&s.Store, "store", s.Store, "result store: local, s3 or minio")
	fs.StringVar(&s.Root, "root", s.Root, "local store directory, or key prefix for s3 and minio")
	fs.StringVar(&s.Bucket, "bucket", s.Bucket, "bucket for s3 and minio")
	fs.StringVar(&s.Endpoint, "endpoint", s.Endpoint, "minio endpoint (host:port)")
	fs.StringVar(&s.Region, "region", s.Region, "AWS region")
	fs.IntVar(&s.Workers, "workers", s.Workers, "concurrent workers (0: GOMAXPROCS)")
	fs.StringVar(&s.Compression, "compression", s.Compression, "dataset compression: none, lz4 or zstd")
	fs.StringVar(&s.Codec, "codec", s.Codec, "dataset codec: "+strings.Join(codec.Names(), ", "))
	fs.StringVar(&s.LogLevel, "log-level", s.LogLevel, "log level: debug, info, warn or error")
	fs.StringVar(&s.LogFormat, "log-format", s.LogFormat, "log format: text or json")
	fs.StringVar(&s.MergePolicy, "merge-policy", s.MergePolicy, "duplicate monitors when grouping: reject or last-write-wins")
	fs.Float64Var(&s.Threshold, "threshold", s.Threshold, "outlier z-score threshold")
	fs.StringVar(&s.KnobTable, "knob-table", s.KnobTable, "knob table file (\"<regexp> <value>\" per line)")
	fs.StringVar(&s.DynamoTable, "knob-dynamo-table", s.DynamoTable, "DynamoDB table with the knob history")
	fs.DurationVar(&s.KnobMaxAge, "knob-max-age", s.KnobMaxAge, "ignore knob settings older than this before an acquisition")
	fs.Float64Var(&s.QueryRate, "knob-query-rate", s.QueryRate, "knob history queries per second")
	fs.StringVar(&s.MetricsFile, "metrics-file", s.MetricsFile, "write Prometheus metrics to this file on exit")
}

func (s *settings) logger(w io.Writer) (*feeddown.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s.LogLevel)); err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	hopts := &slog.HandlerOptions{Level: level}
	switch strings.ToLower(s.LogFormat) {
	case "", "text":
		return feeddown.NewLogger(slog.NewTextHandler(w, hopts)), nil
	case "json":
		return feeddown.NewLogger(slog.NewJSONHandler(w, hopts)), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", s.LogFormat)
	}
}

func (s *settings) store(ctx context.Context) (storage.Store, error) {
	switch strings.ToLower(s.Store) {
	case "", "local":
		return storage.NewLocalStore(s.Root), nil
	case "s3":
		if s.Bucket == "" {
			return nil, errors.New("s3 store needs a bucket")
		}
		st, err := s3.New(ctx, s.Bucket, s3.WithPrefix(s.Root), s3.WithRegion(s.Region))
		if err != nil {
			return nil, fmt.Errorf("s3 store: %w", err)
		}
		return st, nil
	case "minio":
		if s.Bucket == "" || s.Endpoint == "" {
			return nil, errors.New("minio store needs a bucket and an endpoint")
		}
		client, err := miniogo.New(s.Endpoint, &miniogo.Options{
			Creds:  credentials.NewStaticV4(s.AccessKey, s.SecretKey, ""),
			Secure: !s.Insecure,
			Region: s.Region,
		})
		if err != nil {
			return nil, fmt.Errorf("minio client: %w", err)
		}
		return minio.NewStore(client, s.Bucket, s.Root), nil
	default:
		return nil, fmt.Errorf("unknown store %q", s.Store)
	}
}

// resolver returns the knob resolver for knobName, from the knob table if
// one is set and from the DynamoDB history otherwise.
func (s *settings) resolver(ctx context.Context, knobName string) (knob.Resolver, error) {
	var r knob.Resolver
	switch {
	case s.KnobTable != "":
		t, err := knob.LoadTable(s.KnobTable)
		if err != nil {
			return nil, fmt.Errorf("knob table: %w", err)
		}
		r = t
	case s.DynamoTable != "":
		if knobName == "" {
			return nil, errors.New("knob history needs a knob name")
		}
		var optFns []func(*config.LoadOptions) error
		if s.Region != "" {
			optFns = append(optFns, config.WithRegion(s.Region))
		}
		cfg, err := config.LoadDefaultConfig(ctx, optFns...)
		if err != nil {
			return nil, fmt.Errorf("aws config: %w", err)
		}
		history := knob.NewDynamoHistory(dynamodb.NewFromConfig(cfg), s.DynamoTable, s.KnobMaxAge)
		r = knob.NewHistoryResolver(knobName, history, knob.WithRateLimit(s.QueryRate, 1))
	default:
		return nil, errors.New("no knob source: set -knob-table or -knob-dynamo-table")
	}
	return knob.NewCachingResolver(r, knobCacheSize), nil
}

// analyzer builds the Analyzer. The returned finish function flushes
// metrics and must be called once the command is done.
func (s *settings) analyzer(ctx context.Context, stderr io.Writer) (*feeddown.Analyzer, func() error, error) {
	logger, err := s.logger(stderr)
	if err != nil {
		return nil, nil, err
	}
	store, err := s.store(ctx)
	if err != nil {
		return nil, nil, err
	}
	compression, err := feeddown.ParseCompression(s.Compression)
	if err != nil {
		return nil, nil, err
	}
	policy, err := group.ParseMergePolicy(s.MergePolicy)
	if err != nil {
		return nil, nil, err
	}
	c, ok := codec.ByName(s.Codec)
	if !ok {
		return nil, nil, fmt.Errorf("unknown codec %q", s.Codec)
	}

	opts := []feeddown.Option{
		feeddown.WithLogger(logger),
		feeddown.WithStore(store),
		feeddown.WithCompression(compression),
		feeddown.WithCodec(c),
		feeddown.WithMergePolicy(policy),
		feeddown.WithOutlierThreshold(s.Threshold),
		feeddown.WithWorkers(s.Workers),
	}

	finish := func() error { return nil }
	if s.MetricsFile != "" {
		reg := prometheus.NewRegistry()
		opts = append(opts, feeddown.WithMetricsCollector(fdprom.New(reg)))
		finish = func() error {
			return prometheus.WriteToTextfile(s.MetricsFile, reg)
		}
	}
	return feeddown.New(opts...), finish, nil
}

type envReader func(string) string

func (e envReader) String(key, def string) string {
	if v := e(key); v != "" {
		return v
	}
	return def
}

func (e envReader) Int(key string, def int) int {
	if v, err := strconv.Atoi(e(key)); err == nil {
		return v
	}
	return def
}

func (e envReader) Float(key string, def float64) float64 {
	if v, err := strconv.ParseFloat(e(key), 64); err == nil {
		return v
	}
	return def
}

func (e envReader) Bool(key string, def bool) bool {
	if v, err := strconv.ParseBool(e(key)); err == nil {
		return v
	}
	return def
}

func (e envReader) Duration(key string, def time.Duration) time.Duration {
	if v, err := time.ParseDuration(e(key)); err == nil {
		return v
	}
	return def
}
