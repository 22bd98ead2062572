package bootstrap

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/jackc/pgx/v5/pgxpool"

	appconfig "github.com/wolfman30/hausservice-booking/internal/config"
	"github.com/wolfman30/hausservice-booking/internal/leads"
	"github.com/wolfman30/hausservice-booking/pkg/logging"
)

// ConnectPostgresPool opens a pool for databaseURL, or returns nil when the
// URL is empty or invalid. An unreachable database still yields a pool so
// the sink can recover once Postgres comes back.
func ConnectPostgresPool(ctx context.Context, databaseURL string, logger *logging.Logger) *pgxpool.Pool {
	if strings.TrimSpace(databaseURL) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		logger.Warn("invalid database url, postgres sink disabled", "error", err)
		return nil
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		logger.Warn("postgres not reachable yet", "error", err)
	}
	return pool
}

// LoadAWSConfig centralizes AWS SDK initialization so LocalStack and
// production share the same wiring.
func LoadAWSConfig(ctx context.Context, cfg *appconfig.Config) (aws.Config, error) {
	loaders := []func(*config.LoadOptions) error{config.WithRegion(cfg.AWSRegion)}
	if strings.TrimSpace(cfg.AWSAccessKeyID) != "" && strings.TrimSpace(cfg.AWSSecretAccessKey) != "" {
		loaders = append(loaders, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, ""),
		))
	}
	return config.LoadDefaultConfig(ctx, loaders...)
}

// BuildRemoteSink picks the remote lead sink named by REMOTE_LEAD_SINK.
// "auto" prefers Postgres, then DynamoDB, then none. A nil sink means every
// lead goes straight to the local list.
func BuildRemoteSink(ctx context.Context, cfg *appconfig.Config, pool *pgxpool.Pool, logger *logging.Logger) (leads.Sink, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}

	switch cfg.RemoteLeadSink {
	case appconfig.RemoteSinkNone:
		return nil, nil
	case appconfig.RemoteSinkPostgres:
		if pool == nil {
			return nil, fmt.Errorf("bootstrap: remote sink %q requires DATABASE_URL", cfg.RemoteLeadSink)
		}
		return leads.NewPostgresSink(pool), nil
	case appconfig.RemoteSinkDynamoDB:
		if strings.TrimSpace(cfg.LeadsDynamoTable) == "" {
			return nil, fmt.Errorf("bootstrap: remote sink %q requires LEADS_DYNAMO_TABLE", cfg.RemoteLeadSink)
		}
		return buildDynamoSink(ctx, cfg)
	case appconfig.RemoteSinkAuto, "":
		if pool != nil {
			return leads.NewPostgresSink(pool), nil
		}
		if strings.TrimSpace(cfg.LeadsDynamoTable) != "" {
			return buildDynamoSink(ctx, cfg)
		}
		logger.Info("no remote lead sink configured, leads stay in the local list")
		return nil, nil
	default:
		return nil, fmt.Errorf("bootstrap: unknown remote sink %q", cfg.RemoteLeadSink)
	}
}

func buildDynamoSink(ctx context.Context, cfg *appconfig.Config) (leads.Sink, error) {
	awsCfg, err := LoadAWSConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: load aws config: %w", err)
	}
	client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if endpoint := strings.TrimSpace(cfg.AWSEndpointOverride); endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})
	return leads.NewDynamoSink(client, cfg.LeadsDynamoTable), nil
}
