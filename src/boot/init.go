package boot

import (
	"admitgate/src/common"
	"admitgate/src/config"
	"admitgate/src/db"
	"admitgate/src/lib"
	awslib "admitgate/src/lib/aws"
	"admitgate/src/lib/mailer"
	"admitgate/src/store"
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// App holds the wired components shared by the HTTP handlers.
type App struct {
	Config   *config.Config
	Store    store.TicketStore
	Issuer   *common.TicketIssuer
	Verifier *common.VerificationEngine
	Delivery *common.DeliveryScheduler
	Redis    *redis.Client
	Assets   *awslib.AssetStore
}

// NewApp wires every component from cfg. It fails when no signing secret can
// be resolved.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	secret, err := ResolveSigningSecret(ctx, cfg)
	if err != nil {
		return nil, err
	}
	st, rdb, err := InitStore(cfg)
	if err != nil {
		return nil, err
	}
	timer, err := InitScheduler(cfg)
	if err != nil {
		return nil, err
	}
	notifier, err := mailer.NewNotifier(ctx, cfg)
	if err != nil {
		return nil, err
	}

	issuer, err := common.NewTicketIssuer(st, secret, common.WithIssuerLocation(cfg.Location))
	if err != nil {
		return nil, err
	}
	verifier, err := common.NewVerificationEngine(st, secret, common.WithVerifierLocation(cfg.Location))
	if err != nil {
		return nil, err
	}
	delivery := common.NewDeliveryScheduler(timer, notifier,
		common.WithDeliveryLocation(cfg.Location),
		common.WithDeliveryHour(cfg.DeliveryHour),
		common.WithFailureReporter(InitFailureReporter(ctx, cfg)),
	)
	log.Printf("[Boot] store=%s notifier=%s scheduler=%s\n", cfg.StoreDriver, notifier.Name(), timer.Name())

	return &App{
		Config:   cfg,
		Store:    st,
		Issuer:   issuer,
		Verifier: verifier,
		Delivery: delivery,
		Redis:    rdb,
		Assets:   InitAssets(ctx, cfg),
	}, nil
}

// ResolveSigningSecret prefers QR_SECRET and falls back to Secrets Manager
// when QR_SECRET_ARN is set.
func ResolveSigningSecret(ctx context.Context, cfg *config.Config) ([]byte, error) {
	if cfg.QRSecret == "" && cfg.QRSecretARN != "" {
		awsCfg, err := awslib.LoadConfig(ctx, cfg.AWSRoleArn)
		if err != nil {
			return nil, err
		}
		value, err := awslib.GetSecretString(ctx, secretsmanager.NewFromConfig(awsCfg), cfg.QRSecretARN)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", config.ErrMissingSecret, err.Error())
		}
		cfg.QRSecret = value
	}
	return cfg.RequireSecret()
}

// InitStore returns the redis client as well when the store uses one, so the
// QR share link cache can reuse it.
func InitStore(cfg *config.Config) (store.TicketStore, *redis.Client, error) {
	switch cfg.StoreDriver {
	case "", "memory":
		return store.NewMemoryStore(), optionalRedis(cfg), nil
	case "postgres":
		gdb, err := db.Connect(config.GetDSN())
		if err != nil {
			return nil, nil, err
		}
		gs := store.NewGormStore(gdb)
		if err := gs.Migrate(); err != nil {
			return nil, nil, fmt.Errorf("error migration: %w", err)
		}
		return gs, optionalRedis(cfg), nil
	case "redis":
		rdb, err := lib.GetRedisClient(cfg.RedisHost)
		if err != nil {
			return nil, nil, err
		}
		return store.NewRedisStore(rdb), rdb, nil
	default:
		return nil, nil, fmt.Errorf("unknown ticket store %q", cfg.StoreDriver)
	}
}

func optionalRedis(cfg *config.Config) *redis.Client {
	if cfg.RedisHost == "" {
		return nil
	}
	rdb, err := lib.GetRedisClient(cfg.RedisHost)
	if err != nil {
		log.Printf("[redis] Share link cache disabled: %s\n", err.Error())
		return nil
	}
	return rdb
}

func InitScheduler(cfg *config.Config) (lib.Timer, error) {
	return lib.NewLocalScheduler(cfg.Location)
}

func InitFailureReporter(ctx context.Context, cfg *config.Config) common.FailureReporter {
	if cfg.AlertTopicArn == "" {
		return common.NewLogFailureReporter()
	}
	awsCfg, err := awslib.LoadConfig(ctx, cfg.AWSRoleArn)
	if err != nil {
		log.Printf("[SNS] Falling back to log alerts: %s\n", err.Error())
		return common.NewLogFailureReporter()
	}
	return awslib.NewSNSFailureReporter(sns.NewFromConfig(awsCfg), cfg.AlertTopicArn)
}

func InitAssets(ctx context.Context, cfg *config.Config) *awslib.AssetStore {
	if cfg.AssetsBucket == "" {
		return nil
	}
	awsCfg, err := awslib.LoadConfig(ctx, cfg.AWSRoleArn)
	if err != nil {
		log.Printf("[S3] Share links disabled: %s\n", err.Error())
		return nil
	}
	return awslib.NewAssetStore(s3.NewFromConfig(awsCfg), cfg.AssetsBucket)
}

// Shutdown stops the delivery timers and closes the shared clients.
func (a *App) Shutdown(ctx context.Context) error {
	err := a.Delivery.Shutdown(ctx)
	if a.Redis != nil {
		err = errors.Join(err, a.Redis.Close())
	}
	return err
}
