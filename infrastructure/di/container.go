package di

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"

	"notes-backend/application/ports"
	"notes-backend/application/services"
	"notes-backend/infrastructure/config"
	dynamorepo "notes-backend/infrastructure/persistence/dynamodb"
	"notes-backend/pkg/auth"
)

// sessionTTL is the fixed session lifetime; the cookie max age matches it.
const sessionTTL = 24 * time.Hour

// Container holds all application dependencies
type Container struct {
	Config      *config.Config
	Logger      *zap.Logger
	UserRepo    ports.UserRepository
	NoteRepo    ports.NoteRepository
	AuthService *services.AuthService
	NoteService *services.NoteService
	Tokens      *auth.JWTService
	Cookies     *auth.CookieManager
}

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	logger, err := ProvideLogger(cfg)
	if err != nil {
		return nil, err
	}

	awsCfg, err := ProvideAWSConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}

	client := ProvideDynamoDBClient(awsCfg)
	userRepo := ProvideUserRepository(client, cfg, logger)
	noteRepo := ProvideNoteRepository(client, cfg, logger)

	tokens, err := ProvideJWTService(cfg)
	if err != nil {
		return nil, err
	}

	cookies, err := ProvideCookieManager(cfg, tokens.TTL())
	if err != nil {
		return nil, err
	}

	return &Container{
		Config:      cfg,
		Logger:      logger,
		UserRepo:    userRepo,
		NoteRepo:    noteRepo,
		AuthService: services.NewAuthService(userRepo, auth.NewPasswordHasher(0), logger),
		NoteService: services.NewNoteService(noteRepo, logger),
		Tokens:      tokens,
		Cookies:     cookies,
	}, nil
}

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
}

// ProvideDynamoDBClient creates a DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideUserRepository creates the user repository
func ProvideUserRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.UserRepository {
	return dynamorepo.NewUserRepository(client, cfg.DynamoDBTable, logger)
}

// ProvideNoteRepository creates the note repository
func ProvideNoteRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.NoteRepository {
	return dynamorepo.NewNoteRepository(client, cfg.DynamoDBTable, cfg.IndexName, logger)
}

// ProvideJWTService creates the session token issuer/verifier
func ProvideJWTService(cfg *config.Config) (*auth.JWTService, error) {
	secret := cfg.JWTSecret
	if secret == "" {
		// LoadConfig rejects this in production
		secret = "development-secret-change-in-production"
	}
	return auth.NewJWTService(secret, cfg.JWTIssuer, sessionTTL)
}

// ProvideCookieManager creates the signed cookie codec. The cookie max
// age follows the token lifetime so the cookie never outlives its token.
func ProvideCookieManager(cfg *config.Config, ttl time.Duration) (*auth.CookieManager, error) {
	secret := cfg.CookieSecret
	if secret == "" {
		secret = "development-cookie-secret"
	}
	return auth.NewCookieManager(secret, cfg.IsProduction(), ttl)
}
