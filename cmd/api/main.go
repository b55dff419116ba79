package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"airdrop-api/internal/auth"
	"airdrop-api/internal/claim"
	awsclient "airdrop-api/internal/client/aws"
	"airdrop-api/internal/config"
	"airdrop-api/internal/handlers"
	"airdrop-api/internal/logger"
	"airdrop-api/internal/server"
	solutil "airdrop-api/internal/solana"
	"airdrop-api/internal/store"

	"github.com/gagliardetto/solana-go"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// @title           Airdrop API
// @version         1.0
// @description     One-time token airdrop claim service

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found: %v\n", err)
	}

	logger.InitLogger()
	defer logger.Sync() //nolint:errcheck

	cfg, err := config.FromEnv()
	if err != nil {
		logger.Fatal("Invalid configuration", zap.Error(err))
	}

	ctx := context.Background()

	// The airdrop signing key comes from Secrets Manager when an ARN is
	// configured, otherwise straight from the environment.
	secrets, err := awsclient.NewSecretsManagerClient(ctx)
	if err != nil {
		logger.Fatal("Unable to create Secrets Manager client", zap.Error(err))
	}
	cfg.AirdropSecret, err = secrets.GetSecretString(ctx, "AIRDROP_SECRET_ARN", "AIRDROP_SECRET_B58")
	if err != nil {
		logger.Fatal("Unable to resolve airdrop signing key", zap.Error(err))
	}

	signer, err := solana.PrivateKeyFromBase58(cfg.AirdropSecret)
	if err != nil {
		logger.Fatal("AIRDROP_SECRET_B58 is not a valid base58 keypair", zap.Error(err))
	}
	mint, err := solana.PublicKeyFromBase58(cfg.TokenMint)
	if err != nil {
		logger.Fatal("TOKEN_MINT is not a valid address", zap.Error(err))
	}

	pool, err := store.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("Unable to connect to database", zap.Error(err))
	}
	defer pool.Close()

	claims := store.New(pool)
	if err := claims.EnsureSchema(ctx); err != nil {
		logger.Fatal("Unable to apply claims schema", zap.Error(err))
	}

	gateway := solutil.NewRPCGateway(cfg.SolanaRPCURL)

	orchestrator := claim.NewOrchestrator(claim.Config{
		Signer:  signer,
		Mint:    mint,
		Cluster: cfg.Cluster,
	}, claims, gateway)

	verifier, err := auth.NewVerifier(cfg.Auth0Domain, cfg.Auth0Audience)
	if err != nil {
		logger.Fatal("Unable to set up token verifier", zap.Error(err))
	}

	router := server.NewRouter(cfg, verifier, handlers.NewClaimHandler(orchestrator))

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server starting", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	// Give outstanding requests a deadline for completion
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exiting")
}
