package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"builddesk-estimates/internal/config"
	"builddesk-estimates/internal/handlers"
	"builddesk-estimates/internal/logger"
	"builddesk-estimates/internal/models"
	"builddesk-estimates/internal/repository"
	"builddesk-estimates/internal/routes"
	"builddesk-estimates/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

const version = "1.0.0"

var configPath string

func main() {
	rootCmd := &cobra.Command{
		Use:     "builddesk",
		Short:   "BuildDesk estimate service",
		Long:    "Construction estimate management: totals calculation, PDF documents, and client delivery.",
		Version: version,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.json", "path to config file")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(renderCmd())
	rootCmd.AddCommand(createUserCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			if err := logger.InitializeLogger(logger.LoggerConfig{
				Level:       logger.ParseLevel(cfg.Logging.Level),
				Service:     "builddesk-estimates",
				Version:     version,
				Environment: os.Getenv("ENVIRONMENT"),
				OutputPath:  cfg.Logging.File,
			}); err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			defer logger.GlobalLogger.Close()

			db, err := repository.NewDatabase(&cfg.Database)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer db.Close()

			estimateRepo := repository.NewEstimateRepository(db, cfg.Estimate.NumberPrefix)
			projectRepo := repository.NewProjectRepository(db)

			authHandler := handlers.NewAuthHandler(db.DB, cfg)
			h := &routes.Handlers{
				Auth:     authHandler,
				Estimate: handlers.NewEstimateHandler(estimateRepo, projectRepo, cfg),
				Project:  handlers.NewProjectHandler(projectRepo, estimateRepo),
				Company:  handlers.NewCompanyHandler(estimateRepo, cfg),
				Scan:     handlers.NewScanHandler(estimateRepo),
			}

			r := gin.New()
			r.Use(logger.GlobalLogger.LoggingMiddleware())
			r.Use(handlers.GlobalErrorHandler())
			r.NoRoute(handlers.NotFoundHandler())

			routes.SetupRoutes(r, h)

			authHandler.StartSessionCleanup()
			startExpirySweep(estimateRepo)

			addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
			logger.GlobalLogger.Info("Server starting", map[string]interface{}{"addr": addr})
			return r.Run(addr)
		},
	}
}

// startExpirySweep periodically flips past-validity estimates to expired
func startExpirySweep(repo *repository.EstimateRepository) {
	go func() {
		ticker := time.NewTicker(6 * time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			count, err := repo.MarkExpiredEstimates()
			if err != nil {
				log.Printf("Estimate expiry sweep failed: %v", err)
				continue
			}
			if count > 0 {
				log.Printf("Marked %d estimates as expired", count)
			}
		}
	}()
}

func renderCmd() *cobra.Command {
	var estimateID uint64
	var inPath string
	var outPath string

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render an estimate PDF to a file",
		Long:  "Render an estimate PDF from a stored estimate (--id) or from an estimate JSON file (--file, no database needed).",
		RunE: func(cmd *cobra.Command, args []string) error {
			if (estimateID == 0) == (inPath == "") {
				return fmt.Errorf("exactly one of --id or --file is required")
			}

			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			var estimate *models.Estimate
			var company *models.CompanyInfo

			if inPath != "" {
				data, err := os.ReadFile(inPath)
				if err != nil {
					return fmt.Errorf("failed to read estimate file: %w", err)
				}
				estimate = &models.Estimate{}
				if err := json.Unmarshal(data, estimate); err != nil {
					return fmt.Errorf("failed to parse estimate file: %w", err)
				}
				company = applyCompanyOverrides(models.DefaultCompanyInfo(), &cfg.Company)
			} else {
				db, err := repository.NewDatabase(&cfg.Database)
				if err != nil {
					return fmt.Errorf("failed to connect to database: %w", err)
				}
				defer db.Close()

				estimateRepo := repository.NewEstimateRepository(db, cfg.Estimate.NumberPrefix)
				estimate, err = estimateRepo.GetEstimateByID(estimateID)
				if err != nil {
					return err
				}

				stored, err := estimateRepo.GetCompanyInfo()
				if err != nil {
					return err
				}
				company = applyCompanyOverrides(stored, &cfg.Company)
			}

			pdfService := services.NewEstimatePDFService()
			pdfBytes, err := pdfService.GenerateEstimatePDF(estimate, company)
			if err != nil {
				return err
			}

			if outPath == "" {
				outPath = services.EstimateFilename(estimate)
			}
			if err := os.WriteFile(outPath, pdfBytes, 0644); err != nil {
				return fmt.Errorf("failed to write PDF: %w", err)
			}

			fmt.Printf("Wrote %s (%d bytes)\n", outPath, len(pdfBytes))
			return nil
		},
	}

	cmd.Flags().Uint64Var(&estimateID, "id", 0, "estimate ID")
	cmd.Flags().StringVarP(&inPath, "file", "f", "", "estimate JSON file")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file path")

	return cmd
}

// applyCompanyOverrides layers configured company fields over the base
// identity.
func applyCompanyOverrides(company *models.CompanyInfo, cfg *config.CompanyConfig) *models.CompanyInfo {
	if !cfg.CompanyInfoOverrides() {
		return company
	}
	if cfg.Name != "" {
		company.Name = cfg.Name
	}
	if cfg.Address != "" {
		addr := cfg.Address
		company.Address = &addr
	}
	if cfg.Phone != "" {
		phone := cfg.Phone
		company.Phone = &phone
	}
	if cfg.Email != "" {
		email := cfg.Email
		company.Email = &email
	}
	if cfg.Website != "" {
		website := cfg.Website
		company.Website = &website
	}
	if cfg.License != "" {
		license := cfg.License
		company.License = &license
	}
	return company
}

func createUserCmd() *cobra.Command {
	var username, email, password, firstName, lastName string

	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create a user account",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			db, err := repository.NewDatabase(&cfg.Database)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer db.Close()

			authHandler := handlers.NewAuthHandler(db.DB, cfg)
			if err := authHandler.CreateUser(username, email, password, firstName, lastName); err != nil {
				return fmt.Errorf("failed to create user: %w", err)
			}

			fmt.Printf("Created user %s\n", username)
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "username")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&password, "password", "", "password")
	cmd.Flags().StringVar(&firstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&lastName, "last-name", "", "last name")
	cmd.MarkFlagRequired("username")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("password")

	return cmd
}
