package container

import (
	"context"
	"fmt"
	"net/http"
	"time"

	_ "github.com/lib/pq"

	"evocrm/internal/adapters/database/postgres"
	"evocrm/internal/adapters/evolution"
	"evocrm/internal/adapters/http/router"
	"evocrm/internal/core/chat"
	"evocrm/internal/core/instance"
	"evocrm/internal/services"
	"evocrm/internal/services/shared/validation"
	"evocrm/platform/config"
	"evocrm/platform/database"
	"evocrm/platform/logger"
)

// Container é o container de Dependency Injection da aplicação
type Container struct {
	config   *config.Config
	logger   *logger.Logger
	database *database.Database

	instanceCore *instance.Service
	resolver     *chat.Resolver
	reconciler   *chat.Reconciler

	webhookService      *services.WebhookService
	messageService      *services.MessageService
	instanceService     *services.InstanceService
	conversationService *services.ConversationService

	instanceRepo     instance.Repository
	contactRepo      chat.ContactRepository
	conversationRepo chat.ConversationRepository
	messageRepo      chat.MessageRepository
	gateway          instance.Gateway
}

// Config estrutura de configuração para o container
type Config struct {
	AppConfig *config.Config
	Logger    *logger.Logger
	Database  *database.Database
}

// New cria uma nova instância do container
func New(cfg *Config) (*Container, error) {
	container := &Container{
		config:   cfg.AppConfig,
		logger:   cfg.Logger,
		database: cfg.Database,
	}

	if err := container.initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize container: %w", err)
	}

	cfg.Logger.Info("Dependency injection container initialized successfully")
	return container, nil
}

// initialize monta o grafo de dependências
func (c *Container) initialize() error {
	c.logger.Debug("Initializing container...")

	// 1. Repositórios
	c.instanceRepo = postgres.NewInstanceRepository(c.database.DB)
	c.contactRepo = postgres.NewContactRepository(c.database.DB)
	c.conversationRepo = postgres.NewConversationRepository(c.database.DB)
	c.messageRepo = postgres.NewMessageRepository(c.database.DB)

	// 2. Gateway do provedor
	c.gateway = evolution.NewClient(
		c.config.Evolution.APIURL,
		c.config.Evolution.APIKey,
		time.Duration(c.config.Evolution.Timeout)*time.Second,
		c.logger.WithModule("evolution"),
	)

	// 3. Núcleo de domínio
	c.instanceCore = instance.NewService(c.instanceRepo, c.gateway, c.logger.WithModule("instance"))
	c.resolver = chat.NewResolver(c.contactRepo, c.conversationRepo, c.logger.WithModule("resolver"))
	c.reconciler = chat.NewReconciler(c.messageRepo, c.conversationRepo, c.contactRepo, c.logger.WithModule("reconciler"))

	// 4. Validador
	validator := validation.New()

	// 5. Serviços de aplicação
	c.webhookService = services.NewWebhookService(
		c.instanceCore,
		c.resolver,
		c.reconciler,
		c.logger.WithModule("webhook"),
	)

	c.messageService = services.NewMessageService(
		c.instanceCore,
		c.resolver,
		c.reconciler,
		c.gateway,
		c.logger.WithModule("messages"),
		validator,
	)

	c.instanceService = services.NewInstanceService(
		c.instanceCore,
		c.instanceRepo,
		c.logger.WithModule("instances"),
	)

	c.conversationService = services.NewConversationService(
		c.conversationRepo,
		c.messageRepo,
		c.logger.WithModule("conversations"),
	)

	c.logger.Debug("Container initialized successfully")
	return nil
}

// GetConfig retorna a configuração da aplicação
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetLogger retorna o logger da aplicação
func (c *Container) GetLogger() *logger.Logger {
	return c.logger
}

// GetDatabase retorna a instância do banco de dados
func (c *Container) GetDatabase() *database.Database {
	return c.database
}

// GetWebhookService retorna o service de webhook
func (c *Container) GetWebhookService() *services.WebhookService {
	return c.webhookService
}

// GetMessageService retorna o service de mensagens
func (c *Container) GetMessageService() *services.MessageService {
	return c.messageService
}

// Start valida as dependências externas antes de aceitar tráfego
func (c *Container) Start(ctx context.Context) error {
	c.logger.Info("Starting container components...")

	if err := c.database.Health(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}

	c.logger.Info("Container components started successfully")
	return nil
}

// Stop encerra os componentes gracefully
func (c *Container) Stop(ctx context.Context) error {
	c.logger.Info("Stopping container components...")

	if err := c.database.Close(); err != nil {
		c.logger.ErrorWithFields("Failed to close database connection", map[string]interface{}{
			"error": err.Error(),
		})
	}

	c.logger.Info("Container components stopped successfully")
	return nil
}

// Handler retorna o handler HTTP completo com todas as rotas
func (c *Container) Handler() http.Handler {
	return router.SetupRoutes(
		c.config,
		c.logger,
		c.webhookService,
		c.messageService,
		c.instanceService,
		c.conversationService,
	)
}
