package main

import (
	"log"
	"net/http"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"

	"backend_zgt/api"
	"backend_zgt/config"
	"backend_zgt/database"
	"backend_zgt/middleware"
	"backend_zgt/services"
)

// initDB инициализирует подключение к базе данных
func initDB(cfg *config.Config) {
	log.Println("🔧 Инициализация базы данных...")

	// Создаем базу данных, если она не существует
	if err := database.CreateDatabaseIfNotExists(cfg); err != nil {
		log.Fatal("❌ Ошибка при создании базы данных:", err)
	}

	// Подключаемся к базе данных
	if err := database.ConnectDatabase(cfg); err != nil {
		log.Fatal("❌ Ошибка подключения к базе данных:", err)
	}

	log.Println("✅ База данных успешно инициализирована")
}

func main() {
	// Загружаем конфигурацию (включая .env файл)
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("❌ Ошибка загрузки конфигурации:", err)
	}
	cfg.LogConfig()

	// Инициализируем базу данных
	initDB(cfg)
	db := database.GetDB()

	// Redis не обязателен: без него отключаются кэш и rate limiting
	if err := database.InitRedis(cfg); err != nil {
		log.Printf("⚠️  Redis недоступен, кэширование отключено: %v", err)
	}

	logger := log.New(os.Stdout, "[zgt] ", log.LstdFlags)

	// Сервисы
	custodySettings := services.CustodySettings{
		MovementDedupWindow: cfg.Custody.MovementDedupWindow,
		LockTimeout:         cfg.Custody.LockTimeout,
	}
	auditService := services.NewAuditService(db, logger)
	cacheService := services.NewCacheService(database.GetRedis(), logger)
	personnelService := services.NewPersonnelService(db)
	equipmentService := services.NewEquipmentService(db, custodySettings)
	storageService := services.NewStorageAndPassService(db, custodySettings)
	storageDeviceService := services.NewStorageDeviceService(db)
	phoneService := services.NewPhoneService(db, custodySettings)
	actService := services.NewActService(db)
	importService := services.NewImportService(db)

	var telegramClient *services.TelegramClient
	if cfg.External.TelegramBotToken != "" {
		telegramClient, err = services.NewTelegramClient(cfg.External.TelegramBotToken)
		if err != nil {
			log.Printf("⚠️  Telegram бот недоступен: %v", err)
		}
	}
	notificationService := services.NewNotificationService(telegramClient, cfg.External.TelegramChatID, phoneService, logger)

	// Напоминание о сдаче телефонов по расписанию
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.External.PhoneReminderCron, func() {
		if err := notificationService.SendPhoneReminder(); err != nil {
			logger.Printf("Ошибка отправки напоминания о телефонах: %v", err)
		}
	}); err != nil {
		log.Fatal("❌ Некорректное расписание напоминания:", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	// API
	authAPI := api.NewAuthAPI(db, cfg, auditService)
	userAPI := api.NewUserAPI(db, auditService)
	personnelAPI := api.NewPersonnelAPI(personnelService, auditService, cacheService)
	equipmentAPI := api.NewEquipmentAPI(equipmentService, actService, importService, auditService, cacheService, notificationService)
	storageAPI := api.NewStorageAndPassAPI(storageService, auditService, cacheService)
	storageDeviceAPI := api.NewStorageDeviceAPI(storageDeviceService, auditService)
	phoneAPI := api.NewPhoneAPI(phoneService, auditService, cacheService)
	dashboardAPI := api.NewDashboardAPI(equipmentService, storageService, phoneService, personnelService, cacheService)
	auditAPI := api.NewAuditAPI(auditService)

	// Настраиваем Gin router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()

	corsConfig := cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		AllowCredentials: cfg.CORS.AllowCredentials,
	}
	r.Use(cors.New(corsConfig))

	// Базовые роуты
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":   "success",
			"message":  "pong",
			"database": "connected",
		})
	})
	r.GET("/health", func(c *gin.Context) {
		health := gin.H{"status": "success", "database": "ok"}
		if sqlDB, err := db.DB(); err != nil || sqlDB.Ping() != nil {
			health["status"] = "error"
			health["database"] = "unavailable"
			c.JSON(http.StatusServiceUnavailable, health)
			return
		}
		if redisClient := database.GetRedis(); redisClient != nil {
			if err := redisClient.Ping(c.Request.Context()).Err(); err != nil {
				health["redis"] = "unavailable"
			} else {
				health["redis"] = "ok"
			}
		}
		if telegramClient != nil {
			if telegramClient.IsHealthy() {
				health["telegram"] = "ok"
			} else {
				health["telegram"] = "unavailable"
			}
		}
		c.JSON(http.StatusOK, health)
	})

	// Аутентификация
	auth := r.Group("/api/auth")
	auth.POST("/login", middleware.AuthRateLimit(), authAPI.Login)
	auth.GET("/me", middleware.RequireAuth(cfg), authAPI.Me)

	// Защищенные роуты
	apiGroup := r.Group("/api")
	apiGroup.Use(middleware.RequireAuth(cfg), middleware.ModerateRateLimit())
	{
		// Пользователи (только администратор)
		users := apiGroup.Group("/users", middleware.RequireRole("admin"))
		users.GET("", userAPI.GetUsers)
		users.POST("", userAPI.CreateUser)
		users.PUT("/:id", userAPI.UpdateUser)
		users.DELETE("/:id", userAPI.DeleteUser)

		// Личный состав
		personnel := apiGroup.Group("/personnel")
		personnel.GET("", personnelAPI.GetPersonnel)
		personnel.GET("/units", personnelAPI.GetUnits)
		personnel.GET("/:id", personnelAPI.GetPerson)
		personnel.POST("", personnelAPI.CreatePerson)
		personnel.PUT("/:id", personnelAPI.UpdatePerson)
		personnel.DELETE("/:id", personnelAPI.DeletePerson)

		// Техника
		equipment := apiGroup.Group("/equipment")
		equipment.GET("", equipmentAPI.GetEquipment)
		equipment.GET("/statistics", equipmentAPI.GetStatistics)
		equipment.GET("/:id", equipmentAPI.GetEquipmentItem)
		equipment.POST("", equipmentAPI.CreateEquipment)
		equipment.PUT("/:id", equipmentAPI.UpdateEquipment)
		equipment.DELETE("/:id", equipmentAPI.DeleteEquipment)
		equipment.POST("/:id/movements", equipmentAPI.CreateMovement)
		equipment.GET("/:id/movements", equipmentAPI.GetMovementHistory)
		equipment.GET("/movements/:movement_id/act", equipmentAPI.GetMovementAct)
		equipment.POST("/import/laptops", equipmentAPI.ImportLaptops)

		// Носители и пропуска
		storage := apiGroup.Group("/storage-and-passes")
		storage.GET("", storageAPI.GetAssets)
		storage.GET("/statistics", storageAPI.GetStatistics)
		storage.GET("/:id", storageAPI.GetAsset)
		storage.POST("", storageAPI.CreateAsset)
		storage.PUT("/:id", storageAPI.UpdateAsset)
		storage.DELETE("/:id", storageAPI.DeleteAsset)
		storage.POST("/:id/assign", storageAPI.AssignAsset)
		storage.POST("/:id/revoke", storageAPI.RevokeAsset)
		storage.GET("/:id/history", storageAPI.GetAssignmentHistory)

		// Носители в технике
		devices := apiGroup.Group("/storage-devices")
		devices.GET("", storageDeviceAPI.GetDevices)
		devices.GET("/:id", storageDeviceAPI.GetDevice)
		devices.POST("", storageDeviceAPI.CreateDevice)
		devices.PUT("/:id", storageDeviceAPI.UpdateDevice)
		devices.DELETE("/:id", storageDeviceAPI.DeleteDevice)

		// Телефоны
		phones := apiGroup.Group("/phones")
		phones.GET("", phoneAPI.GetPhones)
		phones.GET("/report", phoneAPI.GetStatusReport)
		phones.GET("/:id", phoneAPI.GetPhone)
		phones.POST("", phoneAPI.CreatePhone)
		phones.PUT("/:id", phoneAPI.UpdatePhone)
		phones.DELETE("/:id", phoneAPI.DeletePhone)
		phones.POST("/batch/check-in", phoneAPI.BatchCheckIn)
		phones.POST("/batch/check-out", phoneAPI.BatchCheckOut)
		phones.GET("/:id/history", phoneAPI.GetStatusHistory)

		// Сводная панель и аудит
		apiGroup.GET("/dashboard", dashboardAPI.GetDashboard)
		apiGroup.GET("/dashboard/cache", middleware.RequireRole("admin"), dashboardAPI.GetCacheInfo)
		apiGroup.GET("/audit-logs", middleware.RequireRole("admin"), auditAPI.GetLogs)
	}

	log.Printf("🚀 Сервер запущен на порту %s", cfg.App.Port)
	if err := r.Run(cfg.App.Host + ":" + cfg.App.Port); err != nil {
		log.Fatal("❌ Ошибка запуска сервера:", err)
	}
}
