package main

import (
	"log"

	"github.com/choviet-next/internal/config"
	"github.com/choviet-next/internal/constants"
	"github.com/choviet-next/internal/logger"
	"github.com/choviet-next/internal/models"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	// 添加分类
	categoryNames := []string{"Electronics", "Fashion", "Home & Living", "Books", "Other"}
	if err := models.EnsureDefaultCategories(categoryNames); err != nil {
		stdLog.Fatalf("Failed to seed categories: %v", err)
	}

	categoryIDs := map[string]uint{}
	var categoryList []models.Category
	if err := models.DB.Where("name IN ?", categoryNames).Find(&categoryList).Error; err != nil {
		stdLog.Fatalf("Failed to load categories: %v", err)
	}
	for _, cat := range categoryList {
		categoryIDs[cat.Name] = cat.ID
	}

	// 添加演示账号
	seller := ensureUser(stdLog, models.User{
		Email:    "seller@example.com",
		FullName: "Demo Seller",
		Phone:    "0901234567",
		Address:  "12 Nguyen Hue, District 1, Ho Chi Minh City",
		Role:     constants.RoleSeller,
	}, "Seller@123456")
	ensureUser(stdLog, models.User{
		Email:    "buyer@example.com",
		FullName: "Demo Buyer",
		Phone:    "0907654321",
		Address:  "45 Le Loi, District 1, Ho Chi Minh City",
		Role:     constants.RoleCustomer,
	}, "Buyer@123456")

	if seller == nil {
		stdLog.Fatalf("Seed seller unavailable, skip products")
	}

	// 添加商品
	products := []models.Product{
		{
			SellerID:      seller.ID,
			CategoryID:    categoryIDs["Electronics"],
			Name:          "Wireless Bluetooth Earphones",
			Description:   "Bluetooth 5.0, active noise cancellation, up to 24 hours of battery life.",
			Price:         models.NewMoneyFromInt(590000),
			StockQuantity: 50,
			ImageURL:      "https://images.unsplash.com/photo-1590658268037-6bf12165a8df?w=800",
			Status:        constants.ProductStatusActive,
		},
		{
			SellerID:      seller.ID,
			CategoryID:    categoryIDs["Electronics"],
			Name:          "Smart Watch",
			Description:   "Heart rate monitoring, fitness tracking, waterproof design.",
			Price:         models.NewMoneyFromInt(1990000),
			StockQuantity: 30,
			ImageURL:      "https://images.unsplash.com/photo-1579586337278-3befd40fd17a?w=800",
			Status:        constants.ProductStatusActive,
		},
		{
			SellerID:      seller.ID,
			CategoryID:    categoryIDs["Home & Living"],
			Name:          "Ceramic Coffee Mug Set",
			Description:   "Set of four handmade ceramic mugs, dishwasher safe.",
			Price:         models.NewMoneyFromInt(250000),
			StockQuantity: 100,
			ImageURL:      "https://images.unsplash.com/photo-1514228742587-6b1558fcca3d?w=800",
			Status:        constants.ProductStatusActive,
		},
		{
			SellerID:      seller.ID,
			CategoryID:    categoryIDs["Books"],
			Name:          "Learning Vietnamese Cooking",
			Description:   "120 traditional recipes with step-by-step photos.",
			Price:         models.NewMoneyFromInt(180000),
			StockQuantity: 20,
			ImageURL:      "https://images.unsplash.com/photo-1544716278-ca5e3f4abd8c?w=800",
			Status:        constants.ProductStatusActive,
		},
	}

	for _, product := range products {
		var existing models.Product
		if err := models.DB.Where("seller_id = ? AND name = ?", product.SellerID, product.Name).First(&existing).Error; err != nil {
			if err := models.DB.Create(&product).Error; err != nil {
				stdLog.Printf("Failed to create product %s: %v", product.Name, err)
			} else {
				stdLog.Printf("Created product: %s", product.Name)
			}
		} else {
			stdLog.Printf("Product already exists: %s", product.Name)
		}
	}

	stdLog.Printf("Seed finished")
}

func ensureUser(stdLog *log.Logger, user models.User, password string) *models.User {
	var existing models.User
	if err := models.DB.Where("email = ?", user.Email).First(&existing).Error; err == nil {
		stdLog.Printf("User already exists: %s", user.Email)
		return &existing
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		stdLog.Fatalf("Failed to hash password for %s: %v", user.Email, err)
		return nil
	}
	user.PasswordHash = string(hash)
	if err := models.DB.Create(&user).Error; err != nil {
		stdLog.Printf("Failed to create user %s: %v", user.Email, err)
		return nil
	}
	stdLog.Printf("Created user: %s", user.Email)
	return &user
}
