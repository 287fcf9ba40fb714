// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/threadline/storefront-backend/internal/config"
	"github.com/threadline/storefront-backend/internal/domain/cart"
	"github.com/threadline/storefront-backend/internal/domain/contact"
	"github.com/threadline/storefront-backend/internal/domain/order"
	"github.com/threadline/storefront-backend/internal/domain/product"
	"github.com/threadline/storefront-backend/internal/domain/session"
	"github.com/threadline/storefront-backend/internal/domain/shipping"
	"github.com/threadline/storefront-backend/internal/domain/upload"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Migration handles database migrations
type Migration struct {
	db     *gorm.DB
	config *config.Config
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB, cfg *config.Config) *Migration {
	return &Migration{
		db:     db,
		config: cfg,
	}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	logrus.Info("🔄 Running database auto-migrations...")

	// Models in dependency order
	models := []interface{}{
		&session.Identity{},
		&session.Profile{},

		&product.Category{},
		&product.Product{},

		&cart.CartItem{},

		&shipping.Method{},

		&order.Order{},
		&order.OrderItem{},

		&contact.Message{},
		&upload.UploadedFile{},
	}

	for _, model := range models {
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	logrus.Info("✅ Database auto-migrations completed successfully")
	return nil
}

// CreateIndexes creates additional indexes for better performance
func (m *Migration) CreateIndexes() error {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_profiles_role ON profiles(role)",
		"CREATE INDEX IF NOT EXISTS idx_profiles_email ON profiles(email)",

		"CREATE INDEX IF NOT EXISTS idx_products_category_active ON products(category_id, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_products_price ON products(price)",
		"CREATE INDEX IF NOT EXISTS idx_products_created_at ON products(created_at DESC)",

		"CREATE INDEX IF NOT EXISTS idx_shopping_cart_user ON shopping_cart(user_id)",

		"CREATE INDEX IF NOT EXISTS idx_orders_user_status ON orders(user_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_orders_status_created ON orders(status, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders(created_at DESC)",

		"CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items(order_id)",
		"CREATE INDEX IF NOT EXISTS idx_order_items_product ON order_items(product_id)",

		"CREATE INDEX IF NOT EXISTS idx_contact_messages_resolved ON contact_messages(is_resolved, created_at DESC)",
	}

	for _, indexSQL := range indexes {
		if err := m.db.Exec(indexSQL).Error; err != nil {
			logrus.Warnf("⚠️ Failed to create index: %v", err)
		}
	}

	logrus.Info("✅ Database indexes ensured")
	return nil
}

// SeedInitialData inserts initial data into the database
func (m *Migration) SeedInitialData() error {
	logrus.Info("🌱 Seeding initial data...")

	if err := m.seedCategories(); err != nil {
		return fmt.Errorf("failed to seed categories: %w", err)
	}

	if err := m.seedShippingMethods(); err != nil {
		return fmt.Errorf("failed to seed shipping methods: %w", err)
	}

	if err := m.seedAdminAccount(); err != nil {
		return fmt.Errorf("failed to seed admin account: %w", err)
	}

	logrus.Info("✅ Initial data seeded successfully")
	return nil
}

// seedCategories creates the default clothing categories
func (m *Migration) seedCategories() error {
	categories := []product.Category{
		{Name: "T-Shirts", Slug: "t-shirts", Description: "Crew necks, v-necks, and graphic tees", IsActive: true},
		{Name: "Shirts", Slug: "shirts", Description: "Button-downs, flannels, and overshirts", IsActive: true},
		{Name: "Pants", Slug: "pants", Description: "Jeans, chinos, and joggers", IsActive: true},
		{Name: "Dresses", Slug: "dresses", Description: "Casual and formal dresses", IsActive: true},
		{Name: "Outerwear", Slug: "outerwear", Description: "Jackets, coats, and hoodies", IsActive: true},
		{Name: "Accessories", Slug: "accessories", Description: "Caps, belts, and bags", IsActive: true},
	}

	for _, category := range categories {
		var existing product.Category
		result := m.db.Where("slug = ?", category.Slug).First(&existing)
		if result.Error != nil {
			if err := m.db.Create(&category).Error; err != nil {
				return err
			}
			logrus.Infof("✅ Created category: %s", category.Name)
		}
	}

	return nil
}

// seedShippingMethods creates the default shipping options
func (m *Migration) seedShippingMethods() error {
	methods := []shipping.Method{
		{
			Name:             "Standard",
			Description:      "Delivery in 5 to 10 business days",
			BasePrice:        1490,
			EstimatedDaysMin: 5,
			EstimatedDaysMax: 10,
			IsActive:         true,
		},
		{
			Name:             "Express",
			Description:      "Delivery in 2 to 4 business days",
			BasePrice:        2990,
			EstimatedDaysMin: 2,
			EstimatedDaysMax: 4,
			IsActive:         true,
		},
	}

	for _, method := range methods {
		var existing shipping.Method
		result := m.db.Where("name = ?", method.Name).First(&existing)
		if result.Error != nil {
			if err := m.db.Create(&method).Error; err != nil {
				return err
			}
			logrus.Infof("✅ Created shipping method: %s", method.Name)
		}
	}

	return nil
}

// seedAdminAccount creates the development admin account
func (m *Migration) seedAdminAccount() error {
	if m.config.IsProduction() {
		return nil
	}

	adminEmail := "admin@threadline.example"

	var existing session.Identity
	result := m.db.Where("email = ?", adminEmail).First(&existing)
	if result.Error == nil {
		return nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("admin1234"), m.config.Security.BcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	identity := session.Identity{
		Email:        adminEmail,
		PasswordHash: string(hashedPassword),
	}
	if err := m.db.Create(&identity).Error; err != nil {
		return fmt.Errorf("failed to create admin identity: %w", err)
	}

	profile := session.Profile{
		UserID:      identity.ID,
		FullName:    "Store Admin",
		Email:       adminEmail,
		Role:        session.RoleAdmin,
		Preferences: session.DefaultPreferences(),
	}
	if err := m.db.Create(&profile).Error; err != nil {
		return fmt.Errorf("failed to create admin profile: %w", err)
	}

	logrus.Infof("✅ Created admin account: %s (password: admin1234)", adminEmail)
	return nil
}
