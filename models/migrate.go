package models

import "gorm.io/gorm"

// AutoMigrate creates the schema from the entity definitions. Production
// deployments run the versioned SQL migrations instead (cmd/migrate); this
// backs the sqlite test databases and first-run development setups. The
// partial unique index guaranteeing a single preview attachment per product
// only exists in the SQL migrations.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&ProductCategory{},
		&ProductCategoryTranslation{},
		&Product{},
		&ProductTranslation{},
		&Attachment{},
		&Order{},
		&OrderItem{},
	)
}
