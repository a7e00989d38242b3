package models

// All lists every table managed by AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&User{},
		&File{},
		&NewsletterSubscription{},
	}
}
